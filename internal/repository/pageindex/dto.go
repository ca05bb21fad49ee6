package pageindex

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/pagerag/internal/db"
	"github.com/kailas-cloud/pagerag/internal/domain"
)

// Hash field names of an indexed page.
const (
	fieldPage      = "page"
	fieldText      = "text"
	fieldEmbedding = "embedding"
)

// buildIndex creates the FT index definition over page hashes.
func buildIndex(name, prefix string, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(name).
		Prefix(prefix).
		Numeric(fieldPage).
		Text(fieldText).
		VectorHNSW(fieldEmbedding, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // caller wraps with index name
	}
	return def, nil
}

// buildHashFields converts a record into the flat map stored with HSET.
func buildHashFields(rec domain.IndexedPage) map[string]string {
	return map[string]string{
		fieldPage:      strconv.Itoa(rec.Page),
		fieldText:      rec.Text,
		fieldEmbedding: vectorToBytes(rec.Vector),
	}
}

// parseHit converts a KNN entry into a hit; entries without a page number are dropped.
func parseHit(entry db.SearchEntry) (domain.Hit, bool) {
	n, err := strconv.Atoi(entry.Fields[fieldPage])
	if err != nil {
		return domain.Hit{}, false
	}
	return domain.Hit{
		Page:  n,
		Score: entry.Score,
		Text:  entry.Fields[fieldText],
	}, true
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
