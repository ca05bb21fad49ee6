// Package page defines the page record and the delimited text format that
// carries pages from PDF extraction to indexing.
//
// Each page is written as
//
//	[PAGE <n> START]
//	<text>
//	[PAGE <n> END]
//
// and pages are joined by a blank line.
package page

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Page is one numbered unit of the source document. Numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

var (
	startMarker   = regexp.MustCompile(`\[PAGE (\d+) START\]`)
	paragraphSep  = regexp.MustCompile(`\n\s*\n`)
	pageSeparator = "\n\n"
)

// StartMarker returns the opening delimiter for page n.
func StartMarker(n int) string { return fmt.Sprintf("[PAGE %d START]", n) }

// EndMarker returns the closing delimiter for page n.
func EndMarker(n int) string { return fmt.Sprintf("[PAGE %d END]", n) }

// CleanParagraphs splits raw text on blank lines, folds single newlines inside
// each paragraph into spaces and rejoins paragraphs with a blank line.
func CleanParagraphs(raw string) string {
	paragraphs := paragraphSep.Split(raw, -1)
	cleaned := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		cleaned[i] = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
	}
	return strings.Join(cleaned, "\n\n")
}

// Format serializes pages into a delimited document.
func Format(pages []Page) string {
	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = StartMarker(p.Number) + "\n" + p.Text + "\n" + EndMarker(p.Number) + "\n"
	}
	return strings.Join(blocks, pageSeparator)
}

// Parse extracts pages from a delimited document.
//
// A page's content runs from a START marker to the nearest following END
// marker carrying the same number. A START without a matching END is skipped
// and scanning resumes just after it. No markers yields an empty slice.
func Parse(doc string) []Page {
	pages := make([]Page, 0)

	pos := 0
	for pos < len(doc) {
		loc := startMarker.FindStringSubmatchIndex(doc[pos:])
		if loc == nil {
			break
		}
		startBegin := pos + loc[0]
		startEnd := pos + loc[1]
		numStr := doc[pos+loc[2] : pos+loc[3]]

		n, err := strconv.Atoi(numStr)
		if err != nil {
			pos = startEnd
			continue
		}

		end := "[PAGE " + numStr + " END]"
		rel := strings.Index(doc[startEnd:], end)
		if rel < 0 {
			pos = startBegin + 1
			continue
		}

		pages = append(pages, Page{
			Number: n,
			Text:   strings.TrimSpace(doc[startEnd : startEnd+rel]),
		})
		pos = startEnd + rel + len(end)
	}

	return pages
}

// Load reads a delimited document from disk and parses it.
func Load(path string) ([]Page, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read pages %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Write serializes pages to path as UTF-8.
func Write(path string, pages []Page) error {
	if err := os.WriteFile(filepath.Clean(path), []byte(Format(pages)), 0o644); err != nil { //nolint:gosec // text artifact is meant to be readable
		return fmt.Errorf("write pages %s: %w", path, err)
	}
	return nil
}
