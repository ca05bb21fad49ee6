// Package pdf reads a PDF page by page: direct text through ledongthuc/pdf
// and embedded raster images through pdfcpu.
package pdf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Image is one embedded image of a page.
type Image struct {
	// Format is the lower-case file type reported by pdfcpu, e.g. "jpg", "png", "tif".
	Format string
	ObjNr  int
	Data   []byte
}

// Document is an open PDF file.
type Document struct {
	file   *os.File
	reader *lpdf.Reader
	conf   *model.Configuration
}

// Open opens path for page-wise reading. The caller must Close the document.
func Open(path string) (*Document, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Document{file: f, reader: r, conf: conf}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of page n (1-based). An empty page yields "".
func (d *Document) PageText(n int) (text string, err error) {
	if n < 1 || n > d.NumPages() {
		return "", fmt.Errorf("page %d out of range 1..%d", n, d.NumPages())
	}

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return "", nil
	}

	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read text of page %d: %v", n, r)
		}
	}()

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("read text of page %d: %w", n, err)
	}
	return text, nil
}

// PageImages returns the images embedded in page n in object order.
func (d *Document) PageImages(n int) ([]Image, error) {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind pdf: %w", err)
	}

	pages, err := api.ExtractImagesRaw(d.file, []string{strconv.Itoa(n)}, d.conf)
	if err != nil {
		return nil, fmt.Errorf("extract images of page %d: %w", n, err)
	}

	var images []Image
	for _, byObj := range pages {
		for objNr, img := range byObj {
			if img.PageNr != 0 && img.PageNr != n {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image %d of page %d: %w", objNr, n, err)
			}
			images = append(images, Image{
				Format: strings.ToLower(img.FileType),
				ObjNr:  objNr,
				Data:   data,
			})
		}
	}

	sort.Slice(images, func(i, j int) bool { return images[i].ObjNr < images[j].ObjNr })
	return images, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}
