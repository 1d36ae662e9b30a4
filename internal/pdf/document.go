// Package pdf wraps pdfcpu with the small set of primitives the extraction
// engine needs: open a document, read per-page text, and pull the scanned
// page image for OCR.
package pdf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a parsed PDF ready for text and image extraction.
type Document struct {
	ctx  *model.Context
	path string
}

// Open reads and validates the PDF at path. Encrypted or malformed files
// surface as errors classified by IsUnreadable.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read %s: %w", path, err)
	}

	return &Document{ctx: ctx, path: path}, nil
}

func (d *Document) Path() string { return d.path }

func (d *Document) PageCount() int { return d.ctx.PageCount }

// PageText extracts text from a single page content stream. Pages without
// extractable text yield an empty string, never an error.
func (d *Document) PageText(pageNr int) string {
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return ""
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return scrapeContentStream(data)
}

// PageImage returns the largest image embedded on the page along with its
// content type. Scanned documents carry the whole page as one image, so the
// largest asset is the page scan itself.
func (d *Document) PageImage(pageNr int) ([]byte, string, error) {
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return nil, "", fmt.Errorf("page %d out of range (1..%d)", pageNr, d.ctx.PageCount)
	}
	images, err := pdfcpu.ExtractPageImages(d.ctx, pageNr, false)
	if err != nil {
		return nil, "", fmt.Errorf("extract images on page %d: %w", pageNr, err)
	}
	if len(images) == 0 {
		return nil, "", fmt.Errorf("no image on page %d", pageNr)
	}

	objNrs := make([]int, 0, len(images))
	for nr := range images {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	var best []byte
	var bestType string
	for _, nr := range objNrs {
		img := images[nr]
		data, err := io.ReadAll(img)
		if err != nil {
			continue
		}
		if len(data) > len(best) {
			best = data
			bestType = contentTypeForFileType(img.FileType)
		}
	}
	if len(best) == 0 {
		return nil, "", fmt.Errorf("no readable image on page %d", pageNr)
	}
	return best, bestType, nil
}

func contentTypeForFileType(fileType string) string {
	switch strings.ToLower(fileType) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

// IsUnreadable reports whether the error points at a bad source file
// (encrypted or corrupt) rather than an environmental failure. Operators use
// this to tell "bad source file" from "storage outage" in failure reasons.
func IsUnreadable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"encrypt", "password", "corrupt", "malformed", "damaged", "invalid pdf"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
