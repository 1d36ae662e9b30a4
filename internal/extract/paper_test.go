package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/openshelf/ingest/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPage struct {
	data string
	err  error
}

type stubImager struct {
	pages []stubPage
}

func (d *stubImager) PageCount() int { return len(d.pages) }
func (d *stubImager) PageImage(pageNr int) ([]byte, string, error) {
	p := d.pages[pageNr-1]
	if p.err != nil {
		return nil, "", p.err
	}
	return []byte(p.data), "image/png", nil
}

func imagerFor(doc *stubImager) PageImageOpener {
	return func(string) (PageImager, error) { return doc, nil }
}

// stubEngine maps page image bytes to recognized text.
type stubEngine struct {
	texts map[string]string
	err   error
}

func (e *stubEngine) Name() string { return "stub" }
func (e *stubEngine) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	if e.err != nil {
		return ocr.Result{}, e.err
	}
	return ocr.Result{PlainText: e.texts[string(in.Image)]}, nil
}

func TestPaperExtractFromOCR(t *testing.T) {
	doc := &stubImager{pages: []stubPage{{data: "page1"}}}
	engine := &stubEngine{texts: map[string]string{
		"page1": "BIO 101\n" +
			"Introduction to Biology\n" +
			"Department of Biological Sciences\n" +
			"Semester 1 Examination 2023\n" +
			"Main Exam",
	}}
	e := NewPaperExtractor(engine, imagerFor(doc), "eng")

	set := e.Extract(context.Background(), "/papers/BIO_101_2019_2_Mock.pdf")

	unitCode, ok := set.Get(FieldUnitCode)
	require.True(t, ok)
	assert.Equal(t, "BIO 101", unitCode.Text)
	assert.Equal(t, ProvenanceOCR, unitCode.Provenance)
	assert.Equal(t, confUnitCode, unitCode.Confidence)

	assert.Equal(t, "Introduction to Biology", set.Text(FieldUnitName))
	assert.Equal(t, "Biological Sciences", set.Text(FieldFaculty))

	// OCR-derived values win over the conflicting filename tokens.
	assert.Equal(t, "2023", set.Text(FieldYear))
	assert.Equal(t, "1", set.Text(FieldSemester))
	assert.Equal(t, "Main", set.Text(FieldExamType))
}

func TestPaperExtractEngineFailureFallsBackToFilename(t *testing.T) {
	doc := &stubImager{pages: []stubPage{{data: "page1"}}}
	engine := &stubEngine{err: errors.New("tesseract unavailable")}
	e := NewPaperExtractor(engine, imagerFor(doc), "eng")

	set := e.Extract(context.Background(), "/papers/MENT130_Management_2023_1_Main.pdf")

	require.Len(t, set.Annotations(), 1)
	assert.Contains(t, set.Annotations()[0], "ocr: tesseract unavailable")

	unitCode, ok := set.Get(FieldUnitCode)
	require.True(t, ok)
	assert.Equal(t, "MENT130", unitCode.Text)
	assert.Equal(t, ProvenanceFilename, unitCode.Provenance)
	assert.Equal(t, confFilenameBackfill, unitCode.Confidence)

	assert.Equal(t, "2023", set.Text(FieldYear))
	assert.Equal(t, "1", set.Text(FieldSemester))
	assert.Equal(t, "Main", set.Text(FieldExamType))

	// The single filename line carries digits, so no unit name is guessed.
	assert.Equal(t, "", set.Text(FieldUnitName))
}

func TestPaperExtractRetriesSecondPage(t *testing.T) {
	doc := &stubImager{pages: []stubPage{{data: "blank"}, {data: "page2"}}}
	engine := &stubEngine{texts: map[string]string{
		"blank": "",
		"page2": "CHEM 205\nSemester 2 2021\nCAT",
	}}
	e := NewPaperExtractor(engine, imagerFor(doc), "eng")

	set := e.Extract(context.Background(), "/papers/chemistry.pdf")

	assert.Equal(t, "CHEM 205", set.Text(FieldUnitCode))
	assert.Equal(t, "2021", set.Text(FieldYear))
	assert.Equal(t, "2", set.Text(FieldSemester))
	assert.Equal(t, "CAT", set.Text(FieldExamType))
	assert.Empty(t, set.Annotations())
}

func TestPaperExtractBrokenPageImage(t *testing.T) {
	doc := &stubImager{pages: []stubPage{
		{err: errors.New("no image on page 1")},
		{data: "page2"},
	}}
	engine := &stubEngine{texts: map[string]string{"page2": "PHYS 110\nSemester 1 2020\nMain"}}
	e := NewPaperExtractor(engine, imagerFor(doc), "eng")

	set := e.Extract(context.Background(), "/papers/physics.pdf")

	assert.Equal(t, "PHYS 110", set.Text(FieldUnitCode))
	assert.Empty(t, set.Annotations())
}

func TestPaperExtractOpenFailureFallsBackToFilename(t *testing.T) {
	open := func(string) (PageImager, error) { return nil, errors.New("pdfcpu read: file is corrupt") }
	engine := &stubEngine{}
	e := NewPaperExtractor(engine, open, "eng")

	set := e.Extract(context.Background(), "/papers/HIST_202_2018_supp.pdf")

	require.Len(t, set.Annotations(), 1)
	assert.Contains(t, set.Annotations()[0], "ocr:")
	assert.Equal(t, "HIST 202", set.Text(FieldUnitCode))
	assert.Equal(t, "2018", set.Text(FieldYear))
	assert.Equal(t, "Supplementary", set.Text(FieldExamType))
}

func TestPaperExtractOCRBeatsFilenameVariant(t *testing.T) {
	doc := &stubImager{pages: []stubPage{{data: "page1"}}}
	engine := &stubEngine{texts: map[string]string{"page1": "BIO101"}}
	e := NewPaperExtractor(engine, imagerFor(doc), "eng")

	set := e.Extract(context.Background(), "/papers/BIO_101_notes.pdf")

	unitCode, ok := set.Get(FieldUnitCode)
	require.True(t, ok)
	assert.Equal(t, "BIO101", unitCode.Text)
	assert.Equal(t, ProvenanceOCR, unitCode.Provenance)
}
