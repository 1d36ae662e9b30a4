package pipeline

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/openshelf/ingest/internal/enrich"
	"github.com/openshelf/ingest/internal/extract"
)

// Record is the enriched, always-minimally-valid item metadata flowing into
// the catalog writer. Fields may be empty strings, never undefined, so
// downstream stages need no null-checks beyond "is this field present".
type Record struct {
	ID          string
	Identifier  string
	Title       string
	Author      string
	Description string
	Publisher   string
	Language    string
	Year        int
	Pages       int
	Categories  []string

	UnitCode string
	UnitName string
	Faculty  string
	Semester string
	ExamType string

	// CoverURL is an external enrichment-provided cover location; it is the
	// fallback when uploading a cover of our own fails.
	CoverURL string
	// FileURL and StoredCoverURL are set after upload.
	FileURL        string
	StoredCoverURL string
}

// NewRecord builds the minimal valid record from extraction output. Title
// defaults to the cleaned filename and author to "Unknown" so enrichment
// failure never blocks an otherwise-valid upload.
func NewRecord(path string, fields *extract.FieldSet) *Record {
	rec := &Record{
		ID:         uuid.NewString(),
		Identifier: fields.Text(extract.FieldIdentifier),
		Title:      fields.Text(extract.FieldTitle),
		Author:     fields.Text(extract.FieldAuthor),
		UnitCode:   fields.Text(extract.FieldUnitCode),
		UnitName:   fields.Text(extract.FieldUnitName),
		Faculty:    fields.Text(extract.FieldFaculty),
		Semester:   fields.Text(extract.FieldSemester),
		ExamType:   fields.Text(extract.FieldExamType),
	}
	if rec.Title == "" {
		rec.Title = extract.CleanFilename(path)
	}
	if rec.Author == "" {
		rec.Author = "Unknown"
	}
	if year := fields.Text(extract.FieldYear); year != "" {
		rec.Year, _ = strconv.Atoi(year)
	}
	return rec
}

// applyMatch folds enrichment results into the record. Enrichment values win
// over extraction-only guesses wherever the service returned something.
func (r *Record) applyMatch(m *enrich.Match) {
	if m == nil {
		return
	}
	if m.Identifier != "" {
		r.Identifier = m.Identifier
	}
	if m.Title != "" {
		r.Title = m.Title
	}
	if m.Author != "" {
		r.Author = m.Author
	}
	if m.Description != "" {
		r.Description = m.Description
	}
	if m.Publisher != "" {
		r.Publisher = m.Publisher
	}
	if m.Language != "" {
		r.Language = m.Language
	}
	if m.Year != 0 {
		r.Year = m.Year
	}
	if m.PageCount != 0 {
		r.Pages = m.PageCount
	}
	if len(m.Categories) > 0 {
		r.Categories = m.Categories
	}
	if m.CoverURL != "" {
		r.CoverURL = m.CoverURL
	}
}
