package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/openshelf/ingest/internal/extract"
	"github.com/openshelf/ingest/internal/store"
	"github.com/openshelf/ingest/internal/store/model"
)

// Catalog row statuses.
const (
	StatusPublished = "published"
	StatusPending   = "pending"
)

// CatalogWriter inserts one normalized row per successfully uploaded item.
type CatalogWriter interface {
	Write(ctx context.Context, rec *Record) error
}

// DedupChecker decides whether an item already exists in the catalog or the
// pending-submission store. Items without an identifier are never
// deduplicated.
type DedupChecker interface {
	Exists(ctx context.Context, fields *extract.FieldSet) (bool, error)
}

// storeWriter translates records into the table-appropriate payload.
// Published tables and submission tables use different column names for the
// same semantic fields; the model types carry that mapping.
type storeWriter struct {
	store        store.Store
	class        DocumentClass
	asSubmission bool
	uploadedBy   string
}

var _ CatalogWriter = (*storeWriter)(nil)

func NewCatalogWriter(s store.Store, class DocumentClass, asSubmission bool, uploadedBy string) CatalogWriter {
	return &storeWriter{store: s, class: class, asSubmission: asSubmission, uploadedBy: uploadedBy}
}

func (w *storeWriter) Write(ctx context.Context, rec *Record) error {
	uploader := optional(w.uploadedBy)
	cover := optional(rec.StoredCoverURL)
	if cover == nil {
		cover = optional(rec.CoverURL)
	}

	if w.class == ClassPastPaper {
		if w.asSubmission {
			_, err := w.store.PastPaper().InsertSubmission(ctx, model.PastPaperSubmission{
				ID:           rec.ID,
				CourseCode:   rec.UnitCode,
				CourseTitle:  rec.UnitName,
				Department:   rec.Faculty,
				ExamYear:     rec.Year,
				Term:         rec.Semester,
				PaperType:    rec.ExamType,
				DocumentURL:  rec.FileURL,
				ThumbnailURL: cover,
				ReviewStatus: StatusPending,
				SubmittedBy:  uploader,
			})
			return err
		}
		_, err := w.store.PastPaper().Insert(ctx, model.PastPaper{
			ID:         rec.ID,
			UnitCode:   rec.UnitCode,
			UnitName:   rec.UnitName,
			Faculty:    rec.Faculty,
			Year:       rec.Year,
			Semester:   rec.Semester,
			ExamType:   rec.ExamType,
			FileURL:    rec.FileURL,
			CoverURL:   cover,
			Status:     StatusPublished,
			UploadedBy: uploader,
		})
		return err
	}

	if w.asSubmission {
		_, err := w.store.Book().InsertSubmission(ctx, model.BookSubmission{
			ID:              rec.ID,
			BookISBN:        rec.Identifier,
			Name:            rec.Title,
			Writer:          rec.Author,
			Summary:         rec.Description,
			PublishingHouse: rec.Publisher,
			Lang:            rec.Language,
			PublishedYear:   rec.Year,
			PageTotal:       rec.Pages,
			CategoryList:    strings.Join(rec.Categories, ","),
			DocumentURL:     rec.FileURL,
			ThumbnailURL:    cover,
			ReviewStatus:    StatusPending,
			SubmittedBy:     uploader,
		})
		return err
	}
	_, err := w.store.Book().Insert(ctx, model.Book{
		ID:          rec.ID,
		ISBN:        rec.Identifier,
		Title:       rec.Title,
		Author:      rec.Author,
		Description: rec.Description,
		Publisher:   rec.Publisher,
		Language:    rec.Language,
		Year:        rec.Year,
		Pages:       rec.Pages,
		Categories:  strings.Join(rec.Categories, ","),
		FileURL:     rec.FileURL,
		CoverURL:    cover,
		Status:      StatusPublished,
		UploadedBy:  uploader,
	})
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// storeDedup consults the catalog through the store's concurrent
// published+pending lookups.
type storeDedup struct {
	store store.Store
	class DocumentClass
}

var _ DedupChecker = (*storeDedup)(nil)

func NewDedupChecker(s store.Store, class DocumentClass) DedupChecker {
	return &storeDedup{store: s, class: class}
}

func (d *storeDedup) Exists(ctx context.Context, fields *extract.FieldSet) (bool, error) {
	if d.class == ClassPastPaper {
		unitCode := fields.Text(extract.FieldUnitCode)
		if unitCode == "" {
			return false, nil
		}
		year, _ := strconv.Atoi(fields.Text(extract.FieldYear))
		return d.store.PastPaper().Exists(ctx, unitCode,
			year,
			fields.Text(extract.FieldSemester),
			fields.Text(extract.FieldExamType),
		)
	}

	isbn := fields.Text(extract.FieldIdentifier)
	if isbn == "" {
		return false, nil
	}
	return d.store.Book().ExistsByISBN(ctx, isbn)
}
