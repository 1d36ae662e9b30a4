package store

import (
	"context"

	"github.com/openshelf/ingest/internal/store/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type PastPaper interface {
	Insert(ctx context.Context, paper model.PastPaper) (*model.PastPaper, error)
	InsertSubmission(ctx context.Context, submission model.PastPaperSubmission) (*model.PastPaperSubmission, error)
	Exists(ctx context.Context, unitCode string, year int, semester, examType string) (bool, error)
	InitialMigration() error
}

type PastPaperStore struct {
	db *gorm.DB
}

// Make sure we conform to PastPaper interface
var _ PastPaper = (*PastPaperStore)(nil)

func NewPastPaperStore(db *gorm.DB) PastPaper {
	return &PastPaperStore{db: db}
}

func (s *PastPaperStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.PastPaper{}, &model.PastPaperSubmission{})
}

func (s *PastPaperStore) Insert(ctx context.Context, paper model.PastPaper) (*model.PastPaper, error) {
	if result := s.db.WithContext(ctx).Create(&paper); result.Error != nil {
		return nil, errors.Wrap(translate(result.Error), "inserting past paper")
	}
	return &paper, nil
}

func (s *PastPaperStore) InsertSubmission(ctx context.Context, submission model.PastPaperSubmission) (*model.PastPaperSubmission, error) {
	if result := s.db.WithContext(ctx).Create(&submission); result.Error != nil {
		return nil, errors.Wrap(translate(result.Error), "inserting past paper submission")
	}
	return &submission, nil
}

// Exists reports whether the published table or the pending-submission table
// already holds a paper for the same unit, year, semester and exam type. The
// two lookups run concurrently.
func (s *PastPaperStore) Exists(ctx context.Context, unitCode string, year int, semester, examType string) (bool, error) {
	type lookup struct {
		found bool
		err   error
	}
	results := make(chan lookup, 2)

	go func() {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.PastPaper{}).
			Where("unit_code = ? AND year = ? AND semester = ? AND exam_type = ?", unitCode, year, semester, examType).
			Count(&count).Error
		results <- lookup{found: count > 0, err: err}
	}()
	go func() {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.PastPaperSubmission{}).
			Where("course_code = ? AND exam_year = ? AND term = ? AND paper_type = ?", unitCode, year, semester, examType).
			Count(&count).Error
		results <- lookup{found: count > 0, err: err}
	}()

	var found bool
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			return false, translate(res.err)
		}
		if res.found {
			found = true
		}
	}
	return found, nil
}
