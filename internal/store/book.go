package store

import (
	"context"

	"github.com/openshelf/ingest/internal/store/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Book interface {
	Insert(ctx context.Context, book model.Book) (*model.Book, error)
	InsertSubmission(ctx context.Context, submission model.BookSubmission) (*model.BookSubmission, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	InitialMigration() error
}

type BookStore struct {
	db *gorm.DB
}

// Make sure we conform to Book interface
var _ Book = (*BookStore)(nil)

func NewBookStore(db *gorm.DB) Book {
	return &BookStore{db: db}
}

func (s *BookStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Book{}, &model.BookSubmission{})
}

func (s *BookStore) Insert(ctx context.Context, book model.Book) (*model.Book, error) {
	if result := s.db.WithContext(ctx).Create(&book); result.Error != nil {
		return nil, errors.Wrap(translate(result.Error), "inserting book")
	}
	return &book, nil
}

func (s *BookStore) InsertSubmission(ctx context.Context, submission model.BookSubmission) (*model.BookSubmission, error) {
	if result := s.db.WithContext(ctx).Create(&submission); result.Error != nil {
		return nil, errors.Wrap(translate(result.Error), "inserting book submission")
	}
	return &submission, nil
}

// ExistsByISBN reports whether any published book or pending submission
// carries the identifier. The two lookups are independent reads and run
// concurrently.
func (s *BookStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	type lookup struct {
		found bool
		err   error
	}
	results := make(chan lookup, 2)

	go func() {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Book{}).Where("isbn = ?", isbn).Count(&count).Error
		results <- lookup{found: count > 0, err: err}
	}()
	go func() {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.BookSubmission{}).Where("book_isbn = ?", isbn).Count(&count).Error
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
