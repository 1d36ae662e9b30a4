package store

import (
	"gorm.io/gorm"
)

type Store interface {
	Book() Book
	PastPaper() PastPaper
	InitialMigration() error
	Close() error
}

type DataStore struct {
	book      Book
	pastPaper PastPaper
	db        *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		book:      NewBookStore(db),
		pastPaper: NewPastPaperStore(db),
		db:        db,
	}
}

func (s *DataStore) Book() Book {
	return s.book
}

func (s *DataStore) PastPaper() PastPaper {
	return s.pastPaper
}

func (s *DataStore) InitialMigration() error {
	if err := s.book.InitialMigration(); err != nil {
		return err
	}
	return s.pastPaper.InitialMigration()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
