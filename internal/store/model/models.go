// Package model holds the catalog rows the ingestion pipeline writes.
// Published tables and pending-submission tables use different column names
// for the same semantic fields; the catalog writer translates between them.
package model

import "time"

// Book is a published catalog row.
type Book struct {
	ID          string `gorm:"primaryKey"`
	ISBN        string `gorm:"column:isbn;index"`
	Title       string
	Author      string
	Description string
	Publisher   string
	Language    string
	Year        int
	Pages       int
	Categories  string
	FileURL     string
	CoverURL    *string
	Views       int
	Downloads   int
	Status      string
	UploadedBy  *string
	CreatedAt   time.Time
}

// BookSubmission is a book awaiting manual approval. Same shape as Book,
// legacy column names.
type BookSubmission struct {
	ID              string `gorm:"primaryKey"`
	BookISBN        string `gorm:"column:book_isbn;index"`
	Name            string
	Writer          string
	Summary         string
	PublishingHouse string
	Lang            string
	PublishedYear   int
	PageTotal       int
	CategoryList    string
	DocumentURL     string
	ThumbnailURL    *string
	ViewCount       int
	DownloadCount   int
	ReviewStatus    string
	SubmittedBy     *string
	CreatedAt       time.Time
}

// PastPaper is a published past-exam-paper row.
type PastPaper struct {
	ID         string `gorm:"primaryKey"`
	UnitCode   string `gorm:"index"`
	UnitName   string
	Faculty    string
	Year       int
	Semester   string
	ExamType   string
	FileURL    string
	CoverURL   *string
	Views      int
	Downloads  int
	Status     string
	UploadedBy *string
	CreatedAt  time.Time
}

// PastPaperSubmission is a past paper awaiting manual approval. Same shape
// as PastPaper, legacy column names.
type PastPaperSubmission struct {
	ID            string `gorm:"primaryKey"`
	CourseCode    string `gorm:"index"`
	CourseTitle   string
	Department    string
	ExamYear      int
	Term          string
	PaperType     string
	DocumentURL   string
	ThumbnailURL  *string
	ViewCount     int
	DownloadCount int
	ReviewStatus  string
	SubmittedBy   *string
	CreatedAt     time.Time
}
