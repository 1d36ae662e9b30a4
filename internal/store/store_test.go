package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/openshelf/ingest/internal/config"
	"github.com/openshelf/ingest/internal/store"
	"github.com/openshelf/ingest/internal/store/model"
)

var _ = Describe("book store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())
		gormdb = db
		s = store.NewStore(db)
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		Expect(s.Close()).To(BeNil())
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM books")
		gormdb.Exec("DELETE FROM book_submissions")
	})

	Context("insert", func() {
		It("successfully inserts a published book", func() {
			book, err := s.Book().Insert(context.TODO(), model.Book{
				ID:      "b-1",
				ISBN:    "9780140328721",
				Title:   "Matilda",
				Author:  "Roald Dahl",
				FileURL: "https://cdn.example/books/b-1.pdf",
				Status:  "published",
			})
			Expect(err).To(BeNil())
			Expect(book.ID).To(Equal("b-1"))

			var count int64
			gormdb.Model(&model.Book{}).Count(&count)
			Expect(count).To(Equal(int64(1)))
		})

		It("rejects a duplicate primary key", func() {
			_, err := s.Book().Insert(context.TODO(), model.Book{ID: "b-1", ISBN: "9780140328721"})
			Expect(err).To(BeNil())
			_, err = s.Book().Insert(context.TODO(), model.Book{ID: "b-1", ISBN: "9780140328721"})
			Expect(err).ToNot(BeNil())
			Expect(err).To(MatchError(store.ErrDuplicateKey))
		})

		It("successfully inserts a pending submission", func() {
			sub, err := s.Book().InsertSubmission(context.TODO(), model.BookSubmission{
				ID:           "sub-1",
				BookISBN:     "9780140328721",
				Name:         "Matilda",
				Writer:       "Roald Dahl",
				ReviewStatus: "pending",
			})
			Expect(err).To(BeNil())
			Expect(sub.ReviewStatus).To(Equal("pending"))
		})
	})

	Context("exists by isbn", func() {
		It("reports false on an empty catalog", func() {
			exists, err := s.Book().ExistsByISBN(context.TODO(), "9780140328721")
			Expect(err).To(BeNil())
			Expect(exists).To(BeFalse())
		})

		It("finds a published book", func() {
			_, err := s.Book().Insert(context.TODO(), model.Book{ID: "b-1", ISBN: "9780140328721"})
			Expect(err).To(BeNil())

			exists, err := s.Book().ExistsByISBN(context.TODO(), "9780140328721")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())
		})

		It("finds a pending submission", func() {
			_, err := s.Book().InsertSubmission(context.TODO(), model.BookSubmission{ID: "sub-1", BookISBN: "9780140328721"})
			Expect(err).To(BeNil())

			exists, err := s.Book().ExistsByISBN(context.TODO(), "9780140328721")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())
		})
	})
})

var _ = Describe("past paper store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())
		gormdb = db
		s = store.NewStore(db)
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		Expect(s.Close()).To(BeNil())
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM past_papers")
		gormdb.Exec("DELETE FROM past_paper_submissions")
	})

	Context("insert", func() {
		It("successfully inserts a published past paper", func() {
			paper, err := s.PastPaper().Insert(context.TODO(), model.PastPaper{
				ID:       "p-1",
				UnitCode: "MENT130",
				UnitName: "Management",
				Year:     2023,
				Semester: "1",
				ExamType: "Main",
				Status:   "published",
			})
			Expect(err).To(BeNil())
			Expect(paper.UnitCode).To(Equal("MENT130"))
		})
	})

	Context("exists", func() {
		It("matches on the full unit, year, semester and exam type key", func() {
			_, err := s.PastPaper().Insert(context.TODO(), model.PastPaper{
				ID: "p-1", UnitCode: "MENT130", Year: 2023, Semester: "1", ExamType: "Main",
			})
			Expect(err).To(BeNil())

			exists, err := s.PastPaper().Exists(context.TODO(), "MENT130", 2023, "1", "Main")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())

			exists, err = s.PastPaper().Exists(context.TODO(), "MENT130", 2023, "1", "Supplementary")
			Expect(err).To(BeNil())
			Expect(exists).To(BeFalse())

			exists, err = s.PastPaper().Exists(context.TODO(), "MENT130", 2022, "1", "Main")
			Expect(err).To(BeNil())
			Expect(exists).To(BeFalse())
		})

		It("finds a pending submission", func() {
			_, err := s.PastPaper().InsertSubmission(context.TODO(), model.PastPaperSubmission{
				ID: "sub-1", CourseCode: "CHEM205", ExamYear: 2021, Term: "2", PaperType: "CAT",
			})
			Expect(err).To(BeNil())

			exists, err := s.PastPaper().Exists(context.TODO(), "CHEM205", 2021, "2", "CAT")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())
		})
	})
})
