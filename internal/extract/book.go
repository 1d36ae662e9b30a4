package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Confidence weights of the book fallback chain. Filename identifiers are the
// cheapest, highest-precedence signal for well-named files; each later
// strategy only fills what earlier ones left open.
const (
	confFilenameISBN  = 0.95
	confEmbeddedISBN  = 0.85
	confEmbeddedTitle = 0.5
	confFilenameTitle = 0.3
)

// embeddedTextPages bounds how many pages are scanned for embedded text.
const embeddedTextPages = 2

// titleCandidateLines bounds how many non-empty lines are considered when
// guessing a title from embedded text.
const titleCandidateLines = 10

var embeddedISBNRe = regexp.MustCompile(`(?i)isbn(?:-1[03])?[:\s]*((?:97[89][-\s]?)?(?:\d[-\s]?){9}[\dxX])`)

// DocumentReader is the read-side of an opened document.
type DocumentReader interface {
	PageCount() int
	PageText(pageNr int) string
}

// DocumentOpener opens a document for text extraction.
type DocumentOpener func(path string) (DocumentReader, error)

// BookExtractor runs the book-class fallback chain: filename ISBN, embedded
// ISBN, embedded title heuristic, cleaned filename.
type BookExtractor struct {
	open DocumentOpener
}

func NewBookExtractor(open DocumentOpener) *BookExtractor {
	return &BookExtractor{open: open}
}

// Extract never fails: documents that cannot be opened degrade to
// filename-derived metadata with an annotation.
func (e *BookExtractor) Extract(ctx context.Context, path string) *FieldSet {
	set := NewFieldSet()

	// Last-resort title so the record is always minimally valid.
	set.Merge(FieldTitle, Value{
		Text:       CleanFilename(path),
		Provenance: ProvenanceFilename,
		Confidence: confFilenameTitle,
	})

	if isbn := identifierFromFilename(path); isbn != "" {
		set.Merge(FieldIdentifier, Value{
			Text:       isbn,
			Provenance: ProvenanceFilename,
			Confidence: confFilenameISBN,
		})
		return set
	}

	doc, err := e.open(path)
	if err != nil {
		set.Annotate(fmt.Sprintf("open: %v", err))
		return set
	}

	pages := doc.PageCount()
	if pages > embeddedTextPages {
		pages = embeddedTextPages
	}

	var lines []string
	for pageNr := 1; pageNr <= pages; pageNr++ {
		text := doc.PageText(pageNr)
		if text == "" {
			continue
		}
		if isbn := findEmbeddedISBN(text); isbn != "" {
			set.Merge(FieldIdentifier, Value{
				Text:       isbn,
				Provenance: ProvenanceEmbeddedText,
				Confidence: confEmbeddedISBN,
			})
			return set
		}
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	if title := guessTitle(lines); title != "" {
		set.Merge(FieldTitle, Value{
			Text:       title,
			Provenance: ProvenanceEmbeddedText,
			Confidence: confEmbeddedTitle,
		})
	}
	return set
}

// findEmbeddedISBN searches text for an identifier pattern near the literal
// word ISBN and normalizes it to bare digits.
func findEmbeddedISBN(text string) string {
	m := embeddedISBNRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	var digits strings.Builder
	for _, r := range m[1] {
		if unicode.IsDigit(r) || r == 'x' || r == 'X' {
			digits.WriteRune(r)
		}
	}
	isbn := digits.String()
	if len(isbn) == 10 || len(isbn) == 13 {
		return isbn
	}
	return ""
}

// guessTitle picks the first plausible title among the leading non-empty
// lines: sensible length, starts with an uppercase letter.
func guessTitle(lines []string) string {
	if len(lines) > titleCandidateLines {
		lines = lines[:titleCandidateLines]
	}
	for _, line := range lines {
		if len(line) < 3 || len(line) > 100 {
			continue
		}
		first := []rune(line)[0]
		if unicode.IsUpper(first) {
			return line
		}
	}
	return ""
}
