package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDocument struct {
	pages []string
}

func (d *stubDocument) PageCount() int             { return len(d.pages) }
func (d *stubDocument) PageText(pageNr int) string { return d.pages[pageNr-1] }

func openerFor(doc *stubDocument) DocumentOpener {
	return func(string) (DocumentReader, error) { return doc, nil }
}

func TestBookExtractFilenameISBN(t *testing.T) {
	e := NewBookExtractor(func(string) (DocumentReader, error) {
		t.Fatal("document must not be opened when the filename carries an identifier")
		return nil, nil
	})

	set := e.Extract(context.Background(), "/library/9780140328721.pdf")

	got, ok := set.Get(FieldIdentifier)
	require.True(t, ok)
	assert.Equal(t, "9780140328721", got.Text)
	assert.Equal(t, ProvenanceFilename, got.Provenance)
	assert.Equal(t, confFilenameISBN, got.Confidence)
	assert.Empty(t, set.Annotations())
}

func TestBookExtractEmbeddedISBN(t *testing.T) {
	doc := &stubDocument{pages: []string{
		"Matilda\nFirst published 1988",
		"ISBN-13: 978-0-14-032872-1\nPuffin Books",
	}}
	e := NewBookExtractor(openerFor(doc))

	set := e.Extract(context.Background(), "scan_001.pdf")

	got, ok := set.Get(FieldIdentifier)
	require.True(t, ok)
	assert.Equal(t, "9780140328721", got.Text)
	assert.Equal(t, ProvenanceEmbeddedText, got.Provenance)
	assert.Equal(t, confEmbeddedISBN, got.Confidence)
}

func TestBookExtractTitleHeuristic(t *testing.T) {
	doc := &stubDocument{pages: []string{
		"a scanned page\nAdvanced Organic Chemistry\nby Jerry March",
	}}
	e := NewBookExtractor(openerFor(doc))

	set := e.Extract(context.Background(), "chem_notes.pdf")

	_, hasIdentifier := set.Get(FieldIdentifier)
	assert.False(t, hasIdentifier)

	got, ok := set.Get(FieldTitle)
	require.True(t, ok)
	assert.Equal(t, "Advanced Organic Chemistry", got.Text)
	assert.Equal(t, ProvenanceEmbeddedText, got.Provenance)
	assert.Equal(t, confEmbeddedTitle, got.Confidence)
}

func TestBookExtractOpenFailureDegradesToFilename(t *testing.T) {
	e := NewBookExtractor(func(string) (DocumentReader, error) {
		return nil, errors.New("file is encrypted")
	})

	set := e.Extract(context.Background(), "/library/old_scan_book.pdf")

	got, ok := set.Get(FieldTitle)
	require.True(t, ok)
	assert.Equal(t, "old scan book", got.Text)
	assert.Equal(t, ProvenanceFilename, got.Provenance)
	assert.Equal(t, confFilenameTitle, got.Confidence)

	require.Len(t, set.Annotations(), 1)
	assert.Contains(t, set.Annotations()[0], "open: file is encrypted")
}

func TestFindEmbeddedISBN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "hyphenated isbn13", text: "ISBN 978-0-14-032872-1", want: "9780140328721"},
		{name: "labelled isbn10", text: "isbn: 0-14-032872-6", want: "0140328726"},
		{name: "isbn10 with check x", text: "ISBN-10: 043942089X", want: "043942089X"},
		{name: "bare number without label", text: "order 9780140328721 today", want: ""},
		{name: "wrong length", text: "ISBN 12345", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, findEmbeddedISBN(test.text))
		})
	}
}
