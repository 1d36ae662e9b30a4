package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/openshelf/ingest/internal/ocr"
)

// Fixed confidence weights of the past-paper OCR grammar. Unit name is
// deliberately the lowest-confidence field: it is a free-text guess.
const (
	confExamType = 0.8
	confSemester = 0.7
	confYear     = 0.9
	confUnitCode = 0.85
	confUnitName = 0.6
	confFaculty  = 0.75

	// Filename-derived values only ever fill gaps the OCR pass left open.
	confFilenameBackfill = 0.1
)

// minYear bounds plausible exam years; the upper bound is current year + 1.
const minYear = 1990

var (
	examTypeRe        = regexp.MustCompile(`(?i)\b(supplementary|supp|cat|mock|main)\b`)
	semesterLabeledRe = regexp.MustCompile(`(?i)\b(?:semester|sem|trimester)\s*[:.]?\s*([1-3])\b`)
	semesterBareRe    = regexp.MustCompile(`\b([1-3])\b`)
	yearRe            = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	unitCodeRe        = regexp.MustCompile(`\b([A-Za-z]{2,4} ?\d{2,4})\b`)
	facultyRe         = regexp.MustCompile(`(?i)\b(?:department|faculty|school|subject)\s*(?:of\s+)?[:\-]?\s*([^\n\r]+)`)
	instructionLineRe = regexp.MustCompile(`(?i)instruction|answer|attempt|question|candidate|time allowed|date\b`)
	examTypeCanonical = map[string]string{"supplementary": "Supplementary", "supp": "Supplementary", "cat": "CAT", "mock": "Mock", "main": "Main"}
)

// PageImager is the image-side of an opened scanned document.
type PageImager interface {
	PageCount() int
	PageImage(pageNr int) ([]byte, string, error)
}

// PageImageOpener opens a document for page-image extraction.
type PageImageOpener func(path string) (PageImager, error)

// PaperExtractor runs the past-paper pipeline: OCR the first page (retrying
// on page two when the first yields nothing), parse the raw text with the
// field grammar, then backfill gaps from the filename at reduced confidence.
type PaperExtractor struct {
	engine   ocr.Engine
	open     PageImageOpener
	language string
}

func NewPaperExtractor(engine ocr.Engine, open PageImageOpener, language string) *PaperExtractor {
	if language == "" {
		language = "eng"
	}
	return &PaperExtractor{engine: engine, open: open, language: language}
}

// Extract never fails for the item: an OCR failure yields an annotated set
// populated from the filename alone.
func (e *PaperExtractor) Extract(ctx context.Context, path string) *FieldSet {
	set := NewFieldSet()

	text, err := e.recognize(ctx, path)
	if err != nil {
		set.Annotate(fmt.Sprintf("ocr: %v", err))
	}
	if text != "" {
		parsePaperText(set, text, ProvenanceOCR, 0)
	}

	// Filename values never override an OCR-derived field: the merge rule
	// keeps them strictly gap-filling at this confidence.
	parsePaperText(set, normalizeFilename(path), ProvenanceFilename, confFilenameBackfill)

	return set
}

func (e *PaperExtractor) recognize(ctx context.Context, path string) (string, error) {
	doc, err := e.open(path)
	if err != nil {
		return "", err
	}

	pages := doc.PageCount()
	if pages > 2 {
		pages = 2
	}
	var lastErr error
	for pageNr := 1; pageNr <= pages; pageNr++ {
		img, contentType, err := doc.PageImage(pageNr)
		if err != nil {
			lastErr = err
			continue
		}
		res, err := e.engine.Recognize(ctx, ocr.Input{
			Image:     img,
			Format:    contentType,
			Languages: []string{e.language},
		})
		if err != nil {
			return "", err
		}
		if res.PlainText != "" {
			return res.PlainText, nil
		}
	}
	return "", lastErr
}

// parsePaperText applies the independent field rules to text. A non-zero
// override replaces each rule's fixed weight (filename backfill).
func parsePaperText(set *FieldSet, text string, prov Provenance, override float64) {
	conf := func(weight float64) float64 {
		if override > 0 {
			return override
		}
		return weight
	}

	if m := examTypeRe.FindStringSubmatch(text); m != nil {
		set.Merge(FieldExamType, Value{
			Text:       examTypeCanonical[strings.ToLower(m[1])],
			Provenance: prov,
			Confidence: conf(confExamType),
		})
	}

	if m := semesterLabeledRe.FindStringSubmatch(text); m != nil {
		set.Merge(FieldSemester, Value{Text: m[1], Provenance: prov, Confidence: conf(confSemester)})
	} else if m := semesterBareRe.FindStringSubmatch(text); m != nil {
		set.Merge(FieldSemester, Value{Text: m[1], Provenance: prov, Confidence: conf(confSemester)})
	}

	maxYear := time.Now().Year() + 1
	for _, m := range yearRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		if year >= minYear && year <= maxYear {
			set.Merge(FieldYear, Value{Text: m[1], Provenance: prov, Confidence: conf(confYear)})
			break
		}
	}

	if m := unitCodeRe.FindStringSubmatch(text); m != nil {
		set.Merge(FieldUnitCode, Value{Text: strings.TrimSpace(m[1]), Provenance: prov, Confidence: conf(confUnitCode)})
	}

	if name := guessUnitName(text); name != "" {
		set.Merge(FieldUnitName, Value{Text: name, Provenance: prov, Confidence: conf(confUnitName)})
	}

	if m := facultyRe.FindStringSubmatch(text); m != nil {
		faculty := strings.TrimSpace(m[1])
		if len(faculty) > 80 {
			faculty = faculty[:80]
		}
		if faculty != "" {
			set.Merge(FieldFaculty, Value{Text: faculty, Provenance: prov, Confidence: conf(confFaculty)})
		}
	}
}

// guessUnitName picks the first sufficiently long capitalized line that is
// neither an instruction/metadata line nor carries digits.
func guessUnitName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 || len(line) > 120 {
			continue
		}
		if instructionLineRe.MatchString(line) {
			continue
		}
		if strings.ContainsAny(line, "0123456789") {
			continue
		}
		if unicode.IsUpper([]rune(line)[0]) {
			return line
		}
	}
	return ""
}
