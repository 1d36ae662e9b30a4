// Package extract produces best-effort document metadata through layered
// heuristics. Every populated field carries the strategy that produced it and
// a confidence weight; a single merge rule decides which strategy wins.
package extract

// Provenance identifies the strategy that produced a field value.
type Provenance string

const (
	ProvenanceFilename     Provenance = "filename"
	ProvenanceEmbeddedText Provenance = "embedded_text"
	ProvenanceOCR          Provenance = "ocr"
)

// Field names one extractable metadata field.
type Field string

const (
	FieldIdentifier Field = "identifier"
	FieldTitle      Field = "title"
	FieldAuthor     Field = "author"
	FieldUnitCode   Field = "unit_code"
	FieldUnitName   Field = "unit_name"
	FieldFaculty    Field = "faculty"
	FieldYear       Field = "year"
	FieldSemester   Field = "semester"
	FieldExamType   Field = "exam_type"
)

// Value is one extracted field value with its provenance and confidence.
type Value struct {
	Text       string
	Provenance Provenance
	Confidence float64
}

// FieldSet is the result of an extraction run. Strategies contribute values
// through Merge; lower-confidence fallbacks fill gaps but never clobber a
// higher-confidence hit already recorded for the same field.
type FieldSet struct {
	values      map[Field]Value
	annotations []string
}

func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[Field]Value)}
}

// Merge records v for field f unless a strictly more confident value is
// already present. Empty values are ignored. Reports whether v was applied.
func (s *FieldSet) Merge(f Field, v Value) bool {
	if v.Text == "" {
		return false
	}
	if cur, ok := s.values[f]; ok && v.Confidence < cur.Confidence {
		return false
	}
	s.values[f] = v
	return true
}

// Get returns the recorded value for f.
func (s *FieldSet) Get(f Field) (Value, bool) {
	v, ok := s.values[f]
	return v, ok
}

// Text returns the recorded text for f, or the empty string.
func (s *FieldSet) Text(f Field) string {
	return s.values[f].Text
}

// Len reports the number of populated fields.
func (s *FieldSet) Len() int { return len(s.values) }

// Annotate records a degradation note (open failure, OCR failure). Annotated
// sets are still valid results; the notes end up in logs, not in failures.
func (s *FieldSet) Annotate(note string) {
	s.annotations = append(s.annotations, note)
}

// Annotations returns the degradation notes recorded during extraction.
func (s *FieldSet) Annotations() []string { return s.annotations }
