package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrorLog is the structured append-only failure log written next to the
// checkpoint, one JSON object per line. A nil ErrorLog discards writes.
type ErrorLog struct {
	f   *os.File
	enc *json.Encoder
}

type errorEntry struct {
	Time   time.Time `json:"time"`
	Path   string    `json:"path"`
	Stage  string    `json:"stage"`
	Reason string    `json:"reason"`
}

// OpenErrorLog creates one error log per run, named by document class and
// start time.
func OpenErrorLog(dir, class string) (*ErrorLog, error) {
	name := fmt.Sprintf("ingest-errors-%s-%s.jsonl", class, time.Now().UTC().Format("20060102T150405Z"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	return &ErrorLog{f: f, enc: json.NewEncoder(f)}, nil
}

func (l *ErrorLog) Write(path, stage, reason string) {
	if l == nil {
		return
	}
	_ = l.enc.Encode(errorEntry{
		Time:   time.Now().UTC(),
		Path:   path,
		Stage:  stage,
		Reason: reason,
	})
}

func (l *ErrorLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
