// Package checkpoint persists incremental run state so a multi-hour
// ingestion can resume after a crash or stop without reprocessing completed
// items.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Failure records one item-fatal outcome with its human-readable reason.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Checkpoint is the durable run state. Every path the scanner enumerates
// ends up in exactly one of Completed, Skipped or Failed by run end, or stays
// unprocessed if the run was stopped.
type Checkpoint struct {
	Completed   []string  `json:"completed"`
	Skipped     []string  `json:"skipped"`
	Failed      []Failure `json:"failed"`
	Successful  int       `json:"successful"`
	StartedAt   time.Time `json:"startedAt"`
	LastSavedAt time.Time `json:"lastSavedAt"`

	seen map[string]struct{}
}

func New() *Checkpoint {
	return &Checkpoint{
		StartedAt: time.Now().UTC(),
		seen:      make(map[string]struct{}),
	}
}

func (c *Checkpoint) index() {
	c.seen = make(map[string]struct{}, len(c.Completed)+len(c.Skipped)+len(c.Failed))
	for _, p := range c.Completed {
		c.seen[p] = struct{}{}
	}
	for _, p := range c.Skipped {
		c.seen[p] = struct{}{}
	}
	for _, f := range c.Failed {
		c.seen[f.Path] = struct{}{}
	}
}

// IsDone reports whether path already reached a terminal bucket, in this run
// or a prior one.
func (c *Checkpoint) IsDone(path string) bool {
	_, ok := c.seen[path]
	return ok
}

func (c *Checkpoint) MarkCompleted(path string) {
	if c.IsDone(path) {
		return
	}
	c.Completed = append(c.Completed, path)
	c.Successful++
	c.seen[path] = struct{}{}
}

func (c *Checkpoint) MarkSkipped(path string) {
	if c.IsDone(path) {
		return
	}
	c.Skipped = append(c.Skipped, path)
	c.seen[path] = struct{}{}
}

func (c *Checkpoint) MarkFailed(path, reason string) {
	if c.IsDone(path) {
		return
	}
	c.Failed = append(c.Failed, Failure{Path: path, Reason: reason})
	c.seen[path] = struct{}{}
}

// Store reads and writes one checkpoint file. Runs for different document
// classes must use distinct files so neither clobbers the other's state.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// PathFor returns the well-known checkpoint location for a document class.
func PathFor(dir, class string) string {
	return filepath.Join(dir, fmt.Sprintf(".ingest-checkpoint-%s.json", class))
}

// Load reads a prior run's state. A missing or malformed file yields a fresh
// zeroed checkpoint, never an error: a damaged checkpoint costs one full
// re-run at worst, not a crash.
func (s *Store) Load() *Checkpoint {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.S().Named("checkpoint").Warnf("reading %s: %v", s.path, err)
		}
		return New()
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		zap.S().Named("checkpoint").Warnf("malformed checkpoint %s, starting fresh: %v", s.path, err)
		return New()
	}
	if cp.StartedAt.IsZero() {
		cp.StartedAt = time.Now().UTC()
	}
	cp.index()
	return &cp
}

// Save serializes the checkpoint atomically: write to a temp file in the
// same directory, then rename over the target.
func (s *Store) Save(cp *Checkpoint) error {
	cp.LastSavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
