package pipeline

import (
	"fmt"
	"io"
)

// Outcome is an item's terminal bucket.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Event is published after every item outcome with the aggregate counts so
// far. A console progress line and a UI layer are interchangeable
// subscribers.
type Event struct {
	Path    string
	Outcome Outcome
	Reason  string

	Total      int
	Processed  int
	Successful int
	Failed     int
	Skipped    int
}

// Subscriber consumes progress events.
type Subscriber interface {
	Handle(event Event)
}

// ConsoleProgress renders a terminal-style progress indicator, rewriting a
// single line per outcome.
type ConsoleProgress struct {
	out io.Writer
}

func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

func (c *ConsoleProgress) Handle(event Event) {
	fmt.Fprintf(c.out, "\r[%d/%d] ok=%d skipped=%d failed=%d",
		event.Processed, event.Total, event.Successful, event.Skipped, event.Failed)
	if event.Outcome == OutcomeFailed {
		fmt.Fprintf(c.out, "\n  failed: %s (%s)\n", event.Path, event.Reason)
	}
}

// Finish terminates the progress line.
func (c *ConsoleProgress) Finish() {
	fmt.Fprintln(c.out)
}
