// Package diagnostics writes a JSONL event trace for one convolution run.
// A run emits one JSON line per dispatch/reply/terminate/error event, which is enough to
// reconstruct a master/worker run's dispatch order after the fact without
// needing to instrument the hot convolution path itself.
package diagnostics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind names the trace event taxonomy.
type EventKind string

const (
	EventDispatch  EventKind = "dispatch"
	EventReply     EventKind = "reply"
	EventTerminate EventKind = "terminate"
	EventError     EventKind = "error"
)

// Event is one JSON line in the trace file.
type Event struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Rank      int       `json:"rank"`
	TrueStart int       `json:"true_start,omitempty"`
	TrueEnd   int       `json:"true_end,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Trace writes run events to a JSONL file. Safe for concurrent use: writes
// and flushes are serialized on an internal mutex.
type Trace struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	runID  string
	path   string
}

// New creates a run ID (via uuid.NewString) and opens dir/<run_id>.jsonl
// for writing. Callers that don't want a persistent trace file can pass
// dir == "" to get a no-op Trace.
func New(dir string) (*Trace, error) {
	runID := uuid.NewString()
	if dir == "" {
		return &Trace{runID: runID}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diagnostics: create trace dir: %w", err)
	}
	path := dir + "/" + runID + ".jsonl"
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: open trace file: %w", err)
	}

	return &Trace{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		runID:  runID,
		path:   path,
	}, nil
}

// RunID returns this trace's run identifier, or "" for a nil Trace.
func (t *Trace) RunID() string {
	if t == nil {
		return ""
	}
	return t.runID
}

// Path returns the trace file path, or "" for a no-op or nil trace.
func (t *Trace) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

func (t *Trace) write(e Event) error {
	if t == nil || t.file == nil {
		return nil
	}
	e.RunID = t.runID

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("diagnostics: marshal event: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("diagnostics: write event: %w", err)
	}
	return t.writer.WriteByte('\n')
}

// Dispatch logs a chunk handed to rank at [trueStart, trueEnd].
func (t *Trace) Dispatch(rank, trueStart, trueEnd int) error {
	return t.write(Event{Kind: EventDispatch, Rank: rank, TrueStart: trueStart, TrueEnd: trueEnd})
}

// Reply logs a chunk returned by rank.
func (t *Trace) Reply(rank, trueStart, trueEnd int) error {
	return t.write(Event{Kind: EventReply, Rank: rank, TrueStart: trueStart, TrueEnd: trueEnd})
}

// Terminate logs rank being sent its TERMINATE message.
func (t *Trace) Terminate(rank int) error {
	return t.write(Event{Kind: EventTerminate, Rank: rank})
}

// Error logs a failure attributed to rank (rank -1 for orchestrator-level
// failures with no single owning rank).
func (t *Trace) Error(rank int, err error) error {
	return t.write(Event{Kind: EventError, Rank: rank, Message: err.Error()})
}

// Flush writes any buffered data to disk.
func (t *Trace) Flush() error {
	if t == nil || t.writer == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("diagnostics: flush: %w", err)
	}
	return t.file.Sync()
}

// Close flushes and closes the trace file.
func (t *Trace) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	if err := t.Flush(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}
