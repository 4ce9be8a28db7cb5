package diagnostics

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewNoOpWhenDirEmpty(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") err = %v", err)
	}
	if tr.Path() != "" {
		t.Fatalf("Path() = %q, want empty", tr.Path())
	}
	if err := tr.Dispatch(1, 0, 9); err != nil {
		t.Fatalf("Dispatch() on no-op trace err = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() on no-op trace err = %v", err)
	}
}

func TestNilTraceIsSafe(t *testing.T) {
	var tr *Trace
	if err := tr.Dispatch(1, 0, 9); err != nil {
		t.Fatalf("Dispatch() on nil trace err = %v", err)
	}
	if err := tr.Error(-1, errors.New("boom")); err != nil {
		t.Fatalf("Error() on nil trace err = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() on nil trace err = %v", err)
	}
	if tr.RunID() != "" {
		t.Fatalf("RunID() on nil trace = %q, want empty", tr.RunID())
	}
}

func TestTraceWritesJSONLEvents(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}

	if err := tr.Dispatch(1, 0, 9); err != nil {
		t.Fatalf("Dispatch() err = %v", err)
	}
	if err := tr.Reply(1, 0, 9); err != nil {
		t.Fatalf("Reply() err = %v", err)
	}
	if err := tr.Terminate(2); err != nil {
		t.Fatalf("Terminate() err = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, tr.RunID()+".jsonl"))
	if err != nil {
		t.Fatalf("open trace file err = %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Fatalf("trace line count = %d, want 3", lines)
	}
}
