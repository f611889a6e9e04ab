package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestCursor_ResumeAfterSave(t *testing.T) {
	dir := t.TempDir()

	ct, err := newCursorTracker(dir, 10, zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ct.SetStage(stagePlaces)
	ct.Advance(rowPos{File: 0, Row: 6}, 5, 1)
	ct.Advance(rowPos{File: 1, Row: 4}, 4, 0)

	again, err := newCursorTracker(dir, 10, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := again.Get()
	if got.Stage != stagePlaces || got.FileIndex != 1 || got.RowOffset != 4 {
		t.Errorf("unexpected cursor: %+v", got)
	}
	if got.TotalProcessed != 9 || got.TotalFailed != 1 {
		t.Errorf("unexpected totals: %+v", got)
	}
}

func TestCursor_NeverMovesBackwards(t *testing.T) {
	ct, err := newCursorTracker(t.TempDir(), 1000, zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ct.Advance(rowPos{File: 1, Row: 200}, 100, 0)
	ct.Advance(rowPos{File: 1, Row: 100}, 100, 0)
	ct.Advance(rowPos{File: 0, Row: 900}, 100, 0)

	got := ct.Get()
	if got.FileIndex != 1 || got.RowOffset != 200 {
		t.Errorf("position moved backwards: %+v", got)
	}
	if got.TotalProcessed != 300 {
		t.Errorf("TotalProcessed = %d, want 300", got.TotalProcessed)
	}
}

func TestCursor_SavesOnlyOnInterval(t *testing.T) {
	dir := t.TempDir()
	ct, err := newCursorTracker(dir, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ct.Advance(rowPos{Row: 50}, 50, 0)
	if _, err := os.Stat(filepath.Join(dir, "cursor.json")); !os.IsNotExist(err) {
		t.Fatalf("cursor saved before interval: %v", err)
	}

	ct.Advance(rowPos{Row: 120}, 70, 0)
	if _, err := os.Stat(filepath.Join(dir, "cursor.json")); err != nil {
		t.Fatalf("cursor not saved after interval: %v", err)
	}
}

func TestCursor_ResetAndDone(t *testing.T) {
	dir := t.TempDir()
	ct, err := newCursorTracker(dir, 1, zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ct.Advance(rowPos{File: 2, Row: 3}, 3, 0)
	ct.Reset()

	if got := ct.Get(); got != (Cursor{}) {
		t.Errorf("expected zero cursor after reset, got %+v", got)
	}

	ct.Done()
	again, err := newCursorTracker(dir, 1, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Get().Stage != stageDone {
		t.Errorf("stage = %q, want %q", again.Get().Stage, stageDone)
	}
}

func TestCursor_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cursor.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := newCursorTracker(dir, 1, zap.NewNop()); err == nil {
		t.Fatal("expected parse error")
	}
}
