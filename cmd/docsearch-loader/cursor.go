package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Loader stages recorded in the cursor.
const (
	stageDownload = "download"
	stagePlaces   = "places"
	stageDone     = "done"
)

// Cursor is the persisted load position used for resume.
type Cursor struct {
	Stage          string    `json:"stage"`
	FileIndex      int       `json:"file_index"`
	RowOffset      int       `json:"row_offset"`
	TotalProcessed int       `json:"total_processed"`
	TotalFailed    int       `json:"total_failed"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// cursorTracker tracks progress and saves it every saveEvery processed rows.
type cursorTracker struct {
	mu        sync.Mutex
	cursor    Cursor
	path      string
	saveEvery int
	dirty     bool
	logger    *zap.Logger
}

// newCursorTracker loads dataDir/cursor.json when present.
func newCursorTracker(dataDir string, saveEvery int, logger *zap.Logger) (*cursorTracker, error) {
	if saveEvery < 1 {
		saveEvery = 1
	}
	ct := &cursorTracker{
		path:      filepath.Join(filepath.Clean(dataDir), "cursor.json"),
		saveEvery: saveEvery,
		logger:    logger,
	}

	data, err := os.ReadFile(ct.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &ct.cursor); err != nil {
			return nil, fmt.Errorf("parse cursor %s: %w", ct.path, err)
		}
		logger.Info("Resuming from cursor",
			zap.String("stage", ct.cursor.Stage),
			zap.Int("file", ct.cursor.FileIndex),
			zap.Int("offset", ct.cursor.RowOffset),
			zap.Int("processed", ct.cursor.TotalProcessed),
		)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read cursor %s: %w", ct.path, err)
	}

	return ct, nil
}

// Get returns a copy of the current cursor.
func (ct *cursorTracker) Get() Cursor {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.cursor
}

// SetStage records the current stage and saves immediately.
func (ct *cursorTracker) SetStage(stage string) {
	ct.mu.Lock()
	ct.cursor.Stage = stage
	ct.cursor.UpdatedAt = time.Now()
	ct.dirty = true
	ct.mu.Unlock()
	ct.Save()
}

// Advance adds processed/failed counts and moves the position forward.
// Batches complete out of order, so the position never moves backwards.
func (ct *cursorTracker) Advance(pos rowPos, processed, failed int) {
	ct.mu.Lock()
	if pos.File > ct.cursor.FileIndex ||
		(pos.File == ct.cursor.FileIndex && pos.Row > ct.cursor.RowOffset) {
		ct.cursor.FileIndex = pos.File
		ct.cursor.RowOffset = pos.Row
	}
	before := ct.cursor.TotalProcessed + ct.cursor.TotalFailed
	ct.cursor.TotalProcessed += processed
	ct.cursor.TotalFailed += failed
	after := ct.cursor.TotalProcessed + ct.cursor.TotalFailed
	ct.cursor.UpdatedAt = time.Now()
	ct.dirty = true
	shouldSave := before/ct.saveEvery != after/ct.saveEvery
	ct.mu.Unlock()

	if shouldSave {
		ct.Save()
	}
}

// Save writes the cursor atomically via a temp file.
func (ct *cursorTracker) Save() {
	ct.mu.Lock()
	if !ct.dirty {
		ct.mu.Unlock()
		return
	}
	data, err := json.MarshalIndent(ct.cursor, "", "  ")
	if err != nil {
		ct.mu.Unlock()
		ct.logger.Error("Cursor marshal failed", zap.Error(err))
		return
	}
	ct.dirty = false
	ct.mu.Unlock()

	tmp := ct.path + ".tmp"
	err = os.WriteFile(tmp, data, 0o600)
	if err == nil {
		err = os.Rename(tmp, ct.path)
	}
	if err != nil {
		ct.logger.Error("Cursor save failed", zap.String("path", ct.path), zap.Error(err))
		ct.mu.Lock()
		ct.dirty = true
		ct.mu.Unlock()
	}
}

// Done marks the load finished.
func (ct *cursorTracker) Done() {
	ct.SetStage(stageDone)
}

// Reset clears the cursor to start from scratch.
func (ct *cursorTracker) Reset() {
	ct.mu.Lock()
	ct.cursor = Cursor{}
	ct.dirty = true
	ct.mu.Unlock()
	ct.Save()
}
