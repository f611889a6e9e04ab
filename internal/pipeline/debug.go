package pipeline

import (
	"time"
)

// DebugEntry is one record in a request's debug trail.
type DebugEntry struct {
	Key   string
	Value any
}

// DebugLog is an append-only debug trail returned to clients that ask for it.
// All methods are no-ops on a nil receiver.
type DebugLog struct {
	entries []DebugEntry
}

// Push appends an entry.
func (d *DebugLog) Push(key string, value any) {
	if d == nil {
		return
	}
	d.entries = append(d.entries, DebugEntry{Key: key, Value: value})
}

// BeginTimer records a timer start entry and returns the start time.
func (d *DebugLog) BeginTimer(key string) time.Time {
	start := time.Now()
	d.Push(key, "timer started")
	return start
}

// StopTimer records the time elapsed since start.
func (d *DebugLog) StopTimer(key string, start time.Time) {
	d.Push(key, map[string]any{"duration_ms": time.Since(start).Milliseconds()})
}

// Entries returns a copy of the trail.
func (d *DebugLog) Entries() []DebugEntry {
	if d == nil {
		return nil
	}
	out := make([]DebugEntry, len(d.entries))
	copy(out, d.entries)
	return out
}
