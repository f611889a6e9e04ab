package main

import "sync"

// batchWatermark releases batch results in submission order. Workers finish
// out of order; the cursor may only cover a batch once every earlier batch is
// written too, otherwise a crash would skip the unwritten ones on resume.
type batchWatermark struct {
	mu      sync.Mutex
	base    uint64 // seq of pending[0]
	nextSeq uint64
	pending []watermarkSlot
}

type watermarkSlot struct {
	end       rowPos
	processed int
	failed    int
	done      bool
}

// Track registers a batch ending before end and returns its sequence number.
// Batches must be tracked in read order.
func (w *batchWatermark) Track(end rowPos) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	seq := w.nextSeq
	w.nextSeq++
	w.pending = append(w.pending, watermarkSlot{end: end})
	return seq
}

// Finish marks a batch written and pops the finished prefix. ok is false when
// an earlier batch is still in flight; otherwise end is the new safe position
// and the counts cover every popped batch.
func (w *batchWatermark) Finish(seq uint64, processed, failed int) (end rowPos, p, f int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot := &w.pending[seq-w.base]
	slot.processed, slot.failed, slot.done = processed, failed, true

	for len(w.pending) > 0 && w.pending[0].done {
		head := w.pending[0]
		end = head.end
		p += head.processed
		f += head.failed
		ok = true
		w.pending = w.pending[1:]
		w.base++
	}
	return end, p, f, ok
}

// InFlight is the number of batches not yet released.
func (w *batchWatermark) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
