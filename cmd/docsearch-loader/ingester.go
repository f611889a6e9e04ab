package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// placeWriter stores place documents; errors are aligned with docs.
type placeWriter interface {
	UpsertBatch(ctx context.Context, docs []domain.Document) []error
}

// placeSource streams raw rows starting at a position.
type placeSource interface {
	ReadPlaces(fileIndex, rowOffset, maxRows int, cb readPlacesCallback) error
}

// ingester fans batches from one reader out to a worker pool:
// reader -> ants.Pool -> UpsertBatch -> Redis.
type ingester struct {
	writer    placeWriter
	workers   int
	batchSize int
	metrics   *loaderMetrics
	cursor    *cursorTracker
	logger    *zap.Logger
}

// batchItem is one batch plus the position right after its last row.
type batchItem struct {
	docs []domain.Document
	next rowPos
	seq  uint64
}

// ingestResult summarizes a run.
type ingestResult struct {
	Processed int64
	Failed    int64
	Skipped   int64
	Duration  time.Duration
}

// Run reads from the cursor position until the source is exhausted,
// maxRows rows were read, or ctx is done.
func (ing *ingester) Run(ctx context.Context, src placeSource, maxRows int) (ingestResult, error) {
	cur := ing.cursor.Get()

	pool, err := ants.NewPool(ing.workers)
	if err != nil {
		return ingestResult{}, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var processed, failed, skipped atomic.Int64
	var wm batchWatermark

	start := time.Now()

	submit := func(batch batchItem) error {
		batch.seq = wm.Track(batch.next)
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			ing.processBatch(ctx, &wm, batch, &processed, &failed)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submit batch: %w", err)
		}
		return nil
	}

	readErr := ing.produce(ctx, src, cur.FileIndex, cur.RowOffset, maxRows, submit, &skipped)
	wg.Wait()
	if n := wm.InFlight(); n > 0 {
		ing.logger.Warn("Cursor held before unsubmitted batches", zap.Int("batches", n))
	}
	ing.cursor.Save()

	return ingestResult{
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
		Duration:  time.Since(start),
	}, readErr
}

func (ing *ingester) produce(
	ctx context.Context,
	src placeSource,
	fileIndex, rowOffset, maxRows int,
	submit func(batchItem) error,
	skipped *atomic.Int64,
) error {
	batch := make([]domain.Document, 0, ing.batchSize)
	var next rowPos
	var submitErr error

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		if submitErr = submit(batchItem{docs: batch, next: next}); submitErr != nil {
			return false
		}
		batch = make([]domain.Document, 0, ing.batchSize)
		return true
	}

	err := src.ReadPlaces(fileIndex, rowOffset, maxRows, func(row *fsqPlaceRow, pos rowPos) bool {
		if ctx.Err() != nil {
			return false
		}
		next = rowPos{File: pos.File, Row: pos.Row + 1}

		doc, reason := toPlace(row)
		if reason != "" {
			skipped.Add(1)
			ing.metrics.rowsSkipped.WithLabelValues(reason).Inc()
			return true
		}

		batch = append(batch, doc)
		if len(batch) >= ing.batchSize {
			return flush()
		}
		return true
	})
	if err != nil {
		return err
	}
	if submitErr != nil {
		return submitErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	flush()
	return submitErr
}

func (ing *ingester) processBatch(
	ctx context.Context,
	wm *batchWatermark,
	batch batchItem,
	processed, failed *atomic.Int64,
) {
	start := time.Now()
	errs := ing.writer.UpsertBatch(ctx, batch.docs)
	ing.metrics.batchDuration.Observe(time.Since(start).Seconds())

	var ok, bad int
	var firstErr error
	for _, err := range errs {
		if err != nil {
			bad++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ok++
	}

	processed.Add(int64(ok))
	failed.Add(int64(bad))
	ing.metrics.rowsProcessed.Add(float64(ok))
	if bad > 0 {
		ing.metrics.rowsFailed.Add(float64(bad))
		ing.logger.Warn("Batch had failed items",
			zap.Int("failed", bad),
			zap.Error(firstErr),
		)
	}

	if end, p, f, moved := wm.Finish(batch.seq, ok, bad); moved {
		ing.cursor.Advance(end, p, f)
		ing.metrics.cursorPosition.Set(float64(ing.cursor.Get().RowOffset))
	}
	ing.metrics.batchesTotal.Inc()

	if total := processed.Load(); total%10000 < int64(len(batch.docs)) {
		ing.logger.Info("Ingest progress",
			zap.Int64("processed", total),
			zap.Int64("failed", failed.Load()),
		)
	}
}
