// ABOUTME: Bounded worker pool shared by bulk embedding and timeline analysis
// ABOUTME: Per-item failures are recorded and never stop the run; cancellation stops new work
package core

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Progress is reported after each batch item finishes
type Progress struct {
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	EventID string `json:"event_id"`
	Err     error  `json:"-"`
}

// ProgressFunc receives progress updates. Calls are serialized.
type ProgressFunc func(Progress)

// ItemError records one failed batch item
type ItemError struct {
	EventID string `json:"event_id"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e ItemError) Error() string {
	return e.EventID + ": " + e.Message
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// batchResult summarizes a worker pool run
type batchResult struct {
	attempted int // items that finished, successfully or not
	errors    []ItemError
	// prefix is the number of leading items that all finished, so a
	// cancelled run can resume after items[prefix-1]
	prefix int
}

// runBatch calls fn for every id with at most workers calls in flight.
// Items are dispatched in order; once ctx is done no further items start.
func runBatch(ctx context.Context, component string, ids []string, workers int, progress ProgressFunc, fn func(ctx context.Context, id string) error) batchResult {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		finished = make([]bool, len(ids))
		result   batchResult
		done     int
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Work may have queued behind the limit while ctx was cancelled
			if ctx.Err() != nil {
				return nil
			}
			err := fn(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				// Interrupted, not failed: leave it for the resumed run
				return nil
			}
			result.attempted++
			finished[i] = true
			done++
			if err != nil {
				log.Printf("[%s] %s failed: %v", component, id, err)
				result.errors = append(result.errors, ItemError{EventID: id, Message: err.Error(), Err: err})
			}
			if progress != nil {
				progress(Progress{Done: done, Total: len(ids), EventID: id, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	for result.prefix < len(finished) && finished[result.prefix] {
		result.prefix++
	}
	return result
}
