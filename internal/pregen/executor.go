package pregen

import (
	"context"
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/util/assert"
	"golang.org/x/sync/errgroup"
	"iter"
	"sync/atomic"
)

const DefaultParallelLimit = 3

type RunFunc func(ctx context.Context, task internal.PageTask) (Outcome, error)

// Executor runs tasks in consecutive chunks of at most limit tasks. A chunk
// starts only after every task of the previous chunk settled, which caps the
// number of tasks talking to the database at once.
type Executor struct {
	limit    int
	inflight *xsync.Counter
	peak     atomic.Int64
}

func NewExecutor(limit int) *Executor {
	if limit <= 0 {
		limit = DefaultParallelLimit
	}

	return &Executor{
		limit:    limit,
		inflight: xsync.NewCounter(),
	}
}

func (e *Executor) Limit() int {
	return e.limit
}

// Peak is the largest number of tasks observed running at the same time.
func (e *Executor) Peak() int {
	return int(e.peak.Load())
}

// Execute pulls tasks chunk by chunk, runs each chunk concurrently and hands
// its results to settle on the calling goroutine. Failures never stop the
// sequence. Once ctx is done no further task is pulled. It returns the number
// of tasks executed, which equals the number of tasks pulled.
func (e *Executor) Execute(ctx context.Context, tasks iter.Seq[internal.PageTask], run RunFunc, settle func([]Result)) int {
	executed := 0
	chunk := make([]internal.PageTask, 0, e.limit)

	flush := func() {
		results := e.runChunk(ctx, chunk, run)
		assert.Assert(len(results) == len(chunk), "every task of a chunk must settle",
			"ChunkSize", len(chunk), "Settled", len(results))

		executed += len(results)
		if settle != nil {
			settle(results)
		}
		chunk = chunk[:0]
	}

	if ctx.Err() != nil {
		return 0
	}

	for task := range tasks {
		chunk = append(chunk, task)
		if len(chunk) == e.limit {
			flush()
			if ctx.Err() != nil {
				break
			}
		}
	}
	if len(chunk) > 0 {
		flush()
	}

	return executed
}

func (e *Executor) runChunk(ctx context.Context, chunk []internal.PageTask, run RunFunc) []Result {
	results := make([]Result, len(chunk))

	var g errgroup.Group
	for i, task := range chunk {
		g.Go(func() error {
			e.enter()
			defer e.leave()

			results[i] = invoke(ctx, task, run)
			return nil
		})
	}

	// tasks report failures through their result, never through the group
	_ = g.Wait()

	return results
}

func invoke(ctx context.Context, task internal.PageTask, run RunFunc) (result Result) {
	result.Task = task

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	result.Outcome, result.Err = run(ctx, task)
	if result.Err != nil {
		result.Outcome = OutcomeFailed
	}

	return result
}

func (e *Executor) enter() {
	e.inflight.Inc()
	current := e.inflight.Value()

	for {
		peak := e.peak.Load()
		if current <= peak || e.peak.CompareAndSwap(peak, current) {
			return
		}
	}
}

func (e *Executor) leave() {
	e.inflight.Dec()
}
