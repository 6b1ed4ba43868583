package pregen

import (
	"context"
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylrsa/seo-pregen/internal"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func tenLocations() []internal.Location {
	locations := make([]internal.Location, 10)
	for i := range locations {
		locations[i] = internal.Location{
			Id:           fmt.Sprintf("c%d", i),
			Name:         fmt.Sprintf("City %d", i),
			Slug:         fmt.Sprintf("city-%d", i),
			Type:         internal.LocationCity,
			Province:     "Gauteng",
			ProvinceSlug: "gauteng",
		}
	}

	return locations
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	executor := NewExecutor(3)

	var running, maxRunning atomic.Int64
	run := func(ctx context.Context, task internal.PageTask) (Outcome, error) {
		current := running.Add(1)
		defer running.Add(-1)

		for {
			seen := maxRunning.Load()
			if current <= seen || maxRunning.CompareAndSwap(seen, current) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		return OutcomeCreated, nil
	}

	var chunkSizes []int
	var settled []Result
	settle := func(results []Result) {
		chunkSizes = append(chunkSizes, len(results))
		settled = append(settled, results...)
	}

	tasks := internal.PageTasks([]internal.Keyword{keywordHairSalon}, tenLocations())
	executed := executor.Execute(context.Background(), tasks, run, settle)

	assert.Equal(t, 10, executed)
	assert.Len(t, settled, 10)
	assert.Equal(t, []int{3, 3, 3, 1}, chunkSizes)
	assert.LessOrEqual(t, maxRunning.Load(), int64(3))
	assert.LessOrEqual(t, executor.Peak(), 3)
	assert.GreaterOrEqual(t, executor.Peak(), 1)

	for i, r := range settled {
		assert.Equal(t, fmt.Sprintf("city-%d", i), r.Task.Location.Slug, "results keep the order of the sequence")
		assert.Equal(t, OutcomeCreated, r.Outcome)
		assert.NoError(t, r.Err)
	}
}

func TestExecutor_ChunkWaitsForSlowestTask(t *testing.T) {
	executor := NewExecutor(2)

	var mu sync.Mutex
	var order []string
	run := func(ctx context.Context, task internal.PageTask) (Outcome, error) {
		if task.Location.Slug == "city-0" {
			time.Sleep(20 * time.Millisecond)
		}

		mu.Lock()
		order = append(order, task.Location.Slug)
		mu.Unlock()

		return OutcomeCreated, nil
	}

	tasks := internal.PageTasks([]internal.Keyword{keywordHairSalon}, tenLocations()[:3])
	executor.Execute(context.Background(), tasks, run, nil)

	require.Len(t, order, 3)
	assert.ElementsMatch(t, []string{"city-0", "city-1"}, order[:2])
	assert.Equal(t, "city-2", order[2])
}

func TestExecutor_FailuresAndPanicsSettle(t *testing.T) {
	executor := NewExecutor(3)

	run := func(ctx context.Context, task internal.PageTask) (Outcome, error) {
		switch task.Location.Slug {
		case "city-1":
			return OutcomeCreated, errors.New("boom")
		case "city-2":
			panic("unexpected nil")
		}

		return OutcomeUpdated, nil
	}

	var settled []Result
	tasks := internal.PageTasks([]internal.Keyword{keywordHairSalon}, tenLocations()[:5])
	executed := executor.Execute(context.Background(), tasks, run, func(results []Result) {
		settled = append(settled, results...)
	})

	require.Equal(t, 5, executed)
	require.Len(t, settled, 5)

	stats := BatchStats{}
	for _, r := range settled {
		stats.Record(r)
	}
	assert.Equal(t, BatchStats{Updated: 3, Errors: 2}, stats)

	assert.Equal(t, OutcomeFailed, settled[1].Outcome)
	assert.EqualError(t, settled[1].Err, "boom")
	assert.Equal(t, OutcomeFailed, settled[2].Outcome)
	assert.ErrorContains(t, settled[2].Err, "task panicked")
}

func TestExecutor_EmptySequence(t *testing.T) {
	executor := NewExecutor(0)
	assert.Equal(t, DefaultParallelLimit, executor.Limit())

	settleCalls := 0
	executed := executor.Execute(context.Background(), internal.PageTasks(nil, tenLocations()),
		func(ctx context.Context, task internal.PageTask) (Outcome, error) {
			t.Fatal("no task expected")
			return OutcomeFailed, nil
		},
		func([]Result) { settleCalls++ })

	assert.Zero(t, executed)
	assert.Zero(t, settleCalls)
	assert.Zero(t, executor.Peak())
}

func TestExecutor_StopsPullingOnceCanceled(t *testing.T) {
	executor := NewExecutor(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run := func(ctx context.Context, task internal.PageTask) (Outcome, error) {
		if task.Location.Slug == "city-0" {
			cancel()
		}
		return OutcomeCreated, nil
	}

	pulled := 0
	tasks := func(yield func(internal.PageTask) bool) {
		for task := range internal.PageTasks([]internal.Keyword{keywordHairSalon}, tenLocations()) {
			pulled++
			if !yield(task) {
				return
			}
		}
	}

	var chunkSizes []int
	executed := executor.Execute(ctx, tasks, run, func(results []Result) {
		chunkSizes = append(chunkSizes, len(results))
	})

	assert.Equal(t, 2, executed)
	assert.Equal(t, []int{2}, chunkSizes, "no chunk starts after cancellation")
	assert.Equal(t, 2, pulled)
}

func TestExecutor_CanceledBeforeStart(t *testing.T) {
	executor := NewExecutor(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executed := executor.Execute(ctx, internal.PageTasks([]internal.Keyword{keywordHairSalon}, tenLocations()),
		func(ctx context.Context, task internal.PageTask) (Outcome, error) {
			t.Fatal("no task expected")
			return OutcomeFailed, nil
		}, nil)

	assert.Zero(t, executed)
}
