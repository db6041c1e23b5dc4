package dispatch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// GroupSize is the edge length of a square work-group in invocations.
const GroupSize = 16

// GroupCounts returns how many GroupSize x GroupSize work-groups cover a width x height grid.
//
// Parameters:
//   - width: grid width in invocations
//   - height: grid height in invocations
//
// Returns:
//   - x, y: work-group counts, zero when the grid is empty
func GroupCounts(width, height int) (x, y int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return (width + GroupSize - 1) / GroupSize, (height + GroupSize - 1) / GroupSize
}

// Dispatcher runs a grid of work-groups on a reusable worker pool.
// Work-groups of one dispatch may run in any order and concurrently; Dispatch
// returns only after every group has finished, which is the barrier between passes.
type Dispatcher interface {
	// Dispatch invokes fn once per work-group of a groupsX x groupsY grid.
	//
	// Parameters:
	//   - ctx: cancels groups that have not started yet
	//   - groupsX: groups along x
	//   - groupsY: groups along y
	//   - fn: the work-group body, called with the group coordinates
	//
	// Returns:
	//   - error: ctx.Err() when cancelled, otherwise nil
	Dispatch(ctx context.Context, groupsX, groupsY int, fn func(gx, gy int)) error

	// Workers returns the number of tasks submitted per dispatch.
	//
	// Returns:
	//   - int: the worker count
	Workers() int
}

type dispatcher struct {
	pool    worker.DynamicWorkerPool
	workers int
	taskID  atomic.Int64
}

var _ Dispatcher = &dispatcher{}

// NewDispatcher creates a Dispatcher backed by a dynamic worker pool.
//
// Parameters:
//   - workers: pool size, 0 or less selects runtime.NumCPU()
//
// Returns:
//   - Dispatcher: the dispatcher
func NewDispatcher(workers int) Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &dispatcher{
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		workers: workers,
	}
}

func (d *dispatcher) Workers() int {
	return d.workers
}

func (d *dispatcher) Dispatch(ctx context.Context, groupsX, groupsY int, fn func(gx, gy int)) error {
	total := groupsX * groupsY
	if total <= 0 {
		return ctx.Err()
	}

	// Each task drains group indices from a shared counter, so the pool queue
	// never holds more than one task per worker.
	var next atomic.Int64
	var wg sync.WaitGroup
	tasks := min(total, d.workers)
	for range tasks {
		wg.Add(1)
		d.pool.SubmitTask(worker.Task{
			ID: int(d.taskID.Add(1)),
			Do: func() (any, error) {
				defer wg.Done()
				for {
					i := int(next.Add(1) - 1)
					if i >= total || ctx.Err() != nil {
						return nil, nil
					}
					fn(i%groupsX, i/groupsX)
				}
			},
		})
	}
	wg.Wait()
	return ctx.Err()
}
