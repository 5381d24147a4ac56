// Package concurrency runs independent units of work on a bounded set of
// goroutines.
package concurrency

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/metrics"
)

// Run executes fn for every task index in [0, tasks) on at most workers
// goroutines and returns the results ordered by index. The first failing task
// fails the whole call; workers stop taking new tasks once a failure is seen.
// A panic inside fn is recovered and reported as an error.
func Run[T any](workers, tasks int, fn func(i int) (T, error)) ([]T, error) {
	if tasks == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > tasks {
		workers = tasks
	}

	queue := NewQueue[int]()
	for i := 0; i < tasks; i++ {
		queue.Push(i)
	}

	results := make([]T, tasks)
	var failed atomic.Bool
	var g errgroup.Group

	metrics.WorkersInFlight.Add(float64(workers))
	defer metrics.WorkersInFlight.Sub(float64(workers))

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for !failed.Load() {
				i, ok := queue.Pop()
				if !ok {
					return nil
				}
				res, err := runTask(i, fn)
				if err != nil {
					failed.Store(true)
					metrics.ChunkFailuresTotal.Inc()
					return err
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTask[T any](i int, fn func(int) (T, error)) (res T, err error) {
	start := time.Now()
	metrics.ChunksDispatchedTotal.Inc()
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic("concurrency.run", r)
		}
		metrics.ChunkDurationSeconds.Observe(time.Since(start).Seconds())
	}()
	return fn(i)
}
