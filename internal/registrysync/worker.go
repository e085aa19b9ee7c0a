package registrysync

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// WorkerPool runs building fetches on a fixed number of goroutines.
type WorkerPool struct {
	size    int
	jobs    chan string
	process func(ctx context.Context, buildingID string)
	log     *logrus.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, log *logrus.Logger, process func(ctx context.Context, buildingID string)) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		process: process,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for buildingID := range wp.jobs {
		if ctx.Err() != nil {
			continue
		}
		wp.log.WithFields(logrus.Fields{"worker": id, "building": buildingID}).Debug("Fetching building")
		wp.process(ctx, buildingID)
	}
}

// Dispatch queues a building. It gives up when ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, buildingID string) bool {
	select {
	case wp.jobs <- buildingID:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until every queued job has run.
func (wp *WorkerPool) Wait() {
	close(wp.jobs)
	wp.wg.Wait()
}
