package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor on a fixed interval. Poll can wake it early,
// e.g. right after jobs were enqueued.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	wake         chan struct{}
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs one pass immediately, then begins the polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("%s worker started with poll interval: %v", w.name, w.pollInterval)
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s worker stopped: context cancelled", w.name)
			return
		case <-w.stopChan:
			log.Printf("%s worker stopped: stop signal received", w.name)
			return
		case <-w.wake:
			w.runOnce(ctx)
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Poll asks the worker to run a pass as soon as possible. It never blocks.
func (w *Worker) Poll() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("%s worker: error processing jobs: %v", w.name, err)
	}
}

// Stop gracefully stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	log.Printf("%s worker shutdown complete", w.name)
}
