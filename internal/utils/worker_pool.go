package utils

import (
	"sync"
)

// Job represents a task to be executed by a worker.
type Job struct {
	Task func()
}

// WorkerPool manages a pool of workers to execute jobs.
type WorkerPool struct {
	workers   int
	jobQueue  chan Job
	waitGroup sync.WaitGroup
}

// NewWorkerPool creates a new WorkerPool with the specified number of
// workers and queue capacity.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	pool := &WorkerPool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
	}

	pool.waitGroup.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

// worker processes jobs from the jobQueue.
func (wp *WorkerPool) worker() {
	defer wp.waitGroup.Done()
	for job := range wp.jobQueue {
		job.Task()
	}
}

// TrySubmit enqueues a task without blocking. It returns false when the
// queue is full, leaving the caller to decide how to run the task.
func (wp *WorkerPool) TrySubmit(task func()) bool {
	select {
	case wp.jobQueue <- Job{Task: task}:
		return true
	default:
		return false
	}
}

// Shutdown waits for all queued jobs to finish and stops the workers.
func (wp *WorkerPool) Shutdown() {
	close(wp.jobQueue)
	wp.waitGroup.Wait()
}
