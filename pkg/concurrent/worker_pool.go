package concurrent

import (
	"sync"
)

type Job[T any] struct {
	ID      int
	JobItem T
}

type JobFunc[T any, G any] func(job T) G

// WorkerPool jumlah worker tetap, hasil dikirim ke channel results tanpa urutan.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

// Close tidak ada job baru lagi
func (wp *WorkerPool[T, G]) Close() {
	wp.closeOnce.Do(func() { close(wp.jobQueue) })
}

// Wait tunggu semua worker selesai lalu tutup channel results
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}
