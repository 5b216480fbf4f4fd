package models

import (
	"container/heap"
	"sync"
)

// SampleQueue is a priority queue of GPS samples ordered by timestamp.
// Routes are generated driver by driver; streaming outputs drain the queue
// to replay the pooled samples in global chronological order.
type SampleQueue struct {
	samples []GpsSample
	mutex   sync.Mutex
}

// sampleHeap implements heap.Interface over GpsSamples
type sampleHeap []GpsSample

func (h sampleHeap) Len() int           { return len(h) }
func (h sampleHeap) Less(i, j int) bool { return h[i].Timestamp.Before(h[j].Timestamp) }
func (h sampleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *sampleHeap) Push(x interface{}) {
	*h = append(*h, x.(GpsSample))
}

func (h *sampleHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// NewSampleQueue creates a new SampleQueue
func NewSampleQueue() *SampleQueue {
	return &SampleQueue{samples: make([]GpsSample, 0)}
}

// Enqueue adds a sample to the queue
func (sq *SampleQueue) Enqueue(sample GpsSample) {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	heap.Push((*sampleHeap)(&sq.samples), sample)
}

// EnqueueRoute adds every sample of a route to the queue
func (sq *SampleQueue) EnqueueRoute(route DriverRoute) {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	for _, sample := range route {
		heap.Push((*sampleHeap)(&sq.samples), sample)
	}
}

// Dequeue removes and returns the earliest sample and reports whether the
// queue was non-empty.
func (sq *SampleQueue) Dequeue() (GpsSample, bool) {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	if len(sq.samples) == 0 {
		return GpsSample{}, false
	}
	return heap.Pop((*sampleHeap)(&sq.samples)).(GpsSample), true
}

// Len returns the number of samples in the queue
func (sq *SampleQueue) Len() int {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	return len(sq.samples)
}
