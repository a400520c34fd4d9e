/*
Package queue defines the tasks a tree-growing worker consumes
and an interface for the queue that hands them out.

It also provides an in-memory implementation of the Queue interface.
The default analysis pipeline drains the queue with a single
synchronous worker.
*/
package queue

import (
	"context"
	"sync"
)

// Queue hands out node-development tasks to workers.
// A worker Pulls a task, processes it and then either
// Completes it or Drops it back halfway through.
//
// All methods take a context so that implementations
// backed by external brokers can honor cancellation.
type Queue interface {
	// Push adds a task to the queue. The task counts
	// as pending until pulled.
	Push(context.Context, *Task) error
	// Pull hands out the oldest pending task, which
	// counts as running from then on. An empty queue
	// yields a nil task and no error.
	Pull(context.Context) (*Task, error)
	// Drop returns a running task, identified by ID,
	// to the back of the queue. Dropping a task that
	// was already completed has no effect.
	Drop(context.Context, string) error
	// Complete removes a running task, identified by
	// ID, from the queue for good.
	Complete(context.Context, string) error
	// Count reports how many tasks are pending and
	// how many are running.
	Count(context.Context) (int, int, error)
	// Stop shuts the queue down, freeing any resources
	// it holds.
	Stop(context.Context) error
}

/*
memQueue is a FIFO of pending tasks plus a set of
running ones, guarded by a single mutex.
*/
type memQueue struct {
	mu      sync.Mutex
	pending []*Task
	running map[string]*Task
}

// New returns a queue backed only by the process memory
func New() Queue {
	return &memQueue{running: make(map[string]*Task)}
}

func (q *memQueue) Push(ctx context.Context, t *Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, t)
	return nil
}

func (q *memQueue) Pull(ctx context.Context) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	t := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.running[t.ID()] = t
	return t, nil
}

func (q *memQueue) Drop(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.running[id]
	if !ok {
		return nil
	}
	delete(q.running, id)
	q.pending = append(q.pending, t)
	return nil
}

func (q *memQueue) Complete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.running, id)
	return nil
}

func (q *memQueue) Count(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending), len(q.running), nil
}

func (q *memQueue) Stop(ctx context.Context) error {
	return nil
}
