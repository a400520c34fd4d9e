package queue

import (
	"context"
	"testing"

	"github.com/psephology/psephos/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(id string) *Task {
	return &Task{Node: &tree.Node{ID: id}}
}

func TestQueuePullsInPushOrder(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)

	require.NoError(t, q.Push(ctx, newTask("a")))
	require.NoError(t, q.Push(ctx, newTask("b")))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "a", task.ID())

	pending, running, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, running)
}

func TestQueueDropReturnsTasksToThePendingEnd(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)

	require.NoError(t, q.Push(ctx, newTask("a")))
	require.NoError(t, q.Push(ctx, newTask("b")))

	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", task.ID())
	require.NoError(t, q.Drop(ctx, "a"))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	task, err = q.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", task.ID(), "dropped tasks go to the back of the queue")
	task, err = q.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", task.ID())
}

func TestQueueCompleteRemovesRunningTasks(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)

	require.NoError(t, q.Push(ctx, newTask("a")))
	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Complete(ctx, task.ID()))
	require.NoError(t, q.Drop(ctx, task.ID()), "dropping a completed task does not revive it")

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending+running)
}

func TestQueuePullOnEmptyQueue(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)

	task, err := q.Pull(ctx)
	require.NoError(t, err)
	assert.Nil(t, task)
}
