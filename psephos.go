/*
Package psephos grows, prunes, cross-validates and evaluates decision
trees over tabular survey data: classification trees for discrete
labels such as a turnout outcome, regression trees for continuous
labels such as a household income.
*/
package psephos

import (
	"context"
	"time"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/queue"
	"github.com/psephology/psephos/tree"
)

// GrowError represents a failure to grow a tree from a dataset
type GrowError string

func (ge GrowError) Error() string {
	return string(ge)
}

// ErrNoLabelValues is returned when no sample on the training
// dataset defines a value for the label feature.
const ErrNoLabelValues = GrowError("no sample defines a value for the label feature")

// ErrConstantLabel is returned when every sample on the training
// dataset has the same value for the label feature, so that no
// tree can be grown.
const ErrConstantLabel = GrowError("all samples have the same value for the label feature")

/*
Grower holds what is needed to grow a decision tree: the label feature
to predict, the predictor features available to split on and the
policy that decides when a node stops being developed.
*/
type Grower struct {
	// Label is the feature the tree predicts. A continuous label
	// grows a regression tree, any other label a classification
	// tree.
	Label feature.Feature
	// Features are the predictors candidate splits are drawn from.
	Features []feature.Feature
	// Policy decides when a node is not developed further. A nil
	// policy applies DefaultGrowthPolicy.
	Policy *GrowthPolicy
}

// Seed takes a context, a dataset, a queue and a node store and sets
// everything up so that workers that consume from the queue afterwards
// grow a tree predicting the grower's label using its predictor
// features according to the training data on the given dataset.
// Specifically it will create the root node of the tree on the
// node store and push a task to develop it on the queue.
// The function returns the tree that can be grown or an error
// if the dataset cannot support growing a tree, the node cannot be
// created on the store, or the task pushed to the queue (in the
// amount of time allowed by the given context).
func (g *Grower) Seed(ctx context.Context, s dataset.Dataset, q queue.Queue, ns tree.NodeStore) (*tree.Tree, error) {
	err := g.validate(ctx, s)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{}
	err = ns.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	task := &queue.Task{Node: n, Dataset: s}
	t := tree.New(n.ID, ns, g.Label)
	err = q.Push(ctx, task)
	if err != nil {
		ns.Delete(ctx, n)
		return nil, err
	}
	return t, nil
}

// Expand takes a context, a task and a tree, develops the node in the
// task using the task's dataset to predict the tree's label feature and
// returns tasks to develop the resulting children nodes or an error.
// The node is split with the feature and binary criterion pair that
// decrease the training impurity the most (deviance for classification
// trees, sum of squared errors for regression trees), unless the
// grower's policy stops the node from being developed, in which case it
// stays a leaf and no tasks are returned.
func (g *Grower) Expand(ctx context.Context, task *queue.Task, t *tree.Tree) (tasks []*queue.Task, e error) {
	prediction, err := tree.NewPredictionFromSet(ctx, task.Dataset, t.Label)
	if err != nil {
		if err != tree.ErrCannotPredictFromEmptySet {
			return nil, err
		}
	}
	defer func() {
		err := t.NodeStore.Store(ctx, task.Node)
		if e == nil {
			e = err
		}
	}()
	task.Node.Prediction = prediction
	policy := g.Policy
	if policy == nil {
		policy = DefaultGrowthPolicy()
	}
	count, err := task.Dataset.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count < policy.MinNodeSize {
		return nil, nil
	}
	if policy.MaxDepth > 0 && task.Depth >= policy.MaxDepth {
		return nil, nil
	}
	sImpurity, err := impurity(ctx, task.Dataset, t.Label)
	if err != nil {
		return nil, err
	}
	if sImpurity <= 0 {
		return nil, nil
	}
	var selectedPartition *Partition
	for _, f := range g.Features {
		part, err := newPartition(ctx, task.Dataset, f, t.Label, sImpurity)
		if err != nil {
			return nil, err
		}
		if part == nil {
			continue
		}
		if selectedPartition == nil || part.impurityDecrease > selectedPartition.impurityDecrease {
			selectedPartition = part
		}
	}
	if selectedPartition == nil || selectedPartition.impurityDecrease < policy.MinImpurityDecrease {
		return nil, nil
	}
	task.Node.SubtreeFeature = selectedPartition.Feature
	stNodeIDs := make([]string, 0, len(selectedPartition.Tasks))
	for _, st := range selectedPartition.Tasks {
		st.Node.ParentID = task.Node.ID
		st.Depth = task.Depth + 1
		err = t.NodeStore.Create(ctx, st.Node)
		if err != nil {
			return nil, err
		}
		stNodeIDs = append(stNodeIDs, st.Node.ID)
	}
	task.Node.SubtreeIDs = stNodeIDs
	return selectedPartition.Tasks, nil
}

// Work takes a context, a tree, a queue and an emptyQueueSleep duration
// and enters a loop in which it:
//   - pulls a task from the queue,
//   - develops its node into new subnodes using Expand
//   - pushes the tasks for the new subnodes into the queue
//   - marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if Expand returns a non-nil
// error or if an operation with the given queue returns a
// non-nil error.
func (g *Grower) Work(ctx context.Context, t *tree.Tree, q queue.Queue, emptyQueueSleep time.Duration) error {
	for {
		task, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			r, p, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		err = g.workTask(ctx, task, t, q)
		if err != nil {
			return err
		}
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
	return nil
}

// Grow takes a context, a dataset, a label feature, a slice of
// predictor features and a growth policy and grows a tree on an
// in-memory node store, draining an in-memory queue with a single
// synchronous worker. It returns the fully-grown tree or an error.
func Grow(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature, policy *GrowthPolicy) (*tree.Tree, error) {
	g := &Grower{Label: label, Features: features, Policy: policy}
	q := queue.New()
	defer q.Stop(ctx)
	t, err := g.Seed(ctx, s, q, tree.NewMemoryNodeStore())
	if err != nil {
		return nil, err
	}
	err = g.Work(ctx, t, q, time.Millisecond)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (g *Grower) workTask(ctx context.Context, task *queue.Task, t *tree.Tree, q queue.Queue) error {
	defer func() {
		q.Drop(ctx, task.ID())
	}()
	tasks, err := g.Expand(ctx, task, t)
	if err != nil {
		return err
	}
	for _, st := range tasks {
		err = q.Push(ctx, st)
		if err != nil {
			return err
		}
	}
	return q.Complete(ctx, task.ID())
}

func (g *Grower) validate(ctx context.Context, s dataset.Dataset) error {
	if _, ok := g.Label.(*feature.ContinuousFeature); ok {
		summary, err := s.NumericSummary(ctx, g.Label)
		if err != nil {
			return err
		}
		if summary.Count == 0 {
			return ErrNoLabelValues
		}
		if summary.SumSquares == 0 {
			return ErrConstantLabel
		}
		return nil
	}
	fvc, err := s.CountFeatureValues(ctx, g.Label)
	if err != nil {
		return err
	}
	if len(fvc) == 0 {
		return ErrNoLabelValues
	}
	if len(fvc) == 1 {
		return ErrConstantLabel
	}
	return nil
}
