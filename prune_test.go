package psephos

import (
	"context"
	"testing"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treeWithLeaves struct {
	tree   *tree.Tree
	leaves int
}

// threeLeafSamples yields a dataset a tree fully separates with 3
// leaves: a phone split first, then a gender split under it. The
// class counts make the inner gender split the weakest link, so the
// pruning sequence visits every size from 3 down to 1.
func threeLeafSamples() []dataset.Sample {
	samples := respondents(4, map[string]interface{}{"phone": "Yes", "gender": "male", "turnout01": "Yes"})
	samples = append(samples, respondents(6, map[string]interface{}{"phone": "Yes", "gender": "female", "turnout01": "No"})...)
	samples = append(samples, respondents(66, map[string]interface{}{"phone": "No", "gender": "male", "turnout01": "No"})...)
	return samples
}

func growThreeLeafTree(ctx context.Context, t *testing.T) *treeWithLeaves {
	t.Helper()
	ds := dataset.New(threeLeafSamples())
	tr, err := Grow(ctx, ds, turnoutFeature, []feature.Feature{phoneFeature, genderFeature}, nil)
	require.NoError(t, err)
	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, leaves)
	return &treeWithLeaves{tr, leaves}
}

func TestPruneSizesListTheCostComplexitySequence(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	sizes, err := PruneSizes(ctx, tl.tree)
	require.NoError(t, err)
	require.NotEmpty(t, sizes)
	assert.Equal(t, tl.leaves, sizes[0], "the sequence starts at the full tree")
	assert.Equal(t, 1, sizes[len(sizes)-1], "the sequence ends at the root-only tree")
	for i := 1; i < len(sizes); i++ {
		assert.Less(t, sizes[i], sizes[i-1], "the sequence strictly decreases")
	}
}

func TestPruneNeverGrowsTheTree(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	for leaves := 1; leaves <= tl.leaves+2; leaves++ {
		pruned, err := Prune(ctx, tl.tree, leaves)
		require.NoError(t, err)
		prunedLeaves, err := pruned.LeafCount(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, prunedLeaves, tl.leaves)
		assert.LessOrEqual(t, prunedLeaves, leaves)
	}
}

func TestPruneClampsToTheFullTree(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	pruned, err := Prune(ctx, tl.tree, tl.leaves+100)
	require.NoError(t, err)
	prunedLeaves, err := pruned.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, tl.leaves, prunedLeaves,
		"asking for more leaves than the tree has returns an unpruned copy")
}

func TestPruneToSingleLeafPredictsTheMajority(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	pruned, err := Prune(ctx, tl.tree, 1)
	require.NoError(t, err)
	prunedLeaves, err := pruned.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, prunedLeaves)
	// 72 of the 76 training samples did not turn out
	assert.Equal(t, "No", predictedValue(ctx, t, pruned, map[string]interface{}{"phone": "Yes", "gender": "male"}))
}

func TestPruneCollapsesTheWeakestLinkFirst(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	pruned, err := Prune(ctx, tl.tree, 2)
	require.NoError(t, err)
	prunedLeaves, err := pruned.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, prunedLeaves)
	assert.Equal(t, "No", predictedValue(ctx, t, pruned, map[string]interface{}{"phone": "No", "gender": "male"}))
	assert.Equal(t, "No", predictedValue(ctx, t, pruned, map[string]interface{}{"phone": "Yes", "gender": "male"}),
		"the collapsed subtree predicts its majority class")
}

func TestPrunedTreesTrainingErrorIsNonIncreasingInLeafCount(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	ds := dataset.New(threeLeafSamples())
	sizes, err := PruneSizes(ctx, tl.tree)
	require.NoError(t, err)
	require.NotEmpty(t, sizes)
	// sizes run from the full tree down to the root-only tree, so the
	// training misclassification rate must never drop along the walk
	var previous float64
	for i, size := range sizes {
		pruned, err := Prune(ctx, tl.tree, size)
		require.NoError(t, err)
		cm, err := NewConfusionMatrix(ctx, pruned, ds)
		require.NoError(t, err)
		rate := cm.MisclassificationRate()
		if i > 0 {
			assert.GreaterOrEqual(t, rate, previous,
				"pruning to %d leaves cannot fit the training data better than the larger trees", size)
		}
		previous = rate
	}
}

func TestPruneRejectsFewerThanOneLeaf(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	_, err := Prune(ctx, tl.tree, 0)
	assert.Equal(t, ErrInvalidPruneSize, err)
}

func TestPruneLeavesTheOriginalTreeUntouched(t *testing.T) {
	ctx := context.Background()
	tl := growThreeLeafTree(ctx, t)
	_, err := Prune(ctx, tl.tree, 1)
	require.NoError(t, err)
	leaves, err := tl.tree.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, tl.leaves, leaves)
}
