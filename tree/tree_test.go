package tree

import (
	"context"
	"testing"

	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPhone = feature.NewDiscreteFeature("phone", []string{"Yes", "No"})

type testSample map[string]interface{}

func (ts testSample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	return ts[f.Name()], nil
}

// phoneSplitTree builds a tree with a single binary split on the phone
// feature: a heavier leaf predicting "Yes" and a lighter one
// predicting "No".
func phoneSplitTree(ctx context.Context, t *testing.T) *Tree {
	t.Helper()
	ns := NewMemoryNodeStore()
	root := &Node{}
	require.NoError(t, ns.Create(ctx, root))
	yesLeaf := &Node{
		ParentID:         root.ID,
		FeatureCriterion: feature.NewDiscreteCriterion(testPhone, "Yes"),
		Prediction:       NewPrediction(map[string]float64{"Yes": 0.9, "No": 0.1}, 18, 11.7),
	}
	require.NoError(t, ns.Create(ctx, yesLeaf))
	noLeaf := &Node{
		ParentID:         root.ID,
		FeatureCriterion: feature.NewExclusionCriterion(testPhone, "Yes"),
		Prediction:       NewPrediction(map[string]float64{"Yes": 0.25, "No": 0.75}, 12, 13.5),
	}
	require.NoError(t, ns.Create(ctx, noLeaf))
	root.SubtreeFeature = testPhone
	root.SubtreeIDs = []string{yesLeaf.ID, noLeaf.ID}
	root.Prediction = NewPrediction(map[string]float64{"Yes": 0.64, "No": 0.36}, 30, 39.3)
	require.NoError(t, ns.Store(ctx, root))
	return New(root.ID, ns, testPhone)
}

func TestPredictWalksToTheSatisfiedLeaf(t *testing.T) {
	ctx := context.Background()
	tr := phoneSplitTree(ctx, t)

	p, err := tr.Predict(ctx, testSample{"phone": "Yes"})
	require.NoError(t, err)
	v, prob := p.PredictedValue()
	assert.Equal(t, "Yes", v)
	assert.InDelta(t, 0.9, prob, 1e-9)
	assert.Equal(t, 18, p.Weight())

	p, err = tr.Predict(ctx, testSample{"phone": "No"})
	require.NoError(t, err)
	v, _ = p.PredictedValue()
	assert.Equal(t, "No", v)
}

func TestPredictFallsToTheHeavierChildOnUndefinedValues(t *testing.T) {
	ctx := context.Background()
	tr := phoneSplitTree(ctx, t)
	p, err := tr.Predict(ctx, testSample{})
	require.NoError(t, err)
	v, _ := p.PredictedValue()
	assert.Equal(t, "Yes", v, "undefined values follow the child grown from more samples")
	assert.Equal(t, 18, p.Weight())
}

func TestPredictOnNilTree(t *testing.T) {
	var tr *Tree
	_, err := tr.Predict(context.Background(), testSample{})
	assert.Error(t, err)
}

func TestLeafCount(t *testing.T) {
	ctx := context.Background()
	tr := phoneSplitTree(ctx, t)
	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)
}

func TestTraverseOrder(t *testing.T) {
	ctx := context.Background()
	tr := phoneSplitTree(ctx, t)

	var topdown []string
	require.NoError(t, tr.Traverse(ctx, false, func(ctx context.Context, n *Node) error {
		topdown = append(topdown, n.ID)
		return nil
	}))
	require.Len(t, topdown, 3)
	assert.Equal(t, tr.RootID, topdown[0])

	var bottomup []string
	require.NoError(t, tr.Traverse(ctx, true, func(ctx context.Context, n *Node) error {
		bottomup = append(bottomup, n.ID)
		return nil
	}))
	require.Len(t, bottomup, 3)
	assert.Equal(t, tr.RootID, bottomup[2])
}

func TestMemoryNodeStore(t *testing.T) {
	ctx := context.Background()
	ns := NewMemoryNodeStore()
	n := &Node{}
	require.NoError(t, ns.Create(ctx, n))
	require.NotEmpty(t, n.ID)

	got, err := ns.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	missing, err := ns.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, ns.Delete(ctx, n))
	got, err = ns.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewPredictionFromValues(t *testing.T) {
	p := NewPrediction(map[string]float64{"Yes": 0.75, "No": 0.25}, 40, 12.3)
	v, prob := p.PredictedValue()
	assert.Equal(t, "Yes", v)
	assert.InDelta(t, 0.75, prob, 1e-9)
	assert.False(t, p.Numeric())
	assert.Equal(t, 40, p.Weight())
	assert.InDelta(t, 12.3, p.Deviance(), 1e-9)

	np := NewNumericPrediction(10.5, 20, 80.0)
	assert.True(t, np.Numeric())
	assert.InDelta(t, 10.5, np.Mean(), 1e-9)
	assert.Equal(t, 20, np.Weight())
}
