package json

import (
	"bytes"
	"context"
	"testing"

	"github.com/psephology/psephos/feature"
	featurejson "github.com/psephology/psephos/feature/json"
	"github.com/psephology/psephos/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeatures = []feature.Feature{
	feature.NewDiscreteFeature("phone", []string{"Yes", "No"}),
	feature.NewDiscreteFeature("turnout01", []string{"Yes", "No"}),
}

type testSample map[string]interface{}

func (ts testSample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	return ts[f.Name()], nil
}

func testTree(ctx context.Context, t *testing.T) *tree.Tree {
	t.Helper()
	phone := testFeatures[0].(*feature.DiscreteFeature)
	ns := tree.NewMemoryNodeStore()
	root := &tree.Node{}
	require.NoError(t, ns.Create(ctx, root))
	yesLeaf := &tree.Node{
		ParentID:         root.ID,
		FeatureCriterion: feature.NewDiscreteCriterion(phone, "Yes"),
		Prediction:       tree.NewPrediction(map[string]float64{"Yes": 0.9, "No": 0.1}, 20, 13.0),
	}
	require.NoError(t, ns.Create(ctx, yesLeaf))
	noLeaf := &tree.Node{
		ParentID:         root.ID,
		FeatureCriterion: feature.NewExclusionCriterion(phone, "Yes"),
		Prediction:       tree.NewPrediction(map[string]float64{"Yes": 0.2, "No": 0.8}, 10, 10.0),
	}
	require.NoError(t, ns.Create(ctx, noLeaf))
	root.SubtreeFeature = phone
	root.SubtreeIDs = []string{yesLeaf.ID, noLeaf.ID}
	root.Prediction = tree.NewPrediction(map[string]float64{"Yes": 0.67, "No": 0.33}, 30, 38.0)
	require.NoError(t, ns.Store(ctx, root))
	return tree.New(root.ID, ns, testFeatures[1])
}

func TestTreeRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := testTree(ctx, t)
	ned := NewNodeEncodeDecoder(featurejson.NewCriteriaEncodeDecoder(testFeatures), testFeatures)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONTree(ctx, original, ned, &buf))

	restored := &tree.Tree{NodeStore: tree.NewMemoryNodeStore()}
	require.NoError(t, ReadJSONTree(ctx, restored, ned, testFeatures, &buf))

	assert.Equal(t, original.RootID, restored.RootID)
	assert.Equal(t, "turnout01", restored.Label.Name())

	leaves, err := restored.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)

	p, err := restored.Predict(ctx, testSample{"phone": "Yes"})
	require.NoError(t, err)
	v, prob := p.PredictedValue()
	assert.Equal(t, "Yes", v)
	assert.InDelta(t, 0.9, prob, 1e-9)
	assert.Equal(t, 20, p.Weight())
	assert.InDelta(t, 13.0, p.Deviance(), 1e-9)

	p, err = restored.Predict(ctx, testSample{"phone": "No"})
	require.NoError(t, err)
	v, _ = p.PredictedValue()
	assert.Equal(t, "No", v)
}

func TestReadJSONTreeWithUnknownLabel(t *testing.T) {
	ctx := context.Background()
	restored := &tree.Tree{NodeStore: tree.NewMemoryNodeStore()}
	content := `{"rootID":"1","label":"party_id","nodes":[{"id":"1"}]}`
	err := ReadJSONTree(ctx, restored, NewNodeEncodeDecoder(featurejson.NewCriteriaEncodeDecoder(testFeatures), testFeatures), testFeatures, bytes.NewReader([]byte(content)))
	assert.Error(t, err)
}
