package psephos

import (
	"context"
	"testing"
	"time"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/queue"
	"github.com/psephology/psephos/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	phoneFeature   = feature.NewDiscreteFeature("phone", []string{"Yes", "No"})
	turnoutFeature = feature.NewDiscreteFeature("turnout01", []string{"Yes", "No"})
	genderFeature  = feature.NewDiscreteFeature("gender", []string{"male", "female"})
	civicFeature   = feature.NewOrdinalFeature("civic_duty", []string{"disagree", "neither", "agree"})
	incomeFeature  = feature.NewContinuousFeature("household_income")
)

func respondents(n int, values map[string]interface{}) []dataset.Sample {
	samples := make([]dataset.Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, dataset.NewSample(values))
	}
	return samples
}

func predictedValue(ctx context.Context, t *testing.T, tr *tree.Tree, values map[string]interface{}) string {
	t.Helper()
	p, err := tr.Predict(ctx, dataset.NewSample(values))
	require.NoError(t, err)
	v, _ := p.PredictedValue()
	return v
}

func phoneTurnoutSamples() []dataset.Sample {
	samples := respondents(16, map[string]interface{}{"phone": "Yes", "turnout01": "Yes"})
	return append(samples, respondents(14, map[string]interface{}{"phone": "No", "turnout01": "No"})...)
}

func TestGrowSplitsOnTheSeparatingFeature(t *testing.T) {
	ctx := context.Background()
	tr, err := Grow(ctx, dataset.New(phoneTurnoutSamples()), turnoutFeature, []feature.Feature{phoneFeature}, nil)
	require.NoError(t, err)

	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)

	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{"phone": "Yes"}))
	assert.Equal(t, "No", predictedValue(ctx, t, tr, map[string]interface{}{"phone": "No"}))

	p, err := tr.Predict(ctx, dataset.NewSample(map[string]interface{}{"phone": "Yes"}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.ProbabilityOf("Yes"), 1e-9)
	assert.Equal(t, 16, p.Weight())
}

func TestPredictionForUndefinedValueFollowsHeavierChild(t *testing.T) {
	ctx := context.Background()
	tr, err := Grow(ctx, dataset.New(phoneTurnoutSamples()), turnoutFeature, []feature.Feature{phoneFeature}, nil)
	require.NoError(t, err)

	// 16 of the 30 training samples answered the phone survey
	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{}))
}

func TestGrowRegressionTree(t *testing.T) {
	ctx := context.Background()
	samples := respondents(16, map[string]interface{}{"phone": "Yes", "household_income": 10.0})
	samples = append(samples, respondents(14, map[string]interface{}{"phone": "No", "household_income": 20.0})...)
	tr, err := Grow(ctx, dataset.New(samples), incomeFeature, []feature.Feature{phoneFeature}, nil)
	require.NoError(t, err)

	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)

	p, err := tr.Predict(ctx, dataset.NewSample(map[string]interface{}{"phone": "Yes"}))
	require.NoError(t, err)
	assert.True(t, p.Numeric())
	assert.InDelta(t, 10.0, p.Mean(), 1e-9)
	p, err = tr.Predict(ctx, dataset.NewSample(map[string]interface{}{"phone": "No"}))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, p.Mean(), 1e-9)
}

func TestGrowSplitsOrdinalFeaturesOnLevelCuts(t *testing.T) {
	ctx := context.Background()
	samples := respondents(10, map[string]interface{}{"civic_duty": "disagree", "turnout01": "No"})
	samples = append(samples, respondents(10, map[string]interface{}{"civic_duty": "neither", "turnout01": "Yes"})...)
	samples = append(samples, respondents(10, map[string]interface{}{"civic_duty": "agree", "turnout01": "Yes"})...)
	tr, err := Grow(ctx, dataset.New(samples), turnoutFeature, []feature.Feature{civicFeature}, nil)
	require.NoError(t, err)

	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)
	assert.Equal(t, "No", predictedValue(ctx, t, tr, map[string]interface{}{"civic_duty": "disagree"}))
	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{"civic_duty": "neither"}))
	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{"civic_duty": "agree"}))
}

func TestGrowSplitsContinuousFeaturesOnThresholds(t *testing.T) {
	ctx := context.Background()
	samples := make([]dataset.Sample, 0, 20)
	for i := 1; i <= 20; i++ {
		turnout := "No"
		if i > 10 {
			turnout = "Yes"
		}
		samples = append(samples, dataset.NewSample(map[string]interface{}{
			"household_income": float64(i),
			"turnout01":        turnout,
		}))
	}
	tr, err := Grow(ctx, dataset.New(samples), turnoutFeature, []feature.Feature{incomeFeature}, nil)
	require.NoError(t, err)

	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)
	assert.Equal(t, "No", predictedValue(ctx, t, tr, map[string]interface{}{"household_income": 3.0}))
	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{"household_income": 15.0}))
}

func TestGrowthPolicyStopsSmallNodes(t *testing.T) {
	ctx := context.Background()
	policy := &GrowthPolicy{MinNodeSize: 50, MinImpurityDecrease: 1e-9}
	tr, err := Grow(ctx, dataset.New(phoneTurnoutSamples()), turnoutFeature, []feature.Feature{phoneFeature}, policy)
	require.NoError(t, err)
	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, leaves, "nodes below the minimum size stay leaves")
	assert.Equal(t, "Yes", predictedValue(ctx, t, tr, map[string]interface{}{"phone": "No"}))
}

func TestGrowthPolicyStopsAtTheMaximumDepth(t *testing.T) {
	ctx := context.Background()
	policy := &GrowthPolicy{MinNodeSize: 10, MinImpurityDecrease: 1e-9, MaxDepth: 1}
	tr, err := Grow(ctx, dataset.New(threeLeafSamples()), turnoutFeature, []feature.Feature{phoneFeature, genderFeature}, policy)
	require.NoError(t, err)
	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves, "nodes at the maximum depth stay leaves")
	assert.Equal(t, "No", predictedValue(ctx, t, tr, map[string]interface{}{"phone": "Yes", "gender": "male"}),
		"the depth-limited node predicts its majority class")
}

func TestGrowRejectsConstantLabel(t *testing.T) {
	ctx := context.Background()
	samples := respondents(20, map[string]interface{}{"phone": "Yes", "turnout01": "Yes"})
	_, err := Grow(ctx, dataset.New(samples), turnoutFeature, []feature.Feature{phoneFeature}, nil)
	assert.Equal(t, ErrConstantLabel, err)
}

func TestGrowRejectsLabelWithoutValues(t *testing.T) {
	ctx := context.Background()
	samples := respondents(20, map[string]interface{}{"phone": "Yes"})
	_, err := Grow(ctx, dataset.New(samples), turnoutFeature, []feature.Feature{phoneFeature}, nil)
	assert.Equal(t, ErrNoLabelValues, err)

	samples = respondents(20, map[string]interface{}{"phone": "Yes", "household_income": 1.0})
	_, err = Grow(ctx, dataset.New(samples), incomeFeature, []feature.Feature{phoneFeature}, nil)
	assert.Equal(t, ErrConstantLabel, err)
}

func TestSeedAndWorkDrainTheQueue(t *testing.T) {
	ctx := context.Background()
	g := &Grower{Label: turnoutFeature, Features: []feature.Feature{phoneFeature}}
	q := queue.New()
	defer q.Stop(ctx)
	tr, err := g.Seed(ctx, dataset.New(phoneTurnoutSamples()), q, tree.NewMemoryNodeStore())
	require.NoError(t, err)
	require.NoError(t, g.Work(ctx, tr, q, time.Millisecond))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending+running)

	leaves, err := tr.LeafCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, leaves)
}
