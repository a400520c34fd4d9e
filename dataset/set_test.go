package dataset

import (
	"context"
	"math"
	"testing"

	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTurnout = feature.NewDiscreteFeature("turnout01", []string{"Yes", "No"})
	testIncome  = feature.NewContinuousFeature("household_income")
)

func testSamples() []Sample {
	return []Sample{
		NewSample(map[string]interface{}{"turnout01": "Yes", "household_income": 1.0}),
		NewSample(map[string]interface{}{"turnout01": "Yes", "household_income": 2.0}),
		NewSample(map[string]interface{}{"turnout01": "No", "household_income": 3.0}),
		NewSample(map[string]interface{}{"turnout01": "No", "household_income": 4.0}),
		NewSample(map[string]interface{}{"household_income": nil}),
	}
}

func datasetImplementations() map[string]func([]Sample) Dataset {
	return map[string]func([]Sample) Dataset{
		"memory-intensive": NewMemoryIntensive,
		"cpu-intensive":    NewCPUIntensive,
	}
}

func TestDatasetEntropySkipsUndefinedValues(t *testing.T) {
	ctx := context.Background()
	for name, newDataset := range datasetImplementations() {
		t.Run(name, func(t *testing.T) {
			ds := newDataset(testSamples())
			entropy, err := ds.Entropy(ctx, testTurnout)
			require.NoError(t, err)
			assert.InDelta(t, math.Log(2.0), entropy, 1e-9,
				"an even two-class dataset has ln(2) entropy over its defined values")
		})
	}
}

func TestDatasetNumericSummary(t *testing.T) {
	ctx := context.Background()
	for name, newDataset := range datasetImplementations() {
		t.Run(name, func(t *testing.T) {
			ds := newDataset(testSamples())
			summary, err := ds.NumericSummary(ctx, testIncome)
			require.NoError(t, err)
			assert.Equal(t, 4, summary.Count)
			assert.InDelta(t, 2.5, summary.Mean, 1e-9)
			assert.InDelta(t, 5.0, summary.SumSquares, 1e-9)
		})
	}
}

func TestDatasetSubsetWith(t *testing.T) {
	ctx := context.Background()
	for name, newDataset := range datasetImplementations() {
		t.Run(name, func(t *testing.T) {
			ds := newDataset(testSamples())
			subset, err := ds.SubsetWith(ctx, feature.NewDiscreteCriterion(testTurnout, "Yes"))
			require.NoError(t, err)
			count, err := subset.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			criteria, err := subset.Criteria(ctx)
			require.NoError(t, err)
			assert.Len(t, criteria, 1)

			entropy, err := subset.Entropy(ctx, testTurnout)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, entropy, 1e-9, "single-class subsets are pure")

			nested, err := subset.SubsetWith(ctx, feature.NewContinuousCriterion(testIncome, 1.5, math.Inf(1)))
			require.NoError(t, err)
			count, err = nested.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count, "criteria accumulate when subsetting")
		})
	}
}

func TestDatasetCountFeatureValuesSkipsUndefinedValues(t *testing.T) {
	ctx := context.Background()
	for name, newDataset := range datasetImplementations() {
		t.Run(name, func(t *testing.T) {
			ds := newDataset(testSamples())
			counts, err := ds.CountFeatureValues(ctx, testTurnout)
			require.NoError(t, err)
			assert.Equal(t, map[string]int{"Yes": 2, "No": 2}, counts)
		})
	}
}

func TestDatasetSamplesAndCount(t *testing.T) {
	ctx := context.Background()
	for name, newDataset := range datasetImplementations() {
		t.Run(name, func(t *testing.T) {
			ds := newDataset(testSamples())
			count, err := ds.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 5, count)
			samples, err := ds.Samples(ctx)
			require.NoError(t, err)
			assert.Len(t, samples, 5)
		})
	}
}
