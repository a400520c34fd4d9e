package split

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIncome = feature.NewContinuousFeature("household_income")

func numberedSamples(n int) []dataset.Sample {
	samples := make([]dataset.Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, dataset.NewSample(map[string]interface{}{
			"household_income": float64(i),
		}))
	}
	return samples
}

func sampleNumbers(ctx context.Context, t *testing.T, ds dataset.Dataset) map[float64]bool {
	t.Helper()
	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	numbers := make(map[float64]bool)
	for _, s := range samples {
		v, err := s.ValueFor(ctx, testIncome)
		require.NoError(t, err)
		numbers[v.(float64)] = true
	}
	return numbers
}

func TestValidationSplitsDisjointlyAndCoversTheDataset(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(20))
	rest, drawn, err := Validation(ctx, ds, 0.25, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	restNumbers := sampleNumbers(ctx, t, rest)
	drawnNumbers := sampleNumbers(ctx, t, drawn)
	assert.Len(t, drawnNumbers, 5, "the drawn side holds floor(N*fraction) samples")
	assert.Len(t, restNumbers, 15)
	for n := range drawnNumbers {
		assert.False(t, restNumbers[n], "the two sides share no sample")
	}
	for i := 0; i < 20; i++ {
		assert.True(t, restNumbers[float64(i)] || drawnNumbers[float64(i)],
			"together the two sides cover the dataset")
	}
}

func TestValidationIsReproducible(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(20))
	_, drawn1, err := Validation(ctx, ds, 0.25, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	_, drawn2, err := Validation(ctx, ds, 0.25, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, sampleNumbers(ctx, t, drawn1), sampleNumbers(ctx, t, drawn2),
		"the same seed always draws the same samples")
}

func TestValidationRejectsEmptySides(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(3))
	_, _, err := Validation(ctx, ds, 0.1, rand.New(rand.NewSource(1)))
	assert.Equal(t, ErrEmptySide, err)
	_, _, err = Validation(ctx, ds, 0.99, rand.New(rand.NewSource(1)))
	assert.Equal(t, ErrEmptySide, err)
}

func TestFoldsDealDisjointNearEqualFolds(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(10))
	folds, err := Folds(ctx, ds, 4, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, folds, 4)

	seen := make(map[float64]int)
	for i, fold := range folds {
		numbers := sampleNumbers(ctx, t, fold)
		size := len(numbers)
		assert.True(t, size == 2 || size == 3, fmt.Sprintf("fold %d has %d samples", i, size))
		for n := range numbers {
			seen[n]++
		}
	}
	require.Len(t, seen, 10, "the folds cover the dataset")
	for n, count := range seen {
		assert.Equal(t, 1, count, fmt.Sprintf("sample %f appears in exactly one fold", n))
	}
}

func TestFoldsRejectTooFewSamples(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(3))
	_, err := Folds(ctx, ds, 5, rand.New(rand.NewSource(1)))
	assert.Equal(t, ErrTooFewSamples, err)
	_, err = Folds(ctx, ds, 0, rand.New(rand.NewSource(1)))
	assert.Equal(t, ErrTooFewSamples, err)
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New(numberedSamples(9))
	folds, err := Folds(ctx, ds, 3, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	merged, err := Merge(ctx, folds[:2])
	require.NoError(t, err)
	count, err := merged.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}
