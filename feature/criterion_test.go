package feature

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSample map[string]interface{}

func (ts testSample) ValueFor(ctx context.Context, f Feature) (interface{}, error) {
	return ts[f.Name()], nil
}

func TestContinuousCriterion(t *testing.T) {
	ctx := context.Background()
	income := NewContinuousFeature("household_income")
	c := NewContinuousCriterion(income, 20.0, 40.0)

	satisfied, err := c.SatisfiedBy(ctx, testSample{"household_income": 20.0})
	require.NoError(t, err)
	assert.True(t, satisfied, "interval start is included")

	satisfied, err = c.SatisfiedBy(ctx, testSample{"household_income": 39.9})
	require.NoError(t, err)
	assert.True(t, satisfied)

	satisfied, err = c.SatisfiedBy(ctx, testSample{"household_income": 40.0})
	require.NoError(t, err)
	assert.False(t, satisfied, "interval end is excluded")

	satisfied, err = c.SatisfiedBy(ctx, testSample{})
	require.NoError(t, err)
	assert.False(t, satisfied, "undefined values satisfy no criterion")

	satisfied, err = c.SatisfiedBy(ctx, testSample{"household_income": "a lot"})
	require.NoError(t, err)
	assert.False(t, satisfied)

	below := NewContinuousCriterion(income, math.Inf(-1), 30.0)
	satisfied, err = below.SatisfiedBy(ctx, testSample{"household_income": 5.0})
	require.NoError(t, err)
	assert.True(t, satisfied, "open-ended intervals accept any value on the open side")

	a, b := c.Interval()
	assert.Equal(t, 20.0, a)
	assert.Equal(t, 40.0, b)
}

func TestDiscreteAndExclusionCriteriaAreComplementary(t *testing.T) {
	ctx := context.Background()
	party := NewDiscreteFeature("party_id", []string{"Democrat", "Independent", "Republican"})
	dc := NewDiscreteCriterion(party, "Democrat")
	ec := NewExclusionCriterion(party, "Democrat")

	for _, value := range party.AvailableValues() {
		s := testSample{"party_id": value}
		d, err := dc.SatisfiedBy(ctx, s)
		require.NoError(t, err)
		e, err := ec.SatisfiedBy(ctx, s)
		require.NoError(t, err)
		assert.NotEqual(t, d, e, "every defined value satisfies exactly one side of the split")
	}

	d, err := dc.SatisfiedBy(ctx, testSample{})
	require.NoError(t, err)
	e, err := ec.SatisfiedBy(ctx, testSample{})
	require.NoError(t, err)
	assert.False(t, d, "undefined values satisfy neither side")
	assert.False(t, e, "undefined values satisfy neither side")

	assert.Equal(t, "Democrat", dc.Value())
	assert.Equal(t, "Democrat", ec.ExcludedValue())
}

func TestOrdinalCriterion(t *testing.T) {
	ctx := context.Background()
	civic := NewOrdinalFeature("civic_duty", []string{
		"strongly disagree", "disagree", "neither", "agree", "strongly agree",
	})
	c := NewOrdinalCriterion(civic, 0, 2)

	satisfied, err := c.SatisfiedBy(ctx, testSample{"civic_duty": "strongly disagree"})
	require.NoError(t, err)
	assert.True(t, satisfied)

	satisfied, err = c.SatisfiedBy(ctx, testSample{"civic_duty": "disagree"})
	require.NoError(t, err)
	assert.True(t, satisfied)

	satisfied, err = c.SatisfiedBy(ctx, testSample{"civic_duty": "neither"})
	require.NoError(t, err)
	assert.False(t, satisfied, "level ranges are half-open")

	satisfied, err = c.SatisfiedBy(ctx, testSample{"civic_duty": "whatever"})
	require.NoError(t, err)
	assert.False(t, satisfied)

	satisfied, err = c.SatisfiedBy(ctx, testSample{})
	require.NoError(t, err)
	assert.False(t, satisfied)

	lo, hi := c.LevelRange()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)
}

func TestUndefinedCriterion(t *testing.T) {
	ctx := context.Background()
	gender := NewDiscreteFeature("gender", []string{"male", "female"})
	c := NewUndefinedCriterion(gender)
	satisfied, err := c.SatisfiedBy(ctx, testSample{})
	require.NoError(t, err)
	assert.True(t, satisfied)
	assert.Equal(t, gender, c.Feature())
}

func TestFeatureValidation(t *testing.T) {
	party := NewDiscreteFeature("party_id", []string{"Democrat", "Republican"})
	ok, err := party.Valid("Democrat")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = party.Valid("Green")
	assert.Error(t, err)
	assert.False(t, ok)
	ok, err = party.Valid(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	income := NewContinuousFeature("household_income")
	ok, err = income.Valid(42.5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = income.Valid("42.5")
	assert.Error(t, err)
	assert.False(t, ok)

	civic := NewOrdinalFeature("civic_duty", []string{"disagree", "agree"})
	ok, err = civic.Valid("agree")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = civic.Valid("maybe")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, civic.LevelIndex("agree"))
	assert.Equal(t, -1, civic.LevelIndex("maybe"))
}
