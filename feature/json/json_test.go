package json

import (
	"math"
	"testing"

	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeatures = []feature.Feature{
	feature.NewDiscreteFeature("party_id", []string{"Democrat", "Independent", "Republican"}),
	feature.NewOrdinalFeature("civic_duty", []string{"disagree", "neither", "agree"}),
	feature.NewContinuousFeature("household_income"),
}

func TestCriteriaRoundTrip(t *testing.T) {
	ced := NewCriteriaEncodeDecoder(testFeatures)
	party := testFeatures[0].(*feature.DiscreteFeature)
	civic := testFeatures[1].(*feature.OrdinalFeature)
	income := testFeatures[2].(*feature.ContinuousFeature)

	criteria := []feature.Criterion{
		feature.NewDiscreteCriterion(party, "Democrat"),
		feature.NewExclusionCriterion(party, "Democrat"),
		feature.NewOrdinalCriterion(civic, 1, 3),
		feature.NewContinuousCriterion(income, math.Inf(-1), 42.5),
		feature.NewUndefinedCriterion(income),
	}
	for _, c := range criteria {
		encoded, err := ced.Encode(c)
		require.NoError(t, err)
		decoded, err := ced.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, c.Feature().Name(), decoded.Feature().Name())
		assert.IsType(t, c, decoded)
	}
}

func TestContinuousCriterionKeepsItsOpenEnd(t *testing.T) {
	ced := NewCriteriaEncodeDecoder(testFeatures)
	income := testFeatures[2].(*feature.ContinuousFeature)
	encoded, err := ced.Encode(feature.NewContinuousCriterion(income, math.Inf(-1), 42.5))
	require.NoError(t, err)
	decoded, err := ced.Decode(encoded)
	require.NoError(t, err)
	cc, ok := decoded.(feature.ContinuousCriterion)
	require.True(t, ok)
	a, b := cc.Interval()
	assert.True(t, math.IsInf(a, -1))
	assert.Equal(t, 42.5, b)
}

func TestOrdinalCriterionKeepsItsLevelRange(t *testing.T) {
	ced := NewCriteriaEncodeDecoder(testFeatures)
	civic := testFeatures[1].(*feature.OrdinalFeature)
	encoded, err := ced.Encode(feature.NewOrdinalCriterion(civic, 1, 3))
	require.NoError(t, err)
	decoded, err := ced.Decode(encoded)
	require.NoError(t, err)
	oc, ok := decoded.(feature.OrdinalCriterion)
	require.True(t, ok)
	lo, hi := oc.LevelRange()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)
}

func TestDecodeCriterionOnUnknownFeature(t *testing.T) {
	ced := NewCriteriaEncodeDecoder(testFeatures)
	_, err := ced.Decode([]byte(`{"t":"discrete","f":"education_age","v":"18"}`))
	assert.Error(t, err)
}
