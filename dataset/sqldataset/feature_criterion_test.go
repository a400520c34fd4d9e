package sqldataset

import (
	"fmt"
	"math"
	"testing"

	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumnName(name string) (string, error) {
	return name + "_column", nil
}

func TestNewFeatureCriteriaForContinuousCriterion(t *testing.T) {
	income := feature.NewContinuousFeature("household_income")
	fcs, err := NewFeatureCriteria(feature.NewContinuousCriterion(income, 10.0, 30.0), testColumnName)
	require.NoError(t, err)
	require.Len(t, fcs, 2)
	assert.Equal(t, "household_income_column", fcs[0].FeatureColumn)
	assert.Equal(t, ">=", fcs[0].Operator)
	assert.Equal(t, 10.0, fcs[0].Value)
	assert.Equal(t, "<", fcs[1].Operator)
	assert.Equal(t, 30.0, fcs[1].Value)

	fcs, err = NewFeatureCriteria(feature.NewContinuousCriterion(income, math.Inf(-1), 30.0), testColumnName)
	require.NoError(t, err)
	require.Len(t, fcs, 1, "open interval ends impose no condition")
	assert.Equal(t, "<", fcs[0].Operator)
}

func TestNewFeatureCriteriaForDiscreteCriteria(t *testing.T) {
	party := feature.NewDiscreteFeature("party_id", []string{"Democrat", "Independent", "Republican"})
	fcs, err := NewFeatureCriteria(feature.NewDiscreteCriterion(party, "Democrat"), testColumnName)
	require.NoError(t, err)
	require.Len(t, fcs, 1)
	assert.Equal(t, "party_id_column", fcs[0].FeatureColumn)
	assert.Equal(t, "=", fcs[0].Operator)
	assert.Equal(t, "Democrat", fcs[0].Value)

	fcs, err = NewFeatureCriteria(feature.NewExclusionCriterion(party, "Democrat"), testColumnName)
	require.NoError(t, err)
	require.Len(t, fcs, 1)
	assert.Equal(t, "<>", fcs[0].Operator)
	assert.Equal(t, "Democrat", fcs[0].Value)
}

func TestNewFeatureCriteriaForOrdinalCriterion(t *testing.T) {
	civic := feature.NewOrdinalFeature("civic_duty", []string{"disagree", "neither", "agree", "strongly agree"})
	fcs, err := NewFeatureCriteria(feature.NewOrdinalCriterion(civic, 1, 3), testColumnName)
	require.NoError(t, err)
	require.Len(t, fcs, 1)
	assert.Equal(t, "IN", fcs[0].Operator)
	assert.Nil(t, fcs[0].Value)
	assert.Equal(t, []interface{}{"neither", "agree"}, fcs[0].Values,
		"level ranges translate to the list of level values they span")
}

func TestNewFeatureCriteriaForUndefinedCriterion(t *testing.T) {
	income := feature.NewContinuousFeature("household_income")
	fcs, err := NewFeatureCriteria(feature.NewUndefinedCriterion(income), testColumnName)
	require.NoError(t, err)
	assert.Empty(t, fcs)
}

func TestNewFeatureCriteriaWithFailingColumnName(t *testing.T) {
	income := feature.NewContinuousFeature("household_income")
	failing := func(name string) (string, error) {
		return "", fmt.Errorf("no column for %s", name)
	}
	_, err := NewFeatureCriteria(feature.NewContinuousCriterion(income, 0.0, 1.0), failing)
	assert.Error(t, err)
}
