package yaml

import (
	"testing"

	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetadata = `
features:
  turnout01:
    - "Yes"
    - "No"
  civic_duty:
    ordered:
      - strongly disagree
      - disagree
      - neither
      - agree
      - strongly agree
  household_income: continuous
`

func TestReadFeatures(t *testing.T) {
	features, err := ReadFeatures([]byte(testMetadata))
	require.NoError(t, err)
	require.Len(t, features, 3)

	byName := make(map[string]feature.Feature)
	for _, f := range features {
		byName[f.Name()] = f
	}

	turnout, ok := byName["turnout01"].(*feature.DiscreteFeature)
	require.True(t, ok)
	assert.Equal(t, []string{"Yes", "No"}, turnout.AvailableValues())

	civic, ok := byName["civic_duty"].(*feature.OrdinalFeature)
	require.True(t, ok)
	assert.Equal(t, []string{
		"strongly disagree", "disagree", "neither", "agree", "strongly agree",
	}, civic.Levels(), "declaration order defines the level order")

	_, ok = byName["household_income"].(*feature.ContinuousFeature)
	assert.True(t, ok)
}

func TestReadFeaturesWithoutFeatureInformation(t *testing.T) {
	_, err := ReadFeatures([]byte("metadata: {}"))
	assert.Error(t, err)
}

func TestReadFeaturesWithInvalidDeclaration(t *testing.T) {
	_, err := ReadFeatures([]byte("features:\n  household_income: numeric\n"))
	assert.Error(t, err)
}

func TestReadFeaturesWithoutOrderedLevels(t *testing.T) {
	_, err := ReadFeatures([]byte("features:\n  civic_duty:\n    levels: [a, b]\n"))
	assert.Error(t, err)
}
