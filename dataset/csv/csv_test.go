package csv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeatures = []feature.Feature{
	feature.NewDiscreteFeature("turnout01", []string{"Yes", "No"}),
	feature.NewOrdinalFeature("civic_duty", []string{"disagree", "neither", "agree"}),
	feature.NewContinuousFeature("household_income"),
}

const testCSV = `turnout01,civic_duty,household_income
Yes,agree,42.5
No,disagree,?
?,neither,18.0
`

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	ds, err := ReadDataset(strings.NewReader(testCSV), testFeatures, dataset.New)
	require.NoError(t, err)
	count, err := ds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	v, err := samples[0].ValueFor(ctx, testFeatures[2])
	require.NoError(t, err)
	assert.Equal(t, 42.5, v, "continuous cells are parsed as numbers")
	v, err = samples[1].ValueFor(ctx, testFeatures[2])
	require.NoError(t, err)
	assert.Nil(t, v, "question-mark cells are parsed as undefined values")
	v, err = samples[2].ValueFor(ctx, testFeatures[0])
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReadDatasetWithUnknownValue(t *testing.T) {
	content := "turnout01,civic_duty,household_income\nMaybe,agree,1.0\n"
	_, err := ReadDataset(strings.NewReader(content), testFeatures, dataset.New)
	assert.Error(t, err)
}

func TestReadDatasetWithInvalidNumber(t *testing.T) {
	content := "turnout01,civic_duty,household_income\nYes,agree,lots\n"
	_, err := ReadDataset(strings.NewReader(content), testFeatures, dataset.New)
	assert.Error(t, err)
}

func TestReadDatasetWithUnknownHeaderColumn(t *testing.T) {
	content := "turnout01,civic_duty,salary\nYes,agree,1.0\n"
	_, err := ReadDataset(strings.NewReader(content), testFeatures, dataset.New)
	assert.Error(t, err)
}

func TestReadDatasetBySampleStopsWhenToldTo(t *testing.T) {
	var seen int
	err := ReadDatasetBySample(strings.NewReader(testCSV), testFeatures, func(i int, s dataset.Sample) (bool, error) {
		seen++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestWriterRoundTrip(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testFeatures)
	require.NoError(t, err)
	samples := []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"turnout01": "Yes", "civic_duty": "agree", "household_income": 42.5}),
		dataset.NewSample(map[string]interface{}{"turnout01": "No", "civic_duty": "disagree"}),
	}
	n, err := w.Write(ctx, samples)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Flush())

	ds, err := ReadDataset(&buf, testFeatures, dataset.New)
	require.NoError(t, err)
	read, err := ds.Samples(ctx)
	require.NoError(t, err)
	require.Len(t, read, 2)
	v, err := read[0].ValueFor(ctx, testFeatures[2])
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)
	v, err = read[1].ValueFor(ctx, testFeatures[2])
	require.NoError(t, err)
	assert.Nil(t, v, "undefined values survive a write and read cycle")
}
