package sqldataset

import "context"

/*
Adapter is an interface providing the methods needed to implement a
dataset with an SQL database backend.

Discrete and ordinal feature values are stored as text, continuous
feature values as reals. Every listing and counting method takes the
slice of FeatureCriterion delimiting the dataset and must restrict
its statement to the samples satisfying all of them.
*/
type Adapter interface {
	ColumnName(string) (string, error)

	CreateSampleTable(ctx context.Context, textFeatureColumns, realFeatureColumns []string) error

	AddSamples(ctx context.Context, rawSamples []map[string]interface{}, textFeatureColumns, realFeatureColumns []string) (int, error)
	ListSamples(ctx context.Context, criteria []*FeatureCriterion, textFeatureColumns, realFeatureColumns []string) ([]map[string]interface{}, error)
	IterateOnSamples(ctx context.Context, criteria []*FeatureCriterion, textFeatureColumns, realFeatureColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error
	CountSamples(context.Context, []*FeatureCriterion) (int, error)

	ListSampleTextFeatureValues(context.Context, string, []*FeatureCriterion) ([]string, error)
	ListSampleRealFeatureValues(context.Context, string, []*FeatureCriterion) ([]float64, error)
	CountSampleTextFeatureValues(context.Context, string, []*FeatureCriterion) (map[string]int, error)
	CountSampleRealFeatureValues(context.Context, string, []*FeatureCriterion) (map[float64]int, error)

	// SummarizeSampleRealFeatureValues returns the count, sum and sum
	// of squares of the defined values of a real feature column over
	// the samples satisfying the given criteria.
	SummarizeSampleRealFeatureValues(context.Context, string, []*FeatureCriterion) (int, float64, float64, error)
}
