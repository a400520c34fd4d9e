package sqldataset

import (
	"context"
	"fmt"
	"math"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
)

/*
Set is a dataset.Dataset to which samples can be added.

Its Write method takes a slice of dataset.Sample and adds them to the
dataset, returning the number of samples written and an error if any
errors occur.

Its Read method returns a channel of dataset.Sample streaming the
samples in the dataset and a channel of error that is closed without
values when the streaming ends successfully.
*/
type Set interface {
	dataset.Dataset
	Write(context.Context, []dataset.Sample) (int, error)
	Read(context.Context) (<-chan dataset.Sample, <-chan error)
}

type dbSet struct {
	db                  Adapter
	features            []feature.Feature
	criteria            []*FeatureCriterion
	featureCriteria     []feature.Criterion
	featureNamesColumns map[string]string
	columnFeatures      map[string]feature.Feature
	tfColumns           []string
	rfColumns           []string
	count               *int
	entropy             *float64
}

/*
Open takes an Adapter to a db backend and a slice of feature.Feature
and returns a Set backed by the given adapter or an error if the
feature names cannot be turned into column names.

This function expects the adapter to have the samples table already
created.
*/
func Open(ctx context.Context, dbAdapter Adapter, features []feature.Feature) (Set, error) {
	ss := &dbSet{db: dbAdapter, features: features}
	err := ss.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	return ss, nil
}

/*
Create takes an Adapter and a slice of feature.Feature and returns a
Set backed by the given adapter or an error.

This function will ensure that the samples table is created on the
database with a column for every given feature.
*/
func Create(ctx context.Context, dbAdapter Adapter, features []feature.Feature) (Set, error) {
	ss := &dbSet{db: dbAdapter, features: features}
	err := ss.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	err = ss.db.CreateSampleTable(ctx, ss.tfColumns, ss.rfColumns)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (ss *dbSet) Count(ctx context.Context) (int, error) {
	if ss.count != nil {
		return *ss.count, nil
	}
	result, err := ss.db.CountSamples(ctx, ss.criteria)
	if err == nil {
		ss.count = &result
	}
	return result, err
}

func (ss *dbSet) Entropy(ctx context.Context, f feature.Feature) (float64, error) {
	if ss.entropy != nil {
		return *ss.entropy, nil
	}
	featureValueCounts, err := ss.CountFeatureValues(ctx, f)
	if err != nil {
		return 0.0, err
	}
	var result, count float64
	for _, c := range featureValueCounts {
		count += float64(c)
	}
	for _, c := range featureValueCounts {
		probValue := float64(c) / count
		result -= probValue * math.Log(probValue)
	}
	ss.entropy = &result
	return result, nil
}

func (ss *dbSet) NumericSummary(ctx context.Context, f feature.Feature) (*dataset.NumericSummary, error) {
	column, err := ss.columnFor(f)
	if err != nil {
		return nil, err
	}
	count, sum, sumOfSquares, err := ss.db.SummarizeSampleRealFeatureValues(ctx, column, ss.criteria)
	if err != nil {
		return nil, err
	}
	summary := &dataset.NumericSummary{Count: count}
	if count > 0 {
		summary.Mean = sum / float64(count)
		summary.SumSquares = sumOfSquares - float64(count)*summary.Mean*summary.Mean
		if summary.SumSquares < 0 {
			summary.SumSquares = 0
		}
	}
	return summary, nil
}

func (ss *dbSet) FeatureValues(ctx context.Context, f feature.Feature) ([]interface{}, error) {
	column, err := ss.columnFor(f)
	if err != nil {
		return nil, err
	}
	var result []interface{}
	if _, ok := f.(*feature.ContinuousFeature); ok {
		values, err := ss.db.ListSampleRealFeatureValues(ctx, column, ss.criteria)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			result = append(result, v)
		}
	} else {
		values, err := ss.db.ListSampleTextFeatureValues(ctx, column, ss.criteria)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			result = append(result, v)
		}
	}
	return result, nil
}

func (ss *dbSet) Samples(ctx context.Context) ([]dataset.Sample, error) {
	rawSamples, err := ss.db.ListSamples(ctx, ss.criteria, ss.tfColumns, ss.rfColumns)
	if err != nil {
		return nil, err
	}
	samples := make([]dataset.Sample, 0, len(rawSamples))
	for _, s := range rawSamples {
		samples = append(samples, &Sample{Values: s, FeatureNamesColumns: ss.featureNamesColumns})
	}
	return samples, nil
}

func (ss *dbSet) SubsetWith(ctx context.Context, fc feature.Criterion) (dataset.Dataset, error) {
	rfc, err := NewFeatureCriteria(fc, ss.db.ColumnName)
	if err != nil {
		return nil, err
	}
	subsetCriteria := make([]*FeatureCriterion, 0, len(ss.criteria)+len(rfc))
	subsetCriteria = append(subsetCriteria, ss.criteria...)
	subsetCriteria = append(subsetCriteria, rfc...)
	subsetFeatureCriteria := make([]feature.Criterion, 0, len(ss.featureCriteria)+1)
	subsetFeatureCriteria = append(subsetFeatureCriteria, ss.featureCriteria...)
	subsetFeatureCriteria = append(subsetFeatureCriteria, fc)
	return &dbSet{
		db:                  ss.db,
		features:            ss.features,
		criteria:            subsetCriteria,
		featureCriteria:     subsetFeatureCriteria,
		featureNamesColumns: ss.featureNamesColumns,
		columnFeatures:      ss.columnFeatures,
		tfColumns:           ss.tfColumns,
		rfColumns:           ss.rfColumns,
	}, nil
}

func (ss *dbSet) CountFeatureValues(ctx context.Context, f feature.Feature) (map[string]int, error) {
	column, err := ss.columnFor(f)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int)
	if _, ok := f.(*feature.ContinuousFeature); ok {
		featureValueCounts, err := ss.db.CountSampleRealFeatureValues(ctx, column, ss.criteria)
		if err != nil {
			return nil, err
		}
		for k, v := range featureValueCounts {
			result[fmt.Sprintf("%v", k)] = v
		}
	} else {
		featureValueCounts, err := ss.db.CountSampleTextFeatureValues(ctx, column, ss.criteria)
		if err != nil {
			return nil, err
		}
		for k, v := range featureValueCounts {
			result[k] = v
		}
	}
	return result, nil
}

func (ss *dbSet) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return ss.featureCriteria, nil
}

func (ss *dbSet) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	rawSamples := make([]map[string]interface{}, 0, len(samples))
	for _, s := range samples {
		rs, err := ss.newRawSample(ctx, s)
		if err != nil {
			return 0, err
		}
		rawSamples = append(rawSamples, rs)
	}
	return ss.db.AddSamples(ctx, rawSamples, ss.tfColumns, ss.rfColumns)
}

func (ss *dbSet) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error)
	go func() {
		err := ss.db.IterateOnSamples(
			ctx,
			ss.criteria,
			ss.tfColumns,
			ss.rfColumns,
			func(n int, rs map[string]interface{}) (bool, error) {
				s := &Sample{Values: rs, FeatureNamesColumns: ss.featureNamesColumns}
				select {
				case <-ctx.Done():
					return false, nil
				case sampleStream <- s:
				}
				return true, nil
			})
		if err != nil {
			go func() {
				errStream <- err
				close(errStream)
			}()
		} else {
			close(errStream)
		}
		close(sampleStream)
	}()
	return sampleStream, errStream
}

func (ss *dbSet) columnFor(f feature.Feature) (string, error) {
	column, ok := ss.featureNamesColumns[f.Name()]
	if !ok {
		return "", fmt.Errorf("unknown feature %s", f.Name())
	}
	return column, nil
}

func (ss *dbSet) newRawSample(ctx context.Context, s dataset.Sample) (map[string]interface{}, error) {
	rs := make(map[string]interface{})
	for _, f := range ss.features {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if v != nil {
			rs[ss.featureNamesColumns[f.Name()]] = v
		}
	}
	return rs, nil
}

func (ss *dbSet) initFeatureColumns() error {
	ss.columnFeatures = make(map[string]feature.Feature)
	ss.featureNamesColumns = make(map[string]string)
	for _, f := range ss.features {
		column, err := ss.db.ColumnName(f.Name())
		if err != nil {
			return fmt.Errorf("invalid feature %s: %v", f.Name(), err)
		}
		of, ok := ss.columnFeatures[column]
		if ok {
			return fmt.Errorf("%s and %s feature names translate to the same column name %s", f.Name(), of.Name(), column)
		}
		ss.columnFeatures[column] = f
		ss.featureNamesColumns[f.Name()] = column
	}
	for _, f := range ss.features {
		if _, ok := f.(*feature.ContinuousFeature); ok {
			ss.rfColumns = append(ss.rfColumns, ss.featureNamesColumns[f.Name()])
		} else {
			ss.tfColumns = append(ss.tfColumns, ss.featureNamesColumns[f.Name()])
		}
	}
	return nil
}
