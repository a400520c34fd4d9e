package sqldataset

import (
	"context"

	"github.com/psephology/psephos/feature"
)

/*
Sample is an implementation of dataset.Sample optimized for samples
belonging to a Set.
*/
type Sample struct {
	/*
		Values is a map of string column names to interface{}.
		Specifically, the value must be
		* missing for an undefined value for any feature the column
		  is representing or
		* a string for the value of a discrete or ordinal feature the
		  column is representing or
		* a float64 for the value of a continuous feature the column
		  is representing
	*/
	Values map[string]interface{}
	/*
		FeatureNamesColumns is a map that translates the name of a
		feature to the column representing it on the database. This
		column is also the string value that acts as key for the
		feature value on the Sample's Values map.
	*/
	FeatureNamesColumns map[string]string
}

/*
ValueFor takes a feature and returns the value for the feature
according to the sample or nil if it is undefined.
*/
func (s *Sample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	c, ok := s.FeatureNamesColumns[f.Name()]
	if !ok {
		return nil, nil
	}
	v, ok := s.Values[c]
	if !ok {
		return nil, nil
	}
	return v, nil
}
