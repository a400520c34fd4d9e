package sqldataset

import (
	"fmt"
	"math"

	"github.com/psephology/psephos/feature"
)

/*
FeatureCriterion represents a feature.Criterion on SQL DB-backed
datasets. It is easily translatable to a condition on an SQL SELECT
statement's WHERE clause on a samples table.
*/
type FeatureCriterion struct {
	/*
		FeatureColumn is the column name for the feature
		the criterion is applying the restriction to.
	*/
	FeatureColumn string
	/*
		Operator is a string representing the comparison against the
		value in the criterion that is applied to samples. It must be
		one of the following: "=", "<>", "<", ">", "<=", ">=" or "IN".
		The semantics are the result from reading the criterion as
		Feature Operator Value.
	*/
	Operator string
	/*
		Value is the value against which a comparison is applied to
		samples. It should be a string for discrete and ordinal
		features and a float64 for continuous features, except for the
		"IN" operator, where it is nil and Values holds the compared
		values instead.
	*/
	Value interface{}
	/*
		Values holds the values compared against with the "IN"
		operator. It is nil for every other operator.
	*/
	Values []interface{}
}

/*
ColumnNameFunc is a function that takes the name of a feature and
returns the column name for it or an error if the name could not be
transformed.
*/
type ColumnNameFunc func(string) (string, error)

/*
NewFeatureCriteria takes a feature.Criterion and a ColumnNameFunc and
returns a slice of FeatureCriterion equivalent to the given
feature.Criterion or an error if the ColumnNameFunc cannot provide a
name for the feature of the criterion.

An undefined feature criterion imposes no conditions on samples and
yields an empty slice and no error.
*/
func NewFeatureCriteria(fc feature.Criterion, cnf ColumnNameFunc) ([]*FeatureCriterion, error) {
	columnName, err := cnf(fc.Feature().Name())
	if err != nil {
		return nil, fmt.Errorf("cannot obtain column name for feature '%s': %v", fc.Feature().Name(), err)
	}
	result := []*FeatureCriterion{}
	switch fc := fc.(type) {
	case feature.ContinuousCriterion:
		a, b := fc.Interval()
		if !math.IsInf(a, 0) {
			result = append(result, &FeatureCriterion{FeatureColumn: columnName, Operator: ">=", Value: a})
		}
		if !math.IsInf(b, 0) {
			result = append(result, &FeatureCriterion{FeatureColumn: columnName, Operator: "<", Value: b})
		}
	case feature.DiscreteCriterion:
		result = append(result, &FeatureCriterion{FeatureColumn: columnName, Operator: "=", Value: fc.Value()})
	case feature.ExclusionCriterion:
		result = append(result, &FeatureCriterion{FeatureColumn: columnName, Operator: "<>", Value: fc.ExcludedValue()})
	case feature.OrdinalCriterion:
		of, ok := fc.Feature().(*feature.OrdinalFeature)
		if !ok {
			return nil, fmt.Errorf("ordinal criterion on non-ordinal feature '%s'", fc.Feature().Name())
		}
		lo, hi := fc.LevelRange()
		levels := of.Levels()
		values := make([]interface{}, 0, hi-lo)
		for i := lo; i < hi && i < len(levels); i++ {
			values = append(values, levels[i])
		}
		result = append(result, &FeatureCriterion{FeatureColumn: columnName, Operator: "IN", Values: values})
	}
	return result, nil
}
