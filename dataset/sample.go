package dataset

import (
	"context"
	"fmt"

	"github.com/psephology/psephos/feature"
)

/*
Sample represents a survey respondent: an item to process or from which to
learn how to process them.

Its ValueFor method returns the value of the sample corresponding to the
feature passed as parameter, or nil if the sample does not define a value
for it.
*/
type Sample interface {
	ValueFor(context.Context, feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature string names to values and returns a sample.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(ctx context.Context, feature feature.Feature) (interface{}, error) {
	return s.featureValues[feature.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
