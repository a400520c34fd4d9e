/*
Package inputsample provides an implementation of dataset.Sample whose
feature values are read interactively from an io.Reader, one line per
value.
*/
package inputsample

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
)

/*
FeatureValueRequester prompts for feature values and
signals back the ones that cannot be accepted.
*/
type FeatureValueRequester interface {
	RequestValueFor(feature.Feature) error
	RejectValueFor(feature.Feature, interface{}) error
}

/*
readSample reads feature values lazily: the first time a
value is asked for, the FeatureValueRequester prompts for
it and lines are consumed from the scanner until one parses
as a valid value for the feature. Read values are kept so
each feature is asked for at most once.
*/
type readSample struct {
	values         map[string]interface{}
	undefinedValue string
	scanner        *bufio.Scanner
	requester      FeatureValueRequester
	features       []feature.Feature
}

/*
New returns a dataset.Sample that reads its feature values from
the given io.Reader, one value per line.

A line equal to the given undefinedValue string stands for an
undefined value. For a feature.ContinuousFeature, lines are read
until one parses as a float64. For a feature.DiscreteFeature or
feature.OrdinalFeature, lines are read until one matches one of
the feature's values or levels. Lines that do not parse are
rejected through the given FeatureValueRequester.

Asking for a feature not in the given slice returns an error.
*/
func New(r io.Reader, features []feature.Feature, requester FeatureValueRequester, undefinedValue string) dataset.Sample {
	return &readSample{
		values:         make(map[string]interface{}),
		undefinedValue: undefinedValue,
		scanner:        bufio.NewScanner(r),
		requester:      requester,
		features:       features,
	}
}

func (rs *readSample) ValueFor(_ context.Context, f feature.Feature) (interface{}, error) {
	if value, ok := rs.values[f.Name()]; ok {
		return value, nil
	}
	known := rs.lookup(f.Name())
	if known == nil {
		return nil, fmt.Errorf("have no information about feature %s, do not know how to read its value", f.Name())
	}
	if err := rs.requester.RequestValueFor(known); err != nil {
		return nil, err
	}
	var parse func(line string) (interface{}, bool)
	switch known := known.(type) {
	case *feature.ContinuousFeature:
		parse = parseFloatLine
	case *feature.DiscreteFeature:
		parse = matchLine(known.AvailableValues())
	case *feature.OrdinalFeature:
		parse = matchLine(known.Levels())
	default:
		return nil, fmt.Errorf("do not know how to read a value for features of type %T", known)
	}
	return rs.readValue(known, parse)
}

func (rs *readSample) lookup(name string) feature.Feature {
	for _, f := range rs.features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (rs *readSample) readValue(f feature.Feature, parse func(string) (interface{}, bool)) (interface{}, error) {
	for rs.scanner.Scan() {
		line := rs.scanner.Text()
		if line == rs.undefinedValue {
			rs.values[f.Name()] = nil
			return nil, nil
		}
		if value, ok := parse(line); ok {
			rs.values[f.Name()] = value
			return value, nil
		}
		if err := rs.requester.RejectValueFor(f, line); err != nil {
			return nil, err
		}
	}
	if err := rs.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("EOF when requesting value")
}

func parseFloatLine(line string) (interface{}, bool) {
	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, false
	}
	return value, true
}

func matchLine(accepted []string) func(string) (interface{}, bool) {
	return func(line string) (interface{}, bool) {
		for _, v := range accepted {
			if v == line {
				return v, true
			}
		}
		return nil, false
	}
}
