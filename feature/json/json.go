package json

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/psephology/psephos/feature"
)

/*
CriteriaEncodeDecoder is an interface for objects
that allow encoding criteria into slices of
bytes and decoding them back to criteria.
*/
type CriteriaEncodeDecoder interface {

	//Encode receives a feature.Criterion
	//and returns a slice of bytes with the criterion
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(feature.Criterion) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a feature.Criterion decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (feature.Criterion, error)
}

type jsonCriteriaEncodeDecoder []feature.Feature

type jsonCriterion struct {
	Type    string `json:"t"`
	Feature string `json:"f"`
	Value   string `json:"v,omitempty"`
	A       string `json:"a,omitempty"`
	B       string `json:"b,omitempty"`
	Lo      *int   `json:"lo,omitempty"`
	Hi      *int   `json:"hi,omitempty"`
}

// NewCriteriaEncodeDecoder takes a slice of feature.Feature and returns a
// CriteriaEncodeDecoder that marshals and unmarshals criteria into/from
// slices of bytes as JSON.
// Criteria are encoded as a JSON object with an "f" property set to the name
// of the feature of the criterion and a "t" property that can be one of
// "continuous", "discrete", "exclusion", "ordinal" or "undefined":
//   - continuous criteria have "a" and "b" properties defining the start and
//     end of the interval for the feature
//   - discrete and exclusion criteria have a "v" property defining the
//     specific value the feature must take or may not take
//   - ordinal criteria have "lo" and "hi" properties defining the half-open
//     range of level positions for the feature
//   - undefined criteria have no additional properties
func NewCriteriaEncodeDecoder(features []feature.Feature) CriteriaEncodeDecoder {
	return jsonCriteriaEncodeDecoder(features)
}

func (jced jsonCriteriaEncodeDecoder) Encode(fc feature.Criterion) ([]byte, error) {
	switch c := fc.(type) {
	case feature.ContinuousCriterion:
		a, b := c.Interval()
		return json.Marshal(&jsonCriterion{
			Type:    "continuous",
			Feature: c.Feature().Name(),
			A:       formatIntervalEnd(a),
			B:       formatIntervalEnd(b),
		})
	case feature.ExclusionCriterion:
		return json.Marshal(&jsonCriterion{
			Type:    "exclusion",
			Feature: c.Feature().Name(),
			Value:   c.ExcludedValue(),
		})
	case feature.DiscreteCriterion:
		return json.Marshal(&jsonCriterion{
			Type:    "discrete",
			Feature: c.Feature().Name(),
			Value:   c.Value(),
		})
	case feature.OrdinalCriterion:
		lo, hi := c.LevelRange()
		return json.Marshal(&jsonCriterion{
			Type:    "ordinal",
			Feature: c.Feature().Name(),
			Lo:      &lo,
			Hi:      &hi,
		})
	case feature.UndefinedCriterion:
		return json.Marshal(&jsonCriterion{
			Type:    "undefined",
			Feature: c.Feature().Name(),
		})
	default:
		return nil, fmt.Errorf("unknown type of feature.Criterion %T", fc)
	}
}

func (jced jsonCriteriaEncodeDecoder) Decode(data []byte) (feature.Criterion, error) {
	jc := &jsonCriterion{}
	err := json.Unmarshal(data, jc)
	if err != nil {
		return nil, err
	}
	return jc.Criterion(jced)
}

func (jc *jsonCriterion) Criterion(features []feature.Feature) (feature.Criterion, error) {
	var f feature.Feature
	for _, feat := range features {
		if feat.Name() == jc.Feature {
			f = feat
			break
		}
	}
	if f == nil {
		return nil, fmt.Errorf("unknown feature '%s'", jc.Feature)
	}
	switch jc.Type {
	case "continuous":
		return jc.toContinuousCriterion(f)
	case "discrete":
		return jc.toDiscreteCriterion(f)
	case "exclusion":
		return jc.toExclusionCriterion(f)
	case "ordinal":
		return jc.toOrdinalCriterion(f)
	case "undefined":
		return feature.NewUndefinedCriterion(f), nil
	}
	return nil, fmt.Errorf("unknown feature criterion type '%s'", jc.Type)
}

func (jc *jsonCriterion) toDiscreteCriterion(f feature.Feature) (feature.Criterion, error) {
	df, ok := f.(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("expected discrete feature for discrete criterion but found %T feature %v", f, f.Name())
	}
	return feature.NewDiscreteCriterion(df, jc.Value), nil
}

func (jc *jsonCriterion) toExclusionCriterion(f feature.Feature) (feature.Criterion, error) {
	df, ok := f.(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("expected discrete feature for exclusion criterion but found %T feature %v", f, f.Name())
	}
	return feature.NewExclusionCriterion(df, jc.Value), nil
}

func (jc *jsonCriterion) toOrdinalCriterion(f feature.Feature) (feature.Criterion, error) {
	of, ok := f.(*feature.OrdinalFeature)
	if !ok {
		return nil, fmt.Errorf("expected ordinal feature for ordinal criterion but found %T feature %v", f, f.Name())
	}
	if jc.Lo == nil || jc.Hi == nil {
		return nil, fmt.Errorf("ordinal criterion on feature %v defines no level range", f.Name())
	}
	return feature.NewOrdinalCriterion(of, *jc.Lo, *jc.Hi), nil
}

func (jc *jsonCriterion) toContinuousCriterion(f feature.Feature) (feature.Criterion, error) {
	cf, ok := f.(*feature.ContinuousFeature)
	if !ok {
		return nil, fmt.Errorf("expected continuous feature for continuous criterion but found %T feature %v", f, f.Name())
	}
	a, err := parseIntervalEnd(jc.A, -1)
	if err != nil {
		return nil, err
	}
	b, err := parseIntervalEnd(jc.B, 1)
	if err != nil {
		return nil, err
	}
	return feature.NewContinuousCriterion(cf, a, b), nil
}

func formatIntervalEnd(v float64) string {
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseIntervalEnd(s string, sign int) (float64, error) {
	switch s {
	case "-Inf":
		return math.Inf(-1), nil
	case "+Inf":
		return math.Inf(1), nil
	case "":
		return math.Inf(sign), nil
	}
	return strconv.ParseFloat(s, 64)
}
