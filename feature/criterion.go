package feature

import (
	"context"
	"fmt"
	"math"
	"strings"
)

/*
Criterion represents a constraint on a feature

Its SatisfiedBy method takes a sample and returns a boolean indicating if
the given value satisfies the feature criterion.

Its Feature method returns the feature on which the criterion is applied.
*/
type Criterion interface {
	Feature() Feature
	SatisfiedBy(ctx context.Context, sample Sample) (bool, error)
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter.
*/
type Sample interface {
	ValueFor(context.Context, Feature) (interface{}, error)
}

/*
ContinuousCriterion represents a constraint on a continuous feature, a
range that delimits which values it may take. The interval can be open on one
end, thus representing -Infinity or +Infinity

Its Interval method returns the start and end of the interval to which the
feature is constrained as a pair of float64 values.
*/
type ContinuousCriterion interface {
	Criterion
	Interval() (float64, float64)
}

/*
DiscreteCriterion represents a constraint on a discrete feature, a
value it may take.

Its Value method returns the value to which the feature is constrained as
a string.
*/
type DiscreteCriterion interface {
	Criterion
	Value() string
}

/*
ExclusionCriterion represents the complement side of a binary split
on a discrete feature: the constraint that the feature takes any of its
values except one.

Its ExcludedValue method returns the value the feature may not take.
*/
type ExclusionCriterion interface {
	Criterion
	ExcludedValue() string
}

/*
OrdinalCriterion represents a constraint on an ordinal feature, a
range of level positions it may occupy. Like ContinuousCriterion
intervals, level ranges are half-open: [lo, hi).

Its LevelRange method returns the start and end position of the range.
*/
type OrdinalCriterion interface {
	Criterion
	LevelRange() (int, int)
}

/*
UndefinedCriterion represents the lack of constraint on a specific feature.
*/
type UndefinedCriterion interface {
	Criterion
	IsUndefinedCriterion() bool
}

type continuousCriterion struct {
	feature *ContinuousFeature
	a, b    float64
}

type discreteCriterion struct {
	feature *DiscreteFeature
	value   string
}

type exclusionCriterion struct {
	feature *DiscreteFeature
	value   string
}

type ordinalCriterion struct {
	feature *OrdinalFeature
	lo, hi  int
}

type undefinedCriterion struct {
	feature Feature
}

/*
NewContinuousCriterion takes a ContinuousFeature feature and a pair of
float64 values indicating the start and the end of an interval and returns a
ContinuousCriterion with the feature and interval. The interval can be
open on any end by providing -Inf and/or +Inf.
*/
func NewContinuousCriterion(feature *ContinuousFeature, a float64, b float64) ContinuousCriterion {
	return &continuousCriterion{feature, a, b}
}

/*
NewDiscreteCriterion takes a DiscreteFeature feature and a value string
and returns a DiscreteCriterion satisfied only by samples whose value
for the feature equals the given value.
*/
func NewDiscreteCriterion(feature *DiscreteFeature, value string) DiscreteCriterion {
	return &discreteCriterion{feature, value}
}

/*
NewExclusionCriterion takes a DiscreteFeature feature and a value string
and returns an ExclusionCriterion satisfied only by samples whose value
for the feature is defined and differs from the given value. It is the
complement of the DiscreteCriterion for the same feature and value.
*/
func NewExclusionCriterion(feature *DiscreteFeature, value string) ExclusionCriterion {
	return &exclusionCriterion{feature, value}
}

/*
NewOrdinalCriterion takes an OrdinalFeature feature and a pair of int
values indicating the start and the end of a half-open range of level
positions and returns an OrdinalCriterion with the feature and range.
*/
func NewOrdinalCriterion(feature *OrdinalFeature, lo, hi int) OrdinalCriterion {
	return &ordinalCriterion{feature, lo, hi}
}

/*
NewUndefinedCriterion takes a Feature and returns a Criterion that
is always satisfied.
*/
func NewUndefinedCriterion(f Feature) UndefinedCriterion {
	return &undefinedCriterion{f}
}

/*
Feature returns the feature to which the constraint applies.
*/
func (cfc *continuousCriterion) Feature() Feature {
	return cfc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if
the sample satisfies the criterion. Specifically, it returns false if the
sample does not define a value for the feature, true if the value, being a
float64, is in the range defined by the criterion; and false otherwise.
*/
func (cfc *continuousCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, cfc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	floatVal, ok := val.(float64)
	if !ok {
		return false, nil
	}
	return (math.IsInf(cfc.a, 0) || cfc.a <= floatVal) && (math.IsInf(cfc.b, 0) || floatVal < cfc.b), nil
}

func (cfc *continuousCriterion) Interval() (float64, float64) {
	return cfc.a, cfc.b
}

func (cfc *continuousCriterion) String() string {
	if math.IsInf(cfc.a, 0) {
		return fmt.Sprintf("%s < %f", cfc.feature.Name(), cfc.b)
	}
	if math.IsInf(cfc.b, 0) {
		return fmt.Sprintf("%f <= %s", cfc.a, cfc.feature.Name())
	}
	return fmt.Sprintf("%f <= %s < %f", cfc.a, cfc.feature.Name(), cfc.b)
}

/*
Feature returns the feature to which the constraint applies.
*/
func (dfc *discreteCriterion) Feature() Feature {
	return dfc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if
the sample satisfies the criterion. Specifically, it returns false if the
sample does not define a value for the feature, true if the value, being a
string, equals the value on the criterion; and false otherwise.
*/
func (dfc *discreteCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, dfc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	stringVal, ok := val.(string)
	if !ok {
		return false, nil
	}
	return dfc.value == stringVal, nil
}

func (dfc *discreteCriterion) Value() string {
	return dfc.value
}

func (dfc *discreteCriterion) String() string {
	return fmt.Sprintf("%s is %s", dfc.feature.Name(), dfc.value)
}

/*
Feature returns the feature to which the constraint applies.
*/
func (efc *exclusionCriterion) Feature() Feature {
	return efc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if
the sample satisfies the criterion. Specifically, it returns false if the
sample does not define a value for the feature, true if the value, being a
string, differs from the excluded value on the criterion; and false otherwise.
*/
func (efc *exclusionCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, efc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	stringVal, ok := val.(string)
	if !ok {
		return false, nil
	}
	return efc.value != stringVal, nil
}

func (efc *exclusionCriterion) ExcludedValue() string {
	return efc.value
}

func (efc *exclusionCriterion) String() string {
	return fmt.Sprintf("%s is not %s", efc.feature.Name(), efc.value)
}

/*
Feature returns the feature to which the constraint applies.
*/
func (ofc *ordinalCriterion) Feature() Feature {
	return ofc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if
the sample satisfies the criterion. Specifically, it returns false if the
sample does not define a value for the feature, true if the value is a level
of the feature whose position falls in the range defined by the criterion;
and false otherwise.
*/
func (ofc *ordinalCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, ofc.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	stringVal, ok := val.(string)
	if !ok {
		return false, nil
	}
	i := ofc.feature.LevelIndex(stringVal)
	if i < 0 {
		return false, nil
	}
	return ofc.lo <= i && i < ofc.hi, nil
}

func (ofc *ordinalCriterion) LevelRange() (int, int) {
	return ofc.lo, ofc.hi
}

func (ofc *ordinalCriterion) String() string {
	levels := ofc.feature.Levels()
	lo, hi := ofc.lo, ofc.hi
	if lo < 0 {
		lo = 0
	}
	if hi > len(levels) {
		hi = len(levels)
	}
	return fmt.Sprintf("%s in [%s]", ofc.feature.Name(), strings.Join(levels[lo:hi], ", "))
}

func (u *undefinedCriterion) Feature() Feature {
	return u.feature
}

func (u *undefinedCriterion) SatisfiedBy(context.Context, Sample) (bool, error) {
	return true, nil
}

func (u *undefinedCriterion) IsUndefinedCriterion() bool {
	return true
}

func (u *undefinedCriterion) String() string {
	return fmt.Sprintf("%s not defined", u.feature.Name())
}
