package feature

import "fmt"

/*
Feature represents a property of a survey respondent that can be observed
*/
type Feature interface {
	Name() string
	Valid(interface{}) (bool, error)
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite unordered set, such as a party identification.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
}

/*
ContinuousFeature represents a property that can be observed and that can take
a numeric value, such as a household income.
*/
type ContinuousFeature struct {
	name string
}

/*
OrdinalFeature represents a property that can only take a value among a finite
set with a meaningful order, such as an education-leaving age category or a
sense-of-civic-duty scale. The order of the levels is the order in which they
were declared.
*/
type OrdinalFeature struct {
	name   string
	levels []string
}

/*
NewDiscreteFeature takes a name string and a slice of available value strings
and returns a discrete feature with the given name and available values.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name, availableValues}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature with
the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

/*
NewOrdinalFeature takes a name string and an ordered slice of level strings
and returns an ordinal feature with the given name and levels.
*/
func NewOrdinalFeature(name string, levels []string) *OrdinalFeature {
	return &OrdinalFeature{name, levels}
}

/*
Name returns a string with the name of the feature
*/
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is included in the available values of the feature, the method
returns true and nil. Otherwise it returns false and an error describing the
reason.
*/
func (df *DiscreteFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("discrete feature %s expects string value, got %T value", df.Name(), value)
	}
	for _, av := range df.availableValues {
		if av == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("discrete feature %s got unknown value %s", df.Name(), vs)
}

/*
AvailableValues returns a string slice with the values available for the feature
*/
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

func (df *DiscreteFeature) String() string {
	return df.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is a float64 it returns true and nil, otherwise it returns
false and an error describing the reason.
*/
func (cf *ContinuousFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	_, ok := value.(float64)
	if !ok {
		return false, fmt.Errorf("continuous feature %s expects float64 value, got %T value", cf.Name(), value)
	}
	return true, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

/*
Name returns a string with the name of the feature
*/
func (of *OrdinalFeature) Name() string {
	return of.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is one of the declared levels of the feature it returns true
and nil, otherwise it returns false and an error describing the reason.
*/
func (of *OrdinalFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("ordinal feature %s expects string value, got %T value", of.Name(), value)
	}
	if of.LevelIndex(vs) < 0 {
		return false, fmt.Errorf("ordinal feature %s got unknown level %s", of.Name(), vs)
	}
	return true, nil
}

/*
Levels returns a string slice with the levels of the feature in order
*/
func (of *OrdinalFeature) Levels() []string {
	return of.levels
}

/*
LevelIndex takes a level string and returns its position in the order of
the feature's levels, or -1 if the string is not a level of the feature.
*/
func (of *OrdinalFeature) LevelIndex(level string) int {
	for i, l := range of.levels {
		if l == level {
			return i
		}
	}
	return -1
}

func (of *OrdinalFeature) String() string {
	return of.name
}
