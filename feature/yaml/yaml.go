/*
Package yaml provides methods to parse feature.Feature specifications,
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/psephology/psephos/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadFeatures takes a slice of bytes with a feature specification in YML and
returns a slice of features parsed from it or an error.
The YML is expected to be an object containing a features property. The value
for this should be an object with a property for each feature with its name
and one of the following:
  - the string value 'continuous' for continuous features
  - a list of valid values for discrete features
  - an object with an 'ordered' property holding the list of levels, in
    order, for ordinal features
*/
func ReadFeatures(md []byte) ([]feature.Feature, error) {
	metadata := struct {
		Features map[string]interface{}
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if metadata.Features == nil {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	features := []feature.Feature{}
	for fn, vs := range metadata.Features {
		switch values := vs.(type) {
		case string:
			if values != "continuous" {
				return nil, fmt.Errorf("invalid feature declaration %q for feature %s", values, fn)
			}
			features = append(features, feature.NewContinuousFeature(fn))
		case []interface{}:
			features = append(features, feature.NewDiscreteFeature(fn, stringValues(values)))
		case []string:
			features = append(features, feature.NewDiscreteFeature(fn, values))
		case map[interface{}]interface{}:
			levels, ok := values["ordered"].([]interface{})
			if !ok {
				return nil, fmt.Errorf("feature %s declares no ordered levels", fn)
			}
			features = append(features, feature.NewOrdinalFeature(fn, stringValues(levels)))
		default:
			return nil, fmt.Errorf("invalid feature declaration of type %T", vs)
		}
	}
	return features, nil
}

/*
ReadFeaturesFromFile takes a filepath string, reads its contents and uses
ReadFeatures to parse it and return a slice of parsed features or an error.
If the file indicated by the filepath cannot be opened for reading an error
will be returned.
*/
func ReadFeaturesFromFile(filepath string) ([]feature.Feature, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	features, err := ReadFeatures(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %v", filepath, err)
	}
	return features, err
}

func stringValues(values []interface{}) []string {
	stringVs := make([]string, 0, len(values))
	for _, v := range values {
		stringVs = append(stringVs, fmt.Sprintf("%v", v))
	}
	return stringVs
}
