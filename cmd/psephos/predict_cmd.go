package main

import (
	"context"
	"fmt"
	"os"

	"github.com/psephology/psephos/dataset/inputsample"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/psephology/psephos/tree"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput      string
	metadataInput  string
	undefinedValue string
}

type stdoutFeatureValueRequester string

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a value for a sample answering questions",
		Long:  `Use the loaded tree to predict the label feature value for a sample answering a reduced set of questions about its features`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := loadTree(ctx, config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			prediction, err := predict(ctx, t, features, config.undefinedValue)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			if prediction.Numeric() {
				fmt.Printf("Predicted value is %f (from %d samples)\n", prediction.Mean(), prediction.Weight())
			} else {
				fmt.Printf("Predicted values along their probabilities are %v\n", prediction)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features used on the tree (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or redis:// URL from which the tree will be read (required)")
	cmd.PersistentFlags().StringVarP(&(config.undefinedValue), "undefined-value", "u", "?", "value to input to define a sample's value for a feature as undefined")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}

func predict(ctx context.Context, t *tree.Tree, features []feature.Feature, undefinedValue string) (*tree.Prediction, error) {
	sample := inputsample.New(os.Stdin, features, stdoutFeatureValueRequester(undefinedValue), undefinedValue)
	return t.Predict(ctx, sample)
}

func (sfvr stdoutFeatureValueRequester) RequestValueFor(f feature.Feature) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Printf("Please provide the sample's %s:\n(valid values are %v or %s if undefined)\n", f.Name(), f.AvailableValues(), string(sfvr))
	case *feature.OrdinalFeature:
		fmt.Printf("Please provide the sample's %s:\n(valid values are %v in increasing order, or %s if undefined)\n", f.Name(), f.Levels(), string(sfvr))
	case *feature.ContinuousFeature:
		fmt.Printf("Please provide the sample's %s:\n(valid values are real numbers or %s if undefined)\n", f.Name(), string(sfvr))
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}

func (sfvr stdoutFeatureValueRequester) RejectValueFor(f feature.Feature, value interface{}) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Printf("%v is not a valid value for the sample's %s. Please provide one of %v or %s if undefined.\n", value, f.Name(), f.AvailableValues(), string(sfvr))
	case *feature.OrdinalFeature:
		fmt.Printf("%v is not a valid value for the sample's %s. Please provide one of %v or %s if undefined.\n", value, f.Name(), f.Levels(), string(sfvr))
	case *feature.ContinuousFeature:
		fmt.Printf("%v is not a valid value for the sample's %s. Please provide a real number or %s if undefined.\n", value, f.Name(), string(sfvr))
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}
