package main

import (
	"context"
	"fmt"
	"os"

	psephos "github.com/psephology/psephos"
	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	dataInput     string
	metadataInput string
	baseline      float64
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Test the performance of a tree against a test dataset: a confusion matrix and accuracy for classification trees, a mean squared error for regression trees`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			testingSet, err := openDataset(ctx, config.rootCmdConfig, config.dataInput, features, dataset.New)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			t, err := loadTree(ctx, config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			count, err := testingSet.Count(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting testing set samples: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Testing tree against dataset with %d samples...", count)
			if _, ok := t.Label.(*feature.ContinuousFeature); ok {
				mse, err := psephos.MeanSquaredError(ctx, t, testingSet)
				if err != nil {
					fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
					os.Exit(6)
				}
				fmt.Printf("mean squared error: %f\n", mse)
				if config.baseline > 0 {
					fmt.Printf("error reduction over baseline %f: %.1f%%\n", config.baseline, 100*psephos.ErrorReduction(config.baseline, mse))
				}
			} else {
				cm, err := psephos.NewConfusionMatrix(ctx, t, testingSet)
				if err != nil {
					fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
					os.Exit(6)
				}
				fmt.Print(cm)
				fmt.Printf("accuracy: %f\n", cm.Accuracy())
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to test against (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or redis:// URL from which the tree to test will be read (required)")
	cmd.PersistentFlags().Float64Var(&(config.baseline), "baseline-mse", 0, "baseline mean squared error to report the regression tree's error reduction against")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
