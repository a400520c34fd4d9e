package main

import (
	"context"
	"fmt"
	"os"
	"time"

	psephos "github.com/psephology/psephos"
	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/dataset/csv"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/psephology/psephos/queue"
	"github.com/psephology/psephos/tree"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput           string
	metadataInput       string
	output              string
	labelFeature        string
	minNodeSize         int
	minImpurityDecrease float64
	maxDepth            int
	cpuIntensiveSet     bool
	memoryIntensiveSet  bool
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a dataset",
		Long:  `Grow a classification or regression tree from a dataset to predict a certain feature.`,
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
			trainingSet, err := openDataset(ctx, config.rootCmdConfig, config.dataInput, features, config.datasetGenerator())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			label, predictors, err := labelAndPredictors(features, config.labelFeature)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			count, err := trainingSet.Count(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting training set samples: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Growing tree from a dataset with %d samples and %d features to predict %s ...", count, len(predictors), label.Name())
			t, err := config.grow(ctx, trainingSet, label, predictors, features)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			err = saveTree(ctx, t, config.output, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the generated tree will be written in JSON format, or a redis:// URL to store it on (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.labelFeature), "label-feature", "l", "", "name of the feature the generated tree should predict (required)")
	cmd.PersistentFlags().IntVar(&(config.minNodeSize), "min-node-size", psephos.DefaultGrowthPolicy().MinNodeSize, "minimum number of training samples a node must have to be split further")
	cmd.PersistentFlags().Float64Var(&(config.minImpurityDecrease), "min-impurity-decrease", psephos.DefaultGrowthPolicy().MinImpurityDecrease, "minimum impurity decrease a split must achieve to be applied")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", 0, "depth at which nodes stop being split further, with the root at depth 0 (0 means no limit)")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveSet), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveSet), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.labelFeature == "" {
		return fmt.Errorf("required label-feature flag was not set")
	}
	if gcc.cpuIntensiveSet && gcc.memoryIntensiveSet {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	if gcc.minNodeSize < 1 {
		return fmt.Errorf("min-node-size flag was set to an invalid value: it must be a positive integer")
	}
	if gcc.maxDepth < 0 {
		return fmt.Errorf("max-depth flag was set to an invalid value: it cannot be negative")
	}
	return nil
}

func (gcc *growCmdConfig) datasetGenerator() csv.DatasetGenerator {
	if gcc.memoryIntensiveSet {
		return csv.DatasetGenerator(dataset.NewMemoryIntensive)
	}
	if gcc.cpuIntensiveSet {
		return csv.DatasetGenerator(dataset.NewCPUIntensive)
	}
	return csv.DatasetGenerator(dataset.New)
}

func (gcc *growCmdConfig) growthPolicy() *psephos.GrowthPolicy {
	return &psephos.GrowthPolicy{
		MinNodeSize:         gcc.minNodeSize,
		MinImpurityDecrease: gcc.minImpurityDecrease,
		MaxDepth:            gcc.maxDepth,
	}
}

func (gcc *growCmdConfig) grow(ctx context.Context, trainingSet dataset.Dataset, label feature.Feature, predictors, features []feature.Feature) (*tree.Tree, error) {
	ns, err := treeNodeStore(gcc.output, features)
	if err != nil {
		return nil, err
	}
	g := &psephos.Grower{Label: label, Features: predictors, Policy: gcc.growthPolicy()}
	q := queue.New()
	defer q.Stop(ctx)
	t, err := g.Seed(ctx, trainingSet, q, ns)
	if err != nil {
		return nil, err
	}
	err = g.Work(ctx, t, q, 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	return t, nil
}
