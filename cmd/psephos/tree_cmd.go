package main

import (
	"context"
	"fmt"
	"os"

	psephos "github.com/psephology/psephos"
	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/spf13/cobra"
)

type treeCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
	dataInput     string
}

func treeCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &treeCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show a tree",
		Long:  `Show a tree, and when a training dataset is given, summarize its fit: the features it splits on, its leaves and its training error`,
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
			config.Logf("Features from metadata read")
			t, err := loadTree(ctx, config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			fmt.Println(t)
			if config.dataInput == "" {
				return
			}
			ds, err := openDataset(ctx, config.rootCmdConfig, config.dataInput, features, dataset.New)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			summary, err := psephos.Summarize(ctx, t, ds)
			if err != nil {
				fmt.Fprintf(os.Stderr, "summarizing tree: %v\n", err)
				os.Exit(5)
			}
			fmt.Print(summary)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features used on the tree (required)")
	cmd.Flags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or redis:// URL from which the tree to show will be read (required)")
	cmd.Flags().StringVarP(&(config.dataInput), "input", "i", "", "path or connection URL of the tree's training dataset, to summarize the fit (optional)")
	return cmd
}

func (tcc *treeCmdConfig) Validate() error {
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
