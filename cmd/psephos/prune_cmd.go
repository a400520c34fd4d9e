package main

import (
	"context"
	"fmt"
	"os"

	psephos "github.com/psephology/psephos"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/spf13/cobra"
)

type pruneCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
	output        string
	leaves        int
	showSizes     bool
}

func pruneCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &pruneCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune a tree to a number of leaves",
		Long:  `Prune a fully-grown tree to the requested number of terminal nodes, collapsing the weakest subtrees on the cost-complexity scale first`,
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
			t, err := loadTree(ctx, config.treeInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if config.showSizes {
				sizes, err := psephos.PruneSizes(ctx, t)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(4)
				}
				fmt.Printf("candidate sizes: %v\n", sizes)
				return
			}
			leaves, err := t.LeafCount(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			config.Logf("Pruning tree with %d leaves down to %d leaves...", leaves, config.leaves)
			pruned, err := psephos.Prune(ctx, t, config.leaves)
			if err != nil {
				fmt.Fprintf(os.Stderr, "pruning tree: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			err = saveTree(ctx, pruned, config.output, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or redis:// URL from which the tree to prune will be read (required)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features used on the tree (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the pruned tree will be written in JSON format (defaults to STDOUT)")
	cmd.PersistentFlags().IntVarP(&(config.leaves), "leaves", "l", 0, "number of terminal nodes to prune the tree down to (required unless --sizes is set)")
	cmd.PersistentFlags().BoolVar(&(config.showSizes), "sizes", false, "print the candidate sizes of the tree's cost-complexity pruning sequence instead of pruning")
	return cmd
}

func (pcc *pruneCmdConfig) Validate() error {
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if !pcc.showSizes && pcc.leaves < 1 {
		return fmt.Errorf("leaves flag was set to an invalid value: it must be a positive integer")
	}
	return nil
}
