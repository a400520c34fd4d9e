package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "psephos",
		Short: "psephos is a tool to fit decision trees to survey data",
		Long:  `A tool to grow classification and regression trees from your data, prune them, cross-validate them, evaluate them and use them to make predictions`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress to STDERR")
	rootCmd.AddCommand(
		versionCmd(),
		growCmd(config),
		splitCmd(config),
		pruneCmd(config),
		cvCmd(config),
		testCmd(config),
		predictCmd(config),
		treeCmd(config),
		datasetCmd(config),
	)
	return rootCmd
}
