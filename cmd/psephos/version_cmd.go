package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in psephos' version
	VersionMajor = 0
	// VersionMinor is the minor number in psephos' version
	VersionMinor = 1
	// VersionPatch is the patch number in psephos' version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of psephos",
		Long:  `All software has versions. This is psephos'`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("psephos v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
