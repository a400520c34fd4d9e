package main

import (
	"fmt"
	"os"
)

// Logf writes progress messages to stderr when the
// command runs in verbose mode.
func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	if !rcc.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
