package main

import (
	"fmt"
	"os"

	"github.com/zhangyu1818/lighthouse-ci/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the lighthouse-ci command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
