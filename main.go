package main

import (
	"fmt"
	"os"

	"github.com/ca-srg/goodreader/cmd"
	"github.com/ca-srg/goodreader/internal/goodreads"
)

func main() {
	err := cmd.Execute()
	if err != nil && !goodreads.IsEmptyResult(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cmd.ExitCode(err))
}
