package main

import (
	"fmt"
	"os"

	"github.com/mehdighelich1379/Heart-Disease/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
