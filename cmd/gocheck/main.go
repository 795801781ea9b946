package main

import (
	"os"

	"github.com/computerscienceiscool/gocheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
