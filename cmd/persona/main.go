package main

import (
	"os"

	"github.com/spacesedan/redditpersona/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
