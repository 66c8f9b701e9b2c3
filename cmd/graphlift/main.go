package main

import (
	"os"

	"github.com/OFFIS-RIT/graphlift/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
