package main

import (
	"os"

	"github.com/HunterLewis000/newspaper-app/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
