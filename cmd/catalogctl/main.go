// Package main is the entry point for the catalogctl command.
package main

import (
	"os"

	"github.com/samvad-hq/catalog-client/cmd/catalogctl/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
