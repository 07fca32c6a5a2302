package main

import (
	"os"

	"github.com/couchcryptid/city-explorer-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
