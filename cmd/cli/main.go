package main

import (
	"os"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
