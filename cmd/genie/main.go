package main

import (
	"os"

	"github.com/G-Research/genie/cmd/genie/cmd"
	"github.com/G-Research/genie/internal/common/logging"
)

func main() {
	logging.ConfigureCliLogging()
	err := cmd.RootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
