package main

import (
	"os"

	"github.com/argus-ci/argus/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
