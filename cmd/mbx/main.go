package main

import (
	"os"

	"github.com/scbrown/mbx/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
