package main

import (
	"os"

	"github.com/weldkit/weld/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
