package main

import (
	"os"

	"github.com/headhunter-core/server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
