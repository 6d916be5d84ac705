package main

import (
	"os"

	"github.com/soundprediction/rembed/cmd/rembed"
)

func main() {
	if err := rembed.Execute(); err != nil {
		os.Exit(1)
	}
}
