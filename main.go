package main

import (
	"os"

	"github.com/cottand/typealg/cmd"
)

func main() {
	err := cmd.NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
