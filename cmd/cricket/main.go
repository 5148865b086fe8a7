package main

import (
	"fmt"
	"os"

	"github.com/go-go-golems/cricket/cmd/cricket/cmds"
)

func main() {
	if err := cmds.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
