package main

import (
	"os"

	azvaultcmd "github.com/azvault/azvault/pkg/azvault/cmd"
)

func main() {
	root := azvaultcmd.NewRootCommand(azvaultcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
