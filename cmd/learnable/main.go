package main

import (
	"os"

	"github.com/spf13/afero"
)

func main() {
	a := newApp(afero.NewOsFs(), os.Stdin, os.Stdout)
	if err := newRootCommand(a).Execute(); err != nil {
		os.Exit(1)
	}
}
