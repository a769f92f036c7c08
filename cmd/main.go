package main

import (
	"context"
	"os"

	"github.com/spf13/afero"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	opts := &options{fs: afero.NewOsFs()}
	defer opts.closeLogger()

	if err := newRootCommand(opts).ExecuteContext(context.Background()); err != nil {
		opts.closeLogger()
		os.Exit(1)
	}
}
