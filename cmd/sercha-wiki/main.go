// Command sercha-wiki searches a Confluence wiki and summarises pages.
package main

import (
	"os"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
