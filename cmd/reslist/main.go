// reslist filters and orders resource lists from snapshots or manifests.
package main

import (
	"os"

	"github.com/hupe1980/reslist/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
