// Command elemental is the element-combination sandbox.
//
// Usage:
//
//	elemental play                   # interactive canvas in the terminal
//	elemental combine Earth Water    # one combination, no canvas
//	elemental serve --recipes r.yaml # HTTP oracle
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/elemental/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "elemental:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
