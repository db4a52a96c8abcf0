// Command gitnetwork lays out the commit network of a git repository.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/internal/cli"
	gnerrors "github.com/matzehuels/gitnetwork/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps err to a process status: 130 for interrupts, 2 for bad
// input, 1 for everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case strings.HasPrefix(string(gnerrors.GetCode(err)), "INVALID_"):
		return 2
	default:
		return 1
	}
}

func execute(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	// The level must be set before config loading logs anything.
	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}
	return root.ExecuteContext(ctx)
}
