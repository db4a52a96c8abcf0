package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/internal/config"
	"github.com/matzehuels/gitnetwork/internal/server"
	"github.com/matzehuels/gitnetwork/pkg/store"
)

// serveCommand creates the serve command, which exposes layouts over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		root      string
		noCache   bool
		storeMode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve commit networks over HTTP",
		Long: `Serve commit networks over HTTP.

Repositories are opened relative to --root (default: current directory).

Endpoints:
  GET /api/network?repo=&ref=&target=&format=   lay out and render
  GET /api/network/{id}?format=                 render a stored layout
  GET /api/runs?limit=                          list stored layouts
  GET /api/version
  GET /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, root, noCache, storeMode)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, then "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&root, "root", "", "directory repositories are opened under")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&storeMode, "store", "config", "layout store: config, memory, none")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, root string, noCache bool, storeMode string) error {
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	if root == "" {
		root = c.Config.Server.Root
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	switch storeMode {
	case "config", "memory", "none":
	default:
		return fmt.Errorf("unknown store %q (must be one of: config, memory, none)", storeMode)
	}

	runner, err := c.newRunner(ctx, noCache, storeMode == "config")
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	if storeMode == "memory" {
		runner.Store = store.NewMemory()
	}

	srv := server.New(runner, runner.Store, root, c.Logger)
	srv.MaxCommits = c.Config.Layout.MaxCommits
	srv.PrimaryRef = c.Config.Layout.PrimaryRef

	printInfo("Serving %s on http://%s", root, addr)
	prog := newProgress(c.Logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	prog.done("Server stopped")
	return nil
}
