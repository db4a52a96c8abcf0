package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/internal/config"
	"github.com/matzehuels/gitnetwork/pkg/buildinfo"
	"github.com/matzehuels/gitnetwork/pkg/cache"
	"github.com/matzehuels/gitnetwork/pkg/observability"
	"github.com/matzehuels/gitnetwork/pkg/pipeline"
	"github.com/matzehuels/gitnetwork/pkg/store"
	"github.com/matzehuels/gitnetwork/pkg/store/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gitnetwork"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gitnetwork draws git commit networks",
		Long:         `gitnetwork lays out a repository's commit history as a network of lanes, the way hosted repository "network" views do, and renders it as text, SVG or Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetSourceHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/gitnetwork/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The store is only opened
// when withStore is set.
func (c *CLI) newRunner(ctx context.Context, noCache, withStore bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var st store.Store
	if withStore {
		st, err = c.newStore(ctx)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	runner := pipeline.NewRunner(ch, keyer, st, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:  c.Config.Cache.RedisURL,
			Addr: c.Config.Cache.RedisAddr,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// newStore opens MongoDB when configured and the file store otherwise.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if uri := c.Config.Store.MongoURI; uri != "" {
		ms, err := mongo.New(ctx, mongo.Config{URI: uri, Database: c.Config.Store.Database})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(c.Config.Store.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the per-user default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// defaultOutput derives an output path from an input path: a directory
// "repo" becomes "repo.<ext>", a file "x.json" becomes "x.<ext>".
func defaultOutput(input, ext string) string {
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return filepath.Base(abs) + "." + ext
	}
	base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	base = strings.TrimSuffix(base, ".layout")
	return base + "." + ext
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies configuration on top of pipeline defaults.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.MaxCommits == 0 {
		opts.MaxCommits = c.Config.Layout.MaxCommits
	}
	if opts.PrimaryRef == "" {
		opts.PrimaryRef = c.Config.Layout.PrimaryRef
	}
	opts.Logger = c.Logger
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
