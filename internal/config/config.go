// Package config loads gitnetwork's settings from a TOML file, a .env file
// and GITNETWORK_* environment variables, in increasing precedence. Command
// line flags override all of them.
//
// The .env file may also carry GITHUB_TOKEN, which authenticates
// github.com/owner/repo sources.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/gitnetwork/pkg/cache"
	gnerrors "github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/network"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is the API server listen address.
const DefaultAddr = "127.0.0.1:8080"

// Config is the file format.
type Config struct {
	Layout Layout `toml:"layout"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

type Layout struct {
	MaxCommits int    `toml:"max_commits"`
	PrimaryRef string `toml:"primary_ref"`
}

type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisURL  string   `toml:"redis_url"`
	Prefix    string   `toml:"prefix"` // namespaces keys in a shared Redis
}

type Store struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	Dir      string `toml:"dir"`
}

type Server struct {
	Addr string `toml:"addr"`
	Root string `toml:"root"` // directory the API may open repositories under
}

// Duration decodes TOML strings such as "12h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: Layout{MaxCommits: network.DefaultMaxCommits},
		Cache:  Cache{Backend: BackendFile, TTL: Duration{cache.TTLLayout}},
		Server: Server{Addr: DefaultAddr, Root: "."},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gitnetwork/config.toml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gitnetwork", "config.toml"), nil
}

// Load reads path on top of the defaults. An empty path selects DefaultPath,
// which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	// A .env in the working directory feeds the environment overrides.
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with GITNETWORK_* variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("GITNETWORK_MAX_COMMITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return gnerrors.New(gnerrors.ErrCodeInvalidInput, "GITNETWORK_MAX_COMMITS: %v", err)
		}
		c.Layout.MaxCommits = n
	}
	if v := os.Getenv("GITNETWORK_PRIMARY_REF"); v != "" {
		c.Layout.PrimaryRef = v
	}
	if v := os.Getenv("GITNETWORK_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("GITNETWORK_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("GITNETWORK_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("GITNETWORK_CACHE_PREFIX"); v != "" {
		c.Cache.Prefix = v
	}
	if v := os.Getenv("GITNETWORK_MONGO_URI"); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv("GITNETWORK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if err := gnerrors.ValidateMaxCommits(c.Layout.MaxCommits); err != nil {
		return err
	}
	if c.Layout.PrimaryRef != "" {
		if err := gnerrors.ValidateRef(c.Layout.PrimaryRef); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" && c.Cache.RedisURL == "" {
			return gnerrors.New(gnerrors.ErrCodeInvalidInput, "cache backend redis needs redis_addr or redis_url")
		}
		if c.Cache.RedisURL != "" {
			if err := gnerrors.ValidateURL(c.Cache.RedisURL); err != nil {
				return err
			}
		}
	default:
		return gnerrors.New(gnerrors.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return gnerrors.New(gnerrors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Store.MongoURI != "" {
		if err := gnerrors.ValidateURL(c.Store.MongoURI); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes the configuration as TOML.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
