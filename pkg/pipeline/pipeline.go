// Package pipeline provides the fetch → layout → render pipeline shared by
// the CLI and the API server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: resolve the ref and target, read ref decorations, then page
//     through history until the window around the target is complete
//  2. Layout: assign lanes with the network engine
//  3. Render: produce text, SVG, DOT or JSON output
//
// Layouts and artifacts are cached by a key derived from the resolved head
// commit, the ref decorations and the layout options, so a new commit or a
// moved branch never produces a stale hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repo:    ".",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitnetwork/pkg/cache"
	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/network"
	"github.com/matzehuels/gitnetwork/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxCommits is the window size.
	DefaultMaxCommits = network.DefaultMaxCommits

	// DefaultFormat is the output format when none is requested.
	DefaultFormat = graph.FormatText

	// DefaultPageSize is how many commits are read from a source per page.
	DefaultPageSize = source.DefaultPageSize
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Repo    string `json:"repo,omitempty"`   // repository directory or history file
	Ref     string `json:"ref,omitempty"`    // history to walk; empty selects the source default
	Target  string `json:"target,omitempty"` // commit id or ref to center the window on
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	PrimaryRef string `json:"primary_ref,omitempty"`
	MaxCommits int    `json:"max_commits,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Color    bool     `json:"color,omitempty"`    // ANSI colors in text output
	Detailed bool     `json:"detailed,omitempty"` // labels in SVG and DOT output
	Graphviz bool     `json:"graphviz,omitempty"` // produce SVG through Graphviz

	// Save stores the layout in the runner's Store.
	Save bool `json:"save,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	Source source.Source `json:"-"` // overrides Repo

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed (or cached) layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// RunID is set when the layout was saved.
	RunID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Commits    int
	Lanes      int
	Chains     int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache; history was not read
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !graph.IsFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(graph.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the history and window options.
func (o *Options) ValidateForFetch() error {
	if o.Source == nil && o.Repo == "" {
		return errors.New(errors.ErrCodeInvalidInput, "repo is required")
	}
	if o.Ref != "" {
		if err := errors.ValidateRef(o.Ref); err != nil {
			return err
		}
	}
	if o.Target != "" {
		if err := errors.ValidateTarget(o.Target); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.ValidateForLayout()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.MaxCommits == 0 {
		o.MaxCommits = DefaultMaxCommits
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.PrimaryRef != "" {
		if err := errors.ValidateRef(o.PrimaryRef); err != nil {
			return err
		}
	}
	if err := errors.ValidateMaxCommits(o.MaxCommits); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
// head and target are the resolved commit ids.
func (o *Options) LayoutKeyOpts(head, target string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Ref:        o.Ref,
		Head:       head,
		Target:     target,
		PrimaryRef: o.PrimaryRef,
		MaxCommits: o.MaxCommits,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case graph.FormatText:
		opts.Color = o.Color
	case graph.FormatSVG:
		opts.Detailed = o.Detailed
		opts.Graphviz = o.Graphviz
	case graph.FormatDOT:
		opts.Detailed = o.Detailed
	}
	return opts
}

// String summarizes the options for logs.
func (o *Options) String() string {
	parts := []string{"repo=" + o.Repo}
	if o.Ref != "" {
		parts = append(parts, "ref="+o.Ref)
	}
	if o.Target != "" {
		parts = append(parts, "target="+o.Target)
	}
	if o.PrimaryRef != "" {
		parts = append(parts, "primary_ref="+o.PrimaryRef)
	}
	parts = append(parts, fmt.Sprintf("max_commits=%d", o.MaxCommits))
	parts = append(parts, "formats="+strings.Join(o.Formats, ","))
	return strings.Join(parts, " ")
}
