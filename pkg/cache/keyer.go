package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Ref        string `json:"ref"`
	Head       string `json:"head"` // resolved commit id of Ref
	Target     string `json:"target,omitempty"`
	PrimaryRef string `json:"primary_ref,omitempty"`
	MaxCommits int    `json:"max_commits"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Color    bool   `json:"color,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	Graphviz bool   `json:"graphviz,omitempty"`
}

// Keyer produces cache keys. Implementations must be deterministic.
type Keyer interface {
	// LayoutKey keys a layout of the history identified by source.
	LayoutKey(source string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendering of the layout with the given key.
	ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key input into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(source string, opts LayoutKeyOpts) string {
	return hashKey("layout", source, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutKey, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns kind + ":" + Hash of the JSON encoding of parts. Struct
// field order makes the encoding deterministic.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
