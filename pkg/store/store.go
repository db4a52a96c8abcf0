// Package store persists computed layouts so they can be fetched again by
// run id.
//
// Implementations:
//   - [Memory]: process-local storage for tests and the API server default
//   - [FileStore]: JSON files for the CLI (--save)
//   - mongo.Store: MongoDB for shared deployments
//
// Save assigns a fresh run id when the layout has none and stamps the
// creation time:
//
//	id, err := st.Save(ctx, &layout)
//	l, err := st.Load(ctx, id)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/graph"
)

// Store is the interface for layout storage backends.
type Store interface {
	// Save stores a layout and returns its run id. The layout's RunID and
	// CreatedAt are filled in when empty.
	Save(ctx context.Context, l *graph.Layout) (string, error)

	// Load returns the layout stored under id. A missing id yields an
	// error with code LAYOUT_NOT_FOUND.
	Load(ctx context.Context, id string) (*graph.Layout, error)

	// List returns the metadata of stored layouts, newest first. A limit
	// of 0 returns everything.
	List(ctx context.Context, limit int) ([]graph.Meta, error)

	// Delete removes a layout. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.NewString()
}

// Prepare fills in the run id and creation time of a layout about to be saved.
func Prepare(l *graph.Layout) {
	if l.RunID == "" {
		l.RunID = NewRunID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
}

// NotFound returns the error reported for a missing run id.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeLayoutNotFound, "layout %s not found", id)
}

// ValidateID rejects ids that are not uuids.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid run id %q", id)
	}
	return nil
}
