package pipeline

import (
	"context"
	"encoding/json"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gitnetwork/pkg/cache"
	"github.com/matzehuels/gitnetwork/pkg/network"
	"github.com/matzehuels/gitnetwork/pkg/source"
)

// Snapshot is the state of a history the layout depends on, read before
// any commits are fetched.
type Snapshot struct {
	Source source.Source
	Head   string // commit id of Options.Ref
	Target string // commit id of Options.Target, or empty
	Refs   network.RefMap
}

// Identity keys the snapshot in caches: the source name plus a digest of
// every ref decoration, since moving a branch changes labels and lanes
// without changing the head.
func (s *Snapshot) Identity() string {
	ids := make([]string, 0, len(s.Refs))
	for id := range s.Refs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	pairs := make([][2]string, 0, len(ids))
	for _, id := range ids {
		names := slices.Clone(s.Refs[id])
		slices.Sort(names)
		for _, name := range names {
			pairs = append(pairs, [2]string{id, name})
		}
	}
	data, _ := json.Marshal(pairs)
	return s.Source.Name() + "@" + cache.Hash(data)
}

// OpenSource returns opts.Source, or opens opts.Repo.
func OpenSource(opts Options) (source.Source, error) {
	if opts.Source != nil {
		return opts.Source, nil
	}
	return source.Open(opts.Repo)
}

// Resolve reads the head, target and ref decorations concurrently.
func Resolve(ctx context.Context, src source.Source, opts Options) (*Snapshot, error) {
	snap := &Snapshot{Source: src}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		head, err := src.Resolve(gctx, opts.Ref)
		snap.Head = head
		return err
	})
	if opts.Target != "" {
		g.Go(func() error {
			target, err := src.Resolve(gctx, opts.Target)
			snap.Target = target
			return err
		})
	}
	g.Go(func() error {
		refs, err := src.Refs(gctx)
		snap.Refs = refs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// FetchWindow pages through history until the window around the snapshot's
// target is complete.
func FetchWindow(ctx context.Context, snap *Snapshot, opts Options) ([]network.Commit, error) {
	pager := snap.Source.Pager(opts.Ref, DefaultPageSize)
	return network.SelectWindowFrom(ctx, pager, snap.Target, opts.MaxCommits)
}
