package pipeline

import (
	"time"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/network"
)

// GenerateLayout lays out a window and attaches the run metadata.
func GenerateLayout(window []network.Commit, snap *Snapshot, opts Options) (graph.Layout, error) {
	g, err := network.Compute(window, snap.Refs, network.Options{
		Target:     snap.Target,
		PrimaryRef: opts.PrimaryRef,
		MaxCommits: opts.MaxCommits,
	})
	if err != nil {
		return graph.Layout{}, err
	}
	if opts.Logger != nil {
		st := g.Stats()
		opts.Logger.Debug("placed chains",
			"chains", st.Chains,
			"edges", st.Edges,
			"lane_search_steps", st.LaneSearchSteps)
	}
	return graph.FromNetwork(g, layoutMeta(snap, opts)), nil
}

func layoutMeta(snap *Snapshot, opts Options) graph.Meta {
	return graph.Meta{
		Source:     snap.Source.Name(),
		Ref:        opts.Ref,
		Head:       snap.Head,
		Target:     snap.Target,
		PrimaryRef: opts.PrimaryRef,
		MaxCommits: opts.MaxCommits,
		CreatedAt:  time.Now().UTC(),
	}
}
