package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/render/dot"
	"github.com/matzehuels/gitnetwork/pkg/render/svg"
	"github.com/matzehuels/gitnetwork/pkg/render/text"
)

// RenderFromLayout generates output artifacts in the requested formats.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format.
func RenderFormat(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	data, err := renderFormat(ctx, l, format, opts)
	if err == nil && opts.Logger != nil {
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	}
	return data, err
}

func renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case graph.FormatText:
		return []byte(text.Render(l, text.Options{Color: opts.Color})), nil
	case graph.FormatSVG:
		if opts.Graphviz {
			return dot.RenderSVG(ctx, dot.ToDOT(l, dot.Options{Detailed: opts.Detailed}))
		}
		return svg.Render(l, svg.Options{Labels: opts.Detailed, Dates: opts.Detailed}), nil
	case graph.FormatDOT:
		return []byte(dot.ToDOT(l, dot.Options{Detailed: opts.Detailed})), nil
	case graph.FormatJSON:
		return graph.MarshalLayout(l)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// RenderFromLayoutData renders output from serialized layout data, such as a
// layout file written by an earlier run.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse layout")
	}
	return RenderFromLayout(ctx, l, opts)
}
