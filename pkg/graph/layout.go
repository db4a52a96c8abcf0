package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayout writes a Layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadLayout decodes and validates a Layout from r.
func ReadLayout(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return UnmarshalLayout(data)
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// Validate checks the structural guarantees renderers rely on: a dense time
// axis matching the timeline, positive lanes, and edges pointing at older
// nodes of the same layout.
func (l *Layout) Validate() error {
	if len(l.Timeline) != len(l.Nodes) {
		return fmt.Errorf("layout has %d nodes but %d timeline entries", len(l.Nodes), len(l.Timeline))
	}
	times := make(map[string]int, len(l.Nodes))
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node at time %d has no id", i)
		}
		if n.Time != i {
			return fmt.Errorf("node %s at position %d has time %d", n.ID, i, n.Time)
		}
		if _, dup := times[n.ID]; dup {
			return fmt.Errorf("duplicate node %s", n.ID)
		}
		if len(n.Lanes) == 0 {
			return fmt.Errorf("node %s has no lane", n.ID)
		}
		for _, lane := range n.Lanes {
			if lane < 1 || lane > l.Width {
				return fmt.Errorf("node %s lane %d outside [1,%d]", n.ID, lane, l.Width)
			}
		}
		times[n.ID] = i
	}
	for i := range l.Nodes {
		n := &l.Nodes[i]
		for _, pl := range n.ParentLanes {
			t, ok := times[pl.ID]
			if !ok {
				return fmt.Errorf("node %s has edge to unknown parent %s", n.ID, pl.ID)
			}
			if t >= n.Time {
				return fmt.Errorf("node %s has edge to newer parent %s", n.ID, pl.ID)
			}
			if pl.Lane < 1 || pl.Lane > l.Width {
				return fmt.Errorf("edge %s→%s lane %d outside [1,%d]", n.ID, pl.ID, pl.Lane, l.Width)
			}
		}
	}
	return nil
}
