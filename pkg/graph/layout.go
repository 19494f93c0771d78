package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/planar"
)

// =============================================================================
// Layout - Position Response
// =============================================================================

// Layout is the response body of both layout endpoints.
//
// Positions holds one entry per laid-out node. For layered layouts nodes
// without a valid period are absent, Columns lists the final order of each
// period and Crossings counts crossings between adjacent columns. IsPlanar
// is informational in layered mode: it reports whether the undirected graph
// is planar, independent of the layered result.
type Layout struct {
	IsPlanar  bool                `json:"is_planar" bson:"is_planar"`
	Positions map[string]Position `json:"positions" bson:"positions"`

	// Layered-only
	Mode      string           `json:"mode,omitempty" bson:"mode,omitempty"`
	Columns   map[int][]string `json:"columns,omitempty" bson:"columns,omitempty"`
	Crossings *int             `json:"crossings,omitempty" bson:"crossings,omitempty"`
}

// Position is a node coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// FromLayered builds a response from a layered result.
func FromLayered(res *layered.Result, mode layered.Mode, isPlanar bool) Layout {
	out := Layout{
		IsPlanar:  isPlanar,
		Positions: make(map[string]Position, len(res.Positions)),
		Mode:      mode.String(),
		Columns:   res.Columns.Clone(),
		Crossings: &res.Crossings,
	}
	for id, p := range res.Positions {
		out.Positions[id] = Position{X: p.X, Y: p.Y}
	}
	return out
}

// FromPlanar builds a response from an unconstrained layout.
func FromPlanar(res *planar.Result) Layout {
	out := Layout{
		IsPlanar:  res.IsPlanar,
		Positions: make(map[string]Position, len(res.Positions)),
	}
	for id, p := range res.Positions {
		out.Positions[id] = Position{X: p.X, Y: p.Y}
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Positions == nil {
		return Layout{}, fmt.Errorf("layout must contain positions")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
