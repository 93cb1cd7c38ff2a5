// SPDX-License-Identifier: MIT
// Package: builder
//
// json.go: loader for networkx adjacency documents.
//
// Format (networkx json_graph.adjacency_data, as written by the districting
// tool-chain that serializes dual graphs):
//
//	{
//	  "nodes":     [{"id": "A", "pop": 10, "income": 3.5}, ...],
//	  "adjacency": [[{"id": "B"}, {"id": "C"}], ...]   // adjacency[i] lists neighbors of nodes[i]
//	}
//
// Node IDs may be JSON strings or numbers; numbers are rendered with %v.
// Every node attribute except "id" is kept in GeoUnit.Attrs.
// Geometry is not interpreted.

package builder

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/katalvlaran/redistrict/core"
)

type jsonDocument struct {
	Nodes     []map[string]any   `json:"nodes"`
	Adjacency [][]map[string]any `json:"adjacency"`
}

// ReadJSON decodes an adjacency document from r and builds a Graph, reading
// populations from attribute popAttr.
//
// Errors:
//   - ErrBadInput for undecodable JSON, a node without an id, a missing or
//     non-integral population, or len(adjacency) != len(nodes).
//   - core.ErrData (through Build) for duplicates, unknown neighbors, etc.
//
// Complexity: O(V + E) plus decoding.
func ReadJSON(r io.Reader, popAttr string) (*core.Graph, error) {
	var doc jsonDocument
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("builder: decode: %v: %w", err, ErrBadInput)
	}
	if len(doc.Adjacency) != len(doc.Nodes) {
		return nil, fmt.Errorf("builder: %d nodes but %d adjacency rows: %w",
			len(doc.Nodes), len(doc.Adjacency), ErrBadInput)
	}

	b := core.NewBuilder()
	ids := make([]string, len(doc.Nodes))
	for i, node := range doc.Nodes {
		id, ok := jsonID(node["id"])
		if !ok {
			return nil, fmt.Errorf("builder: node %d has no id: %w", i, ErrBadInput)
		}
		ids[i] = id
		pop, err := jsonPopulation(node[popAttr])
		if err != nil {
			return nil, fmt.Errorf("builder: node %q attribute %q: %v: %w", id, popAttr, err, ErrBadInput)
		}
		attrs := make(map[string]any, len(node))
		for k, v := range node {
			if k == "id" {
				continue
			}
			if n, isNum := v.(json.Number); isNum {
				if f, ferr := n.Float64(); ferr == nil {
					v = f
				}
			}
			attrs[k] = v
		}
		// duplicates are recorded by the builder and surface from Build
		_ = b.AddUnit(id, pop, attrs)
	}
	for i, row := range doc.Adjacency {
		for _, nbr := range row {
			to, ok := jsonID(nbr["id"])
			if !ok {
				return nil, fmt.Errorf("builder: adjacency of %q has an entry without id: %w", ids[i], ErrBadInput)
			}
			b.AddEdge(ids[i], to)
		}
	}

	return b.Build()
}

// LoadJSON opens path and delegates to ReadJSON.
func LoadJSON(path, popAttr string) (*core.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("builder: open %s: %w", path, err)
	}
	defer f.Close()

	return ReadJSON(f, popAttr)
}

func jsonID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}

func jsonPopulation(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("missing or not a number")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("population %v is not integral", f)
	}

	return int64(f), nil
}
