// Package graph loads the static road network and owns its adjacency form.
package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"convoynav/internal/model"
)

// Graph holds the full, unfiltered network for one process. Planning runs
// treat it as read-only; every derived structure (filtered segment sets,
// heuristic tables) is built fresh per run.
type Graph struct {
	Nodes    []model.Node
	Segments []model.Segment
	index    map[string]int // node id -> arena index
}

// New validates a graph document and builds the node arena. A segment
// referencing an unknown node id is a data-integrity error: the graph is
// corrupt and no planning should run against it.
func New(doc model.GraphDoc) (*Graph, error) {
	g := &Graph{
		Nodes:    doc.Nodes,
		Segments: doc.Segments,
		index:    make(map[string]int, len(doc.Nodes)),
	}
	for i, n := range doc.Nodes {
		if n.NodeID == "" {
			return nil, fmt.Errorf("graph: node at position %d has empty node_id", i)
		}
		if _, dup := g.index[n.NodeID]; dup {
			return nil, fmt.Errorf("graph: duplicate node_id %q", n.NodeID)
		}
		g.index[n.NodeID] = i
	}
	for _, s := range doc.Segments {
		if _, ok := g.index[s.FromNode]; !ok {
			return nil, fmt.Errorf("graph: segment %q references unknown node %q", s.SegmentID, s.FromNode)
		}
		if _, ok := g.index[s.ToNode]; !ok {
			return nil, fmt.Errorf("graph: segment %q references unknown node %q", s.SegmentID, s.ToNode)
		}
	}
	return g, nil
}

// Parse decodes a graph JSON document and validates it.
func Parse(b []byte) (*Graph, error) {
	var doc model.GraphDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("graph: parse: %w", err)
	}
	return New(doc)
}

// Load reads and parses a graph JSON file.
func Load(path string) (*Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: load %s: %w", path, err)
	}
	return Parse(b)
}

// NumNodes returns the arena size.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// NodeIndex resolves a node id to its arena index.
func (g *Graph) NodeIndex(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// NodeID returns the id at an arena index.
func (g *Graph) NodeID(i int) string { return g.Nodes[i].NodeID }

// DirectedEdge is one traversable arc. Seg is this direction's own copy of
// the segment attributes; an edge and its reverse twin share nothing mutable.
type DirectedEdge struct {
	To  int
	Seg model.Segment
}

// Reverse derives the opposite-direction copy of a segment: endpoints
// swapped, id suffixed, attributes identical.
func Reverse(s model.Segment) model.Segment {
	r := s
	r.SegmentID = s.SegmentID + "_rev"
	r.FromNode, r.ToNode = s.ToNode, s.FromNode
	return r
}

// Adjacency materializes a segment list as directed edge lists over the
// graph's node arena. Each logical segment yields a forward edge and a
// reverse edge, in input order, which fixes the deterministic relaxation
// order the search relies on. Segments referencing unknown nodes are assumed
// impossible here; New rejects them up front.
func (g *Graph) Adjacency(segments []model.Segment) [][]DirectedEdge {
	adj := make([][]DirectedEdge, len(g.Nodes))
	for _, s := range segments {
		from := g.index[s.FromNode]
		to := g.index[s.ToNode]
		adj[from] = append(adj[from], DirectedEdge{To: to, Seg: s})
		rev := Reverse(s)
		adj[to] = append(adj[to], DirectedEdge{To: from, Seg: rev})
	}
	return adj
}
