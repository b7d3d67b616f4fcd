package graph

import (
	"testing"

	"convoynav/internal/model"
)

func doc() model.GraphDoc {
	return model.GraphDoc{
		Nodes: []model.Node{{NodeID: "A"}, {NodeID: "B"}, {NodeID: "C"}},
		Segments: []model.Segment{
			{SegmentID: "S1", FromNode: "A", ToNode: "B", DistanceKm: 2, BaseTimeMin: 4},
			{SegmentID: "S2", FromNode: "B", ToNode: "C", DistanceKm: 3, BaseTimeMin: 6},
		},
	}
}

func TestNewValidGraph(t *testing.T) {
	g, err := New(doc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d", g.NumNodes())
	}
	i, ok := g.NodeIndex("B")
	if !ok || g.NodeID(i) != "B" {
		t.Fatalf("NodeIndex roundtrip failed: %d %v", i, ok)
	}
	if _, ok := g.NodeIndex("Z"); ok {
		t.Fatalf("unknown node resolved")
	}
}

func TestNewRejectsCorruptGraphs(t *testing.T) {
	d := doc()
	d.Segments = append(d.Segments, model.Segment{SegmentID: "S3", FromNode: "A", ToNode: "Z"})
	if _, err := New(d); err == nil {
		t.Fatalf("unknown segment endpoint accepted")
	}

	d = doc()
	d.Nodes = append(d.Nodes, model.Node{NodeID: "A"})
	if _, err := New(d); err == nil {
		t.Fatalf("duplicate node_id accepted")
	}

	d = doc()
	d.Nodes = append(d.Nodes, model.Node{})
	if _, err := New(d); err == nil {
		t.Fatalf("empty node_id accepted")
	}
}

func TestParse(t *testing.T) {
	g, err := Parse([]byte(`{"nodes":[{"node_id":"A"},{"node_id":"B"}],"segments":[{"segment_id":"S1","from_node":"A","to_node":"B","distance_km":1,"base_time_min":2}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Segments) != 1 {
		t.Fatalf("segments = %d", len(g.Segments))
	}
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatalf("bad JSON accepted")
	}
}

func TestReverse(t *testing.T) {
	s := model.Segment{SegmentID: "S1", FromNode: "A", ToNode: "B", DistanceKm: 2, BaseTimeMin: 4, TrafficLevel: 1}
	r := Reverse(s)
	if r.SegmentID != "S1_rev" || r.FromNode != "B" || r.ToNode != "A" {
		t.Fatalf("reverse = %+v", r)
	}
	if r.DistanceKm != s.DistanceKm || r.BaseTimeMin != s.BaseTimeMin || r.TrafficLevel != s.TrafficLevel {
		t.Fatalf("reverse attributes differ: %+v", r)
	}
	// Mutating the copy must not touch the original.
	r.TrafficLevel = 2
	if s.TrafficLevel != 1 {
		t.Fatalf("reverse shares state with forward")
	}
}

func TestAdjacencyMaterializesBothDirections(t *testing.T) {
	g, err := New(doc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	adj := g.Adjacency(g.Segments)
	a, _ := g.NodeIndex("A")
	b, _ := g.NodeIndex("B")
	c, _ := g.NodeIndex("C")

	if len(adj[a]) != 1 || adj[a][0].To != b || adj[a][0].Seg.SegmentID != "S1" {
		t.Fatalf("adj[A] = %+v", adj[a])
	}
	// B carries the reverse of S1 and the forward of S2, in input order.
	if len(adj[b]) != 2 {
		t.Fatalf("adj[B] = %+v", adj[b])
	}
	if adj[b][0].To != a || adj[b][0].Seg.SegmentID != "S1_rev" {
		t.Fatalf("adj[B][0] = %+v", adj[b][0])
	}
	if adj[b][1].To != c || adj[b][1].Seg.SegmentID != "S2" {
		t.Fatalf("adj[B][1] = %+v", adj[b][1])
	}
	if len(adj[c]) != 1 || adj[c][0].Seg.SegmentID != "S2_rev" {
		t.Fatalf("adj[C] = %+v", adj[c])
	}
}
