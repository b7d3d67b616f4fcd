package plan

import (
	"container/heap"
	"math"

	"convoynav/internal/cost"
	"convoynav/internal/graph"
	"convoynav/internal/model"
)

// Estimator provides the admissible lower bound used to guide the search.
// It is always built from the full, unfiltered graph: filtering only removes
// edges, so a bound valid on the full network stays valid on any filtered
// subset of it.
type Estimator struct {
	g            *graph.Graph
	minTimePerKm float64
	adj          [][]graph.DirectedEdge
}

// NewEstimator precomputes the network-wide minimum time-per-km ratio and
// the full adjacency used by per-convoy bound tables.
func NewEstimator(g *graph.Graph) *Estimator {
	return &Estimator{
		g:            g,
		minTimePerKm: minTimePerKm(g.Segments),
		adj:          g.Adjacency(g.Segments),
	}
}

// minTimePerKm is the most optimistic observed pace. Segments with zero or
// negative distance carry no pace information and are skipped; with no
// qualifying segment at all the ratio defaults to 1.0.
func minTimePerKm(segments []model.Segment) float64 {
	best := math.Inf(1)
	for _, s := range segments {
		if s.DistanceKm > 0 {
			if r := s.BaseTimeMin / s.DistanceKm; r < best {
				best = r
			}
		}
	}
	if math.IsInf(best, 1) {
		return 1.0
	}
	return best
}

// MinTimePerKm exposes the precomputed pace bound.
func (e *Estimator) MinTimePerKm() float64 { return e.minTimePerKm }

// edgeLowerBound is the least the cost model can charge this convoy for seg:
// the pace-derived time floor minus the convoy's worst-case discount, never
// below the global cost floor. The real cost adds base-time slack and soft
// penalties on top, so it can only come out equal or higher.
func (e *Estimator) edgeLowerBound(convoy model.Convoy, seg model.Segment) float64 {
	lb := e.minTimePerKm*seg.DistanceKm - cost.MaxEdgeDiscount(convoy)
	if lb < cost.MinEdgeCost {
		return cost.MinEdgeCost
	}
	return lb
}

// Bound runs one Dijkstra from dest over the lower-bound edge weights and
// returns h[u] for every node: the cheapest any remaining path from u could
// possibly cost this convoy. The discount applies per edge, and so does the
// floor, so summing per-edge lower bounds along the cheapest such path keeps
// the table admissible; it is also consistent, since each h differs from its
// neighbor's by at most one edge bound. Every segment materializes in both
// directions with equal metrics, so distances measured outward from dest
// coincide with distances toward it. Nodes that cannot reach dest stay +Inf.
func (e *Estimator) Bound(convoy model.Convoy, dest int) []float64 {
	h := make([]float64, e.g.NumNodes())
	for i := range h {
		h[i] = math.Inf(1)
	}
	h[dest] = 0
	pq := &nodeQueue{{node: dest, prio: 0}}
	for pq.Len() > 0 {
		it := heap.Pop(pq).(queueItem)
		if it.prio > h[it.node] {
			continue // stale entry
		}
		for _, ed := range e.adj[it.node] {
			if d := it.prio + e.edgeLowerBound(convoy, ed.Seg); d < h[ed.To] {
				h[ed.To] = d
				heap.Push(pq, queueItem{node: ed.To, prio: d})
			}
		}
	}
	return h
}
