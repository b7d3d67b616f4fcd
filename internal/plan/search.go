package plan

import (
	"container/heap"
	"math"

	"convoynav/internal/cost"
	"convoynav/internal/graph"
	"convoynav/internal/model"
)

// queueItem is one priority-queue entry. Ties on prio break lexicographically
// by node id so repeated runs always reconstruct the same route.
type queueItem struct {
	node int
	prio float64
	id   string
}

type nodeQueue []queueItem

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].prio != q[j].prio {
		return q[i].prio < q[j].prio
	}
	return q[i].id < q[j].id
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(queueItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// cameEdge records how a node was best reached, for path reconstruction.
type cameEdge struct {
	prev int
	seg  model.Segment
	set  bool
}

// FindRoute runs A* from the convoy's origin to its destination over the
// filtered segment set, with per-edge costs from the cost model and the
// estimator's lower bound as heuristic. maxExpansions caps settled nodes;
// 0 means unlimited. Failures come back inside the result, never as errors.
func FindRoute(convoy model.Convoy, g *graph.Graph, segments []model.Segment, est *Estimator, maxExpansions int) model.RouteResult {
	origin, okO := g.NodeIndex(convoy.Origin)
	dest, okD := g.NodeIndex(convoy.Destination)
	if !okO || !okD {
		return model.RouteResult{
			Success:     false,
			Reason:      model.ReasonInvalidEndpoints,
			Origin:      convoy.Origin,
			Destination: convoy.Destination,
		}
	}

	adj := g.Adjacency(segments)
	h := est.Bound(convoy, dest)

	gScore := make([]float64, g.NumNodes())
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	gScore[origin] = 0
	from := make([]cameEdge, g.NumNodes())

	pq := &nodeQueue{{node: origin, prio: h[origin], id: convoy.Origin}}
	expansions := 0

	for pq.Len() > 0 {
		it := heap.Pop(pq).(queueItem)
		u := it.node
		if it.prio > gScore[u]+h[u] {
			continue // superseded entry
		}
		if u == dest {
			return buildResult(convoy, g, from, origin, dest)
		}
		expansions++
		if maxExpansions > 0 && expansions > maxExpansions {
			return model.RouteResult{
				Success:     false,
				Reason:      model.ReasonSearchAborted,
				Origin:      convoy.Origin,
				Destination: convoy.Destination,
			}
		}
		for _, e := range adj[u] {
			if math.IsInf(h[e.To], 1) {
				continue // cannot reach dest even on the full graph
			}
			w := cost.EdgeCost(convoy, e.Seg)
			if math.IsInf(w, 1) {
				continue
			}
			ng := gScore[u] + w
			if ng < gScore[e.To] {
				gScore[e.To] = ng
				from[e.To] = cameEdge{prev: u, seg: e.Seg, set: true}
				heap.Push(pq, queueItem{
					node: e.To,
					prio: ng + h[e.To],
					id:   g.NodeID(e.To),
				})
			}
		}
	}

	return model.RouteResult{
		Success:     false,
		Reason:      model.ReasonNoPath,
		Origin:      convoy.Origin,
		Destination: convoy.Destination,
	}
}

// buildResult walks the predecessor chain and assembles route metrics.
func buildResult(convoy model.Convoy, g *graph.Graph, from []cameEdge, origin, dest int) model.RouteResult {
	var segs []model.Segment
	for at := dest; at != origin; {
		e := from[at]
		segs = append(segs, e.seg)
		at = e.prev
	}
	// Reverse into travel order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}

	nodes := []string{g.NodeID(origin)}
	routeSegs := make([]model.RouteSegment, 0, len(segs))
	breakdown := make([]model.CostItem, 0, len(segs))
	eta := 0.0
	risk := 0.0
	for _, s := range segs {
		c := cost.EdgeCost(convoy, s)
		eta += c
		risk += s.Risk()
		nodes = append(nodes, s.ToNode)
		routeSegs = append(routeSegs, model.RouteSegment{
			SegmentID:    s.SegmentID,
			From:         s.FromNode,
			To:           s.ToNode,
			BaseTimeMin:  s.BaseTimeMin,
			ComputedCost: c,
			RiskLevel:    s.Risk(),
		})
		breakdown = append(breakdown, model.CostItem{Segment: s.SegmentID, Cost: c, Risk: s.Risk()})
	}

	return model.RouteResult{
		Success:       true,
		ConvoyID:      convoy.ConvoyID,
		Origin:        convoy.Origin,
		Destination:   convoy.Destination,
		RouteNodes:    nodes,
		RouteSegments: routeSegs,
		ETAMinutes:    round2(eta),
		TotalRisk:     round3(risk),
		CostBreakdown: breakdown,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
