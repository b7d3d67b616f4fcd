// Package plan contains the planning core: heuristic precomputation, the
// A* search, and the orchestrator that merges filtering and search into one
// plan artifact.
package plan

import (
	"convoynav/internal/graph"
	"convoynav/internal/model"
	"convoynav/internal/rules"
)

// Planner runs the full pipeline for one convoy: rule filter over the full
// graph, heuristic precomputation, search over the filtered graph. The graph
// is shared read-only state; everything derived is per-run and discarded, so
// concurrent Plan calls are safe.
type Planner struct {
	Graph *graph.Graph
	// MaxExpansions bounds the search; 0 disables the budget.
	MaxExpansions int
}

// New returns a Planner over a validated graph.
func New(g *graph.Graph, maxExpansions int) *Planner {
	return &Planner{Graph: g, MaxExpansions: maxExpansions}
}

// Plan produces the merged artifact for one convoy. Search failure is a
// normal outcome: the artifact still carries the complete filter log and a
// route result with success=false and a reason. No retries.
func (p *Planner) Plan(convoy model.Convoy) model.PlanArtifact {
	allowed, filterLog := rules.FilterGraph(convoy, p.Graph.Segments)

	// The estimator works on the unfiltered graph; see Estimator docs.
	est := NewEstimator(p.Graph)
	result := FindRoute(convoy, p.Graph, allowed, est, p.MaxExpansions)

	return model.PlanArtifact{
		ConvoyID:    convoy.ConvoyID,
		FilterLog:   filterLog,
		RouteResult: result,
	}
}
