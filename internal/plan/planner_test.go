package plan

import (
	"testing"

	"convoynav/internal/model"
	"convoynav/internal/rules"
)

func TestPlanProducesFullArtifact(t *testing.T) {
	g := mustGraph(t, diamond())
	p := New(g, 0)
	a := p.Plan(model.Convoy{ConvoyID: "CVY-1", Origin: "A", Destination: "D"})
	if a.ConvoyID != "CVY-1" || a.FilterLog.ConvoyID != "CVY-1" {
		t.Fatalf("artifact ids: %+v", a)
	}
	if !a.RouteResult.Success {
		t.Fatalf("route failed: %+v", a.RouteResult)
	}
	if a.FilterLog.AllowedCount != 4 || a.FilterLog.ExcludedCount != 0 {
		t.Fatalf("filter log: %+v", a.FilterLog)
	}
}

func TestPlanFailureKeepsFilterLog(t *testing.T) {
	// Every segment blocked: the artifact still carries the full audit trail
	// next to the no_path result.
	doc := diamond()
	for i := range doc.Segments {
		doc.Segments[i].IsBlocked = true
	}
	g := mustGraph(t, doc)
	a := New(g, 0).Plan(model.Convoy{ConvoyID: "CVY-2", Origin: "A", Destination: "D"})
	if a.RouteResult.Success || a.RouteResult.Reason != model.ReasonNoPath {
		t.Fatalf("got %+v, want no_path", a.RouteResult)
	}
	if a.FilterLog.ExcludedCount != 4 {
		t.Fatalf("filter log: %+v", a.FilterLog)
	}
	for _, ex := range a.FilterLog.ExcludedSegments {
		if ex.RejectionReason != rules.ReasonBlockedSegment {
			t.Fatalf("exclusion reason = %q", ex.RejectionReason)
		}
	}
}

func TestPlanFilterShapesSearch(t *testing.T) {
	// The short leg is too risky for ordinary traffic but opens up for a P1
	// medical convoy via the override. The detour is slow enough that the
	// risky leg wins on cost once it is admissible.
	doc := diamond()
	doc.Segments[0].RiskLevel = fp(0.97) // AB
	doc.Segments[1].RiskLevel = fp(0.97) // BD
	doc.Segments[2].BaseTimeMin = 40     // AC
	doc.Segments[3].BaseTimeMin = 40     // CD
	g := mustGraph(t, doc)
	p := New(g, 0)

	plain := p.Plan(model.Convoy{ConvoyID: "CVY-3", Origin: "A", Destination: "D"})
	if !plain.RouteResult.Success {
		t.Fatalf("plain route failed: %+v", plain.RouteResult)
	}
	if plain.RouteResult.RouteNodes[1] != "C" {
		t.Fatalf("plain route = %v, want via C", plain.RouteResult.RouteNodes)
	}
	if plain.FilterLog.ExcludedCount != 2 {
		t.Fatalf("plain filter log: %+v", plain.FilterLog)
	}

	medical := p.Plan(model.Convoy{
		ConvoyID:      "CVY-4",
		Origin:        "A",
		Destination:   "D",
		PriorityClass: "P1",
		SpecialFlags:  []string{"medical"},
	})
	if !medical.RouteResult.Success {
		t.Fatalf("medical route failed: %+v", medical.RouteResult)
	}
	if medical.RouteResult.RouteNodes[1] != "B" {
		t.Fatalf("medical route = %v, want via B", medical.RouteResult.RouteNodes)
	}
	if medical.FilterLog.ExcludedCount != 0 {
		t.Fatalf("medical filter log: %+v", medical.FilterLog)
	}
}

func TestPlanInvalidEndpoints(t *testing.T) {
	g := mustGraph(t, diamond())
	a := New(g, 0).Plan(model.Convoy{ConvoyID: "CVY-5", Origin: "A", Destination: "Z"})
	if a.RouteResult.Success || a.RouteResult.Reason != model.ReasonInvalidEndpoints {
		t.Fatalf("got %+v, want invalid_origin_or_destination", a.RouteResult)
	}
}

func TestPlanExpansionBudget(t *testing.T) {
	g := mustGraph(t, diamond())
	a := New(g, 1).Plan(model.Convoy{ConvoyID: "CVY-6", Origin: "A", Destination: "D"})
	if a.RouteResult.Success || a.RouteResult.Reason != model.ReasonSearchAborted {
		t.Fatalf("got %+v, want search_aborted", a.RouteResult)
	}
}
