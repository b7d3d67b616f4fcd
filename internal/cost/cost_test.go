package cost

import (
	"math"
	"testing"

	"convoynav/internal/model"
)

func fp(v float64) *float64 { return &v }

func TestSoftPenaltyComponents(t *testing.T) {
	seg := model.Segment{TrafficLevel: 2, RiskLevel: fp(0.3), CivilImpact: "High"}

	// P3: 15 + 0.3*20 + 15*1.0 = 36
	got := SoftPenalty(model.Convoy{PriorityClass: "P3"}, seg)
	if got != 36 {
		t.Fatalf("P3 penalty = %v, want 36", got)
	}
	// P1 scales civil impact by 0.2: 15 + 6 + 3 = 24
	got = SoftPenalty(model.Convoy{PriorityClass: "P1"}, seg)
	if got != 24 {
		t.Fatalf("P1 penalty = %v, want 24", got)
	}
	// Unknown priority class gets P3 treatment.
	got = SoftPenalty(model.Convoy{PriorityClass: "P9"}, seg)
	if got != 36 {
		t.Fatalf("unknown class penalty = %v, want 36", got)
	}
}

func TestSoftPenaltyMedicalClampsAtZero(t *testing.T) {
	seg := model.Segment{TrafficLevel: 1} // penalty 5, discount 10
	got := SoftPenalty(model.Convoy{SpecialFlags: []string{"medical"}}, seg)
	if got != 0 {
		t.Fatalf("penalty = %v, want 0", got)
	}
}

func TestEdgeCostAllowanceFloor(t *testing.T) {
	// priority_score 100 on a clean 30-minute segment: 30 - 8 = 22.
	seg := model.Segment{BaseTimeMin: 30, CivilImpact: "Low"}
	c := model.Convoy{PriorityScore: 100}
	if got := EdgeCost(c, seg); got != 22.0 {
		t.Fatalf("cost = %v, want 22.0", got)
	}
}

func TestEdgeCostNeverBelowFloor(t *testing.T) {
	seg := model.Segment{BaseTimeMin: 1}
	c := model.Convoy{PriorityScore: 100, SpecialFlags: []string{"medical"}}
	if got := EdgeCost(c, seg); got != MinEdgeCost {
		t.Fatalf("cost = %v, want floor %v", got, MinEdgeCost)
	}
}

func TestEdgeCostBlockedIsInfinite(t *testing.T) {
	seg := model.Segment{BaseTimeMin: 5, IsBlocked: true}
	if got := EdgeCost(model.Convoy{}, seg); !math.IsInf(got, 1) {
		t.Fatalf("cost = %v, want +Inf", got)
	}
}

func TestAllowance(t *testing.T) {
	if got := Allowance(model.Convoy{PriorityScore: 50}); got != 4.0 {
		t.Fatalf("allowance = %v, want 4.0", got)
	}
	if got := Allowance(model.Convoy{}); got != 0 {
		t.Fatalf("zero-score allowance = %v, want 0", got)
	}
}

func TestMaxEdgeDiscount(t *testing.T) {
	c := model.Convoy{PriorityScore: 100}
	if got := MaxEdgeDiscount(c); got != 8.0 {
		t.Fatalf("discount = %v, want 8.0", got)
	}
	c.SpecialFlags = []string{"medical"}
	if got := MaxEdgeDiscount(c); got != 18.0 {
		t.Fatalf("medical discount = %v, want 18.0", got)
	}
}
