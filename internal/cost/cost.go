// Package cost computes the convoy-specific traversal cost of an allowed
// segment, in minutes-equivalent.
package cost

import (
	"math"

	"convoynav/internal/model"
)

// Tuning constants. These mirror the operational tuning tables and change
// together with them.
const (
	// PriorityAllowanceFactor scales priority_score/100 into a flat time
	// credit per edge.
	PriorityAllowanceFactor = 8.0
	// RiskPenaltyFactor converts risk_level into minutes-equivalent.
	RiskPenaltyFactor = 20.0
	// MedicalDiscount is the flat preference for convoys flagged "medical".
	MedicalDiscount = 10.0
	// MinEdgeCost floors every edge so no allowance combination can produce
	// a zero or negative weight; cost-based search over such a cycle would
	// never terminate.
	MinEdgeCost = 0.1
)

// trafficPenalty maps traffic_level categories to minutes-equivalent.
// Unknown levels cost nothing.
var trafficPenalty = map[int]float64{0: 0, 1: 5, 2: 15}

// civilImpactPenalty is the base penalty before priority scaling.
var civilImpactPenalty = map[string]float64{"Low": 0, "Medium": 5, "High": 15}

// civilImpactScale reduces the civic penalty for higher-priority convoys.
var civilImpactScale = map[string]float64{"P1": 0.2, "P2": 0.6, "P3": 1.0}

// SoftPenalty sums the traffic, risk, and civil-impact penalties for a
// convoy on a segment, minus the medical preference, clamped at zero.
func SoftPenalty(convoy model.Convoy, seg model.Segment) float64 {
	p := trafficPenalty[seg.TrafficLevel]
	p += seg.Risk() * RiskPenaltyFactor

	scale, ok := civilImpactScale[convoy.PriorityClass]
	if !ok {
		scale = 1.0 // P3 treatment for unknown priority classes
	}
	p += civilImpactPenalty[seg.CivilImpact] * scale

	if convoy.HasFlag("medical") {
		p -= MedicalDiscount
	}
	if p < 0 {
		p = 0
	}
	return p
}

// Allowance is the priority-based time credit subtracted from every edge.
func Allowance(convoy model.Convoy) float64 {
	return convoy.PriorityScore / 100.0 * PriorityAllowanceFactor
}

// EdgeCost is the traversal cost of one directed edge for a convoy:
// base time plus soft penalties minus the priority allowance, floored at
// MinEdgeCost. Blocked segments cost +Inf even though the rule filter
// removes them first.
func EdgeCost(convoy model.Convoy, seg model.Segment) float64 {
	if seg.IsBlocked {
		return math.Inf(1)
	}
	c := seg.BaseTimeMin + SoftPenalty(convoy, seg) - Allowance(convoy)
	if c < MinEdgeCost {
		c = MinEdgeCost
	}
	return c
}

// MaxEdgeDiscount bounds how far below base time the cost model can push a
// single edge for this convoy. The heuristic subtracts this slack from its
// distance-derived lower bound so allowance-driven cost deflation cannot
// make the estimate overshoot.
func MaxEdgeDiscount(convoy model.Convoy) float64 {
	d := Allowance(convoy)
	if convoy.HasFlag("medical") {
		d += MedicalDiscount
	}
	return d
}
