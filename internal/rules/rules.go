// Package rules applies the hard admissibility constraints that remove
// segments from a convoy's searchable network.
package rules

import (
	"convoynav/internal/model"
)

// RiskHardLimit is the risk level at or above which a segment is cut off for
// everyone except P1 medical traffic.
const RiskHardLimit = 0.95

// Rejection reasons, in rule order. An empty reason means allowed.
const (
	ReasonBlockedSegment        = "blocked_segment"
	ReasonLoadCapacityExceeded  = "load_capacity_exceeded"
	ReasonHeightClearance       = "height_clearance"
	ReasonWidthClearance        = "width_clearance"
	ReasonConvoyClassNotAllowed = "convoy_class_not_allowed"
	ReasonEmergencyOverride     = "emergency_medical_override"
	ReasonHighRiskCutoff        = "high_risk_cutoff"
	ReasonWeatherBlocked        = "weather_blocked"
)

var defaultConvoyClasses = []string{"Light", "Medium", "Heavy"}

// Evaluate runs the hard rules against one convoy/segment pair in fixed
// order; the first rule that fires decides the outcome. A comparison whose
// numeric field is absent on either side is inapplicable and skipped: the
// filter fails open on missing data, it never errors.
//
// The (true, ReasonEmergencyOverride) outcome is the one case where an
// allowed segment carries a reason: a P1 convoy flagged "medical" passes the
// high-risk cutoff but stays flagged for the audit log.
func Evaluate(convoy model.Convoy, seg model.Segment) (bool, string) {
	// 1. Blocked segment.
	if seg.IsBlocked {
		return false, ReasonBlockedSegment
	}

	// 2. Load capacity.
	if convoy.WeightTons != nil && seg.MaxLoadTons != nil {
		if *convoy.WeightTons > *seg.MaxLoadTons {
			return false, ReasonLoadCapacityExceeded
		}
	}

	// 3-4. Height / width clearance.
	if convoy.HeightM != nil && seg.MaxHeightM != nil {
		if *convoy.HeightM > *seg.MaxHeightM {
			return false, ReasonHeightClearance
		}
	}
	if convoy.WidthM != nil && seg.MaxWidthM != nil {
		if *convoy.WidthM > *seg.MaxWidthM {
			return false, ReasonWidthClearance
		}
	}

	// 5. Convoy class must be in the segment's allowed set.
	allowed := seg.AllowedConvoyClasses
	if allowed == nil {
		allowed = defaultConvoyClasses
	}
	class := convoy.ConvoyClass
	if class == "" {
		class = "Light"
	}
	if !contains(allowed, class) {
		return false, ReasonConvoyClassNotAllowed
	}

	// 6. Extreme risk hard cutoff, with the emergency medical override.
	if seg.RiskLevel != nil && *seg.RiskLevel >= RiskHardLimit {
		if convoy.PriorityClass == "P1" && convoy.HasFlag("medical") {
			return true, ReasonEmergencyOverride
		}
		return false, ReasonHighRiskCutoff
	}

	// 7. Weather-sensitive segment currently blocked by weather.
	if seg.WeatherSensitivity >= 0.5 && seg.WeatherBlocked {
		return false, ReasonWeatherBlocked
	}

	return true, ""
}

// FilterGraph partitions a full segment list into the allowed set and an
// audit log of exclusions. Nodes are never touched; filtering only removes
// segments.
func FilterGraph(convoy model.Convoy, segments []model.Segment) ([]model.Segment, model.FilterLog) {
	allowed := make([]model.Segment, 0, len(segments))
	log := model.FilterLog{
		ConvoyID:         convoy.ConvoyID,
		ExcludedSegments: []model.ExcludedSegment{},
	}
	for _, seg := range segments {
		ok, reason := Evaluate(convoy, seg)
		if ok {
			allowed = append(allowed, seg)
			continue
		}
		log.ExcludedSegments = append(log.ExcludedSegments, model.ExcludedSegment{
			Segment:         seg,
			RejectionReason: reason,
		})
	}
	log.AllowedCount = len(allowed)
	log.ExcludedCount = len(log.ExcludedSegments)
	return allowed, log
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
