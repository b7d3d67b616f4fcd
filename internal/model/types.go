package model

// Core domain types for convoy route planning.
//
// Numeric limit fields on Convoy and Segment are pointers: a nil field means
// the value was absent from the input document, and any rule comparing it is
// skipped rather than failing. Zero is a real value, not a stand-in for
// "missing".

// Node is a junction in the road network. Attributes beyond the id are
// carried for display only; the planner cares about identity alone.
type Node struct {
	NodeID string  `json:"node_id"`
	Name   string  `json:"name,omitempty"`
	Lat    float64 `json:"lat,omitempty"`
	Lon    float64 `json:"lon,omitempty"`
	Type   string  `json:"type,omitempty"`
}

// Segment is a directed-capable link between two nodes. The graph layer
// materializes each segment as two independent directed edges.
type Segment struct {
	SegmentID            string   `json:"segment_id"`
	FromNode             string   `json:"from_node"`
	ToNode               string   `json:"to_node"`
	DistanceKm           float64  `json:"distance_km"`
	BaseTimeMin          float64  `json:"base_time_min"`
	RiskLevel            *float64 `json:"risk_level,omitempty"`
	TrafficLevel         int      `json:"traffic_level,omitempty"`
	CivilImpact          string   `json:"civil_impact,omitempty"`
	MaxLoadTons          *float64 `json:"max_load_tons,omitempty"`
	MaxHeightM           *float64 `json:"max_height_m,omitempty"`
	MaxWidthM            *float64 `json:"max_width_m,omitempty"`
	AllowedConvoyClasses []string `json:"allowed_convoy_classes,omitempty"`
	IsBlocked            bool     `json:"is_blocked,omitempty"`
	WeatherSensitivity   float64  `json:"weather_sensitivity,omitempty"`
	WeatherBlocked       bool     `json:"weather_blocked,omitempty"`
}

// Risk returns the segment risk level, defaulting to 0 when absent.
func (s Segment) Risk() float64 {
	if s.RiskLevel == nil {
		return 0
	}
	return *s.RiskLevel
}

// GraphDoc is the on-disk/wire shape of a road network.
type GraphDoc struct {
	Nodes    []Node    `json:"nodes"`
	Segments []Segment `json:"segments"`
}

// Convoy is one routing request as the planner sees it. PriorityScore is
// supplied externally (see internal/priority) and only feeds the time
// allowance term of the cost model.
type Convoy struct {
	ConvoyID      string   `json:"convoy_id"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	ConvoyClass   string   `json:"convoy_class,omitempty"`
	WeightTons    *float64 `json:"weight_tons,omitempty"`
	HeightM       *float64 `json:"height_m,omitempty"`
	WidthM        *float64 `json:"width_m,omitempty"`
	PriorityClass string   `json:"priority_class,omitempty"`
	SpecialFlags  []string `json:"special_flags,omitempty"`
	PriorityScore float64  `json:"priority_score,omitempty"`
}

// HasFlag reports whether the convoy carries the given special flag.
func (c Convoy) HasFlag(flag string) bool {
	for _, f := range c.SpecialFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// ExcludedSegment is a filtered-out segment annotated with the rule that
// rejected it, kept for the audit trail.
type ExcludedSegment struct {
	Segment
	RejectionReason string `json:"_rejection_reason"`
}

// FilterLog records the outcome of running the rule filter over a full graph.
type FilterLog struct {
	ConvoyID         string            `json:"convoy_id"`
	AllowedCount     int               `json:"allowed_count"`
	ExcludedCount    int               `json:"excluded_count"`
	ExcludedSegments []ExcludedSegment `json:"excluded_segments"`
}

// RouteSegment is one traversed edge of a computed route.
type RouteSegment struct {
	SegmentID    string  `json:"segment_id"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	BaseTimeMin  float64 `json:"base_time_min"`
	ComputedCost float64 `json:"computed_cost"`
	RiskLevel    float64 `json:"risk_level"`
}

// CostItem is a per-segment entry of the cost breakdown.
type CostItem struct {
	Segment string  `json:"segment"`
	Cost    float64 `json:"cost"`
	Risk    float64 `json:"risk"`
}

// Route failure reasons. Planning failures are data, not Go errors.
const (
	ReasonInvalidEndpoints = "invalid_origin_or_destination"
	ReasonNoPath           = "no_path"
	ReasonSearchAborted    = "search_aborted"
)

// RouteResult is the outcome of a single search. On failure Success is false
// and Reason holds one of the Reason* codes; the route fields stay empty.
type RouteResult struct {
	Success       bool           `json:"success"`
	Reason        string         `json:"reason,omitempty"`
	ConvoyID      string         `json:"convoy_id,omitempty"`
	Origin        string         `json:"origin,omitempty"`
	Destination   string         `json:"destination,omitempty"`
	RouteNodes    []string       `json:"route_nodes,omitempty"`
	RouteSegments []RouteSegment `json:"route_segments,omitempty"`
	ETAMinutes    float64        `json:"eta_minutes,omitempty"`
	TotalRisk     float64        `json:"total_risk,omitempty"`
	CostBreakdown []CostItem     `json:"cost_breakdown,omitempty"`
}

// PlanArtifact merges the filter log and route result for one planning run.
// It is always produced, successful or not, so callers get a complete audit
// trail.
type PlanArtifact struct {
	ConvoyID    string      `json:"convoy_id"`
	FilterLog   FilterLog   `json:"filter_log"`
	RouteResult RouteResult `json:"route_result"`
}

// PlanSummary is the terse rollup surfaced next to the full artifact.
type PlanSummary struct {
	ConvoyID     string   `json:"convoy_id"`
	RouteSuccess bool     `json:"route_success"`
	ETAMinutes   *float64 `json:"eta_minutes"`
	TotalRisk    *float64 `json:"total_risk"`
}

// Summary derives the rollup from an artifact. ETA and risk are nil when the
// route failed.
func (a PlanArtifact) Summary() PlanSummary {
	s := PlanSummary{ConvoyID: a.ConvoyID, RouteSuccess: a.RouteResult.Success}
	if a.RouteResult.Success {
		eta := a.RouteResult.ETAMinutes
		risk := a.RouteResult.TotalRisk
		s.ETAMinutes = &eta
		s.TotalRisk = &risk
	}
	return s
}

// PriorityInput is the request shape of the priority-scoring collaborator.
type PriorityInput struct {
	RequestID    string   `json:"request_id,omitempty"`
	MissionType  string   `json:"mission_type,omitempty"`
	Urgency      string   `json:"urgency,omitempty"`
	RiskZone     string   `json:"risk_zone,omitempty"`
	CivilImpact  string   `json:"civil_impact,omitempty"`
	SpecialFlags []string `json:"special_flags,omitempty"`
}

// PriorityComponents exposes the weighted-sum terms for debugging/audit.
type PriorityComponents struct {
	U   float64 `json:"U"`
	M   float64 `json:"M"`
	R   float64 `json:"R"`
	C   float64 `json:"C"`
	S   float64 `json:"S"`
	Raw float64 `json:"raw"`
}

// PriorityResult is the scorer output: a 0-100 score and a P1/P2/P3 label.
type PriorityResult struct {
	RequestID  string             `json:"request_id,omitempty"`
	Score      int                `json:"score"`
	Label      string             `json:"label"`
	Components PriorityComponents `json:"components"`
}

// RouteRequest is the stored intake record for a convoy movement request.
type RouteRequest struct {
	RequestID     string          `json:"request_id"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	MissionType   string          `json:"mission_type,omitempty"`
	Urgency       string          `json:"urgency,omitempty"`
	ConvoyClass   string          `json:"convoy_class,omitempty"`
	WeightTons    *float64        `json:"weight_tons,omitempty"`
	HeightM       *float64        `json:"height_m,omitempty"`
	WidthM        *float64        `json:"width_m,omitempty"`
	RiskZone      string          `json:"risk_zone,omitempty"`
	CivilImpact   string          `json:"civil_impact,omitempty"`
	EarliestStart string          `json:"earliest_start,omitempty"`
	LatestArrival string          `json:"latest_arrival,omitempty"`
	SpecialFlags  []string        `json:"special_flags,omitempty"`
	RequestedBy   string          `json:"requested_by,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	Priority      *PriorityResult `json:"priority,omitempty"`
}

// PriorityInput projects the scorer's input out of a stored request.
func (r RouteRequest) PriorityInput() PriorityInput {
	return PriorityInput{
		RequestID:    r.RequestID,
		MissionType:  r.MissionType,
		Urgency:      r.Urgency,
		RiskZone:     r.RiskZone,
		CivilImpact:  r.CivilImpact,
		SpecialFlags: r.SpecialFlags,
	}
}

// Convoy builds the planner input for a stored request. The priority score
// must already be computed and attached.
func (r RouteRequest) Convoy() Convoy {
	c := Convoy{
		ConvoyID:     r.RequestID,
		Origin:       r.Origin,
		Destination:  r.Destination,
		ConvoyClass:  r.ConvoyClass,
		WeightTons:   r.WeightTons,
		HeightM:      r.HeightM,
		WidthM:       r.WidthM,
		SpecialFlags: r.SpecialFlags,
	}
	if r.Priority != nil {
		c.PriorityClass = r.Priority.Label
		c.PriorityScore = float64(r.Priority.Score)
	} else {
		c.PriorityClass = r.Urgency
	}
	return c
}

// SubscriptionRequest registers a webhook endpoint for plan events.
type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

// Subscription is a stored webhook subscription.
type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"-"`
}
