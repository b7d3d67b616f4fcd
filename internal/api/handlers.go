package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"convoynav/internal/buildinfo"
	"convoynav/internal/metrics"
	"convoynav/internal/model"
	"convoynav/internal/store"
)

// PlanHandler handles POST /v1/plan: convoy JSON in, plan artifact out.
// Planning failures (no path, bad endpoints) are 200s with success=false in
// the route result; only malformed input is an HTTP error.
func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var convoy model.Convoy
	if err := json.NewDecoder(r.Body).Decode(&convoy); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateConvoy(&convoy); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid convoy", err.Error(), r.URL.Path)
		return
	}
	resp := s.runPlan(r.Context(), convoy)
	writeJSON(w, http.StatusOK, resp)
}

// planResponse is the plan artifact plus the terse summary.
type planResponse struct {
	model.PlanArtifact
	Summary model.PlanSummary `json:"summary"`
}

// runPlan executes one planning run with eventing, metrics, and persistence
// around the pure core.
func (s *Server) runPlan(ctx context.Context, convoy model.Convoy) planResponse {
	s.Broker.Publish(convoy.ConvoyID, SSEEvent{Type: "plan.started", Data: map[string]any{
		"convoyId": convoy.ConvoyID, "origin": convoy.Origin, "destination": convoy.Destination,
	}})

	start := time.Now()
	artifact := s.Planner.Plan(convoy)
	metrics.PlanDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if !artifact.RouteResult.Success {
		outcome = artifact.RouteResult.Reason
	}
	metrics.PlanRuns.WithLabelValues(outcome).Inc()
	for _, ex := range artifact.FilterLog.ExcludedSegments {
		metrics.ExcludedSegments.WithLabelValues(ex.RejectionReason).Inc()
	}

	if err := s.Store.SavePlan(ctx, artifact); err != nil {
		// Persistence is best-effort; the caller still gets the artifact.
		log.Printf("save plan %s: %v", convoy.ConvoyID, err)
	}

	summary := artifact.Summary()
	evtType := "plan.completed"
	evtData := map[string]any{"convoyId": convoy.ConvoyID, "success": artifact.RouteResult.Success}
	if artifact.RouteResult.Success {
		evtData["etaMinutes"] = artifact.RouteResult.ETAMinutes
		evtData["totalRisk"] = artifact.RouteResult.TotalRisk
	} else {
		evtType = "plan.failed"
		evtData["reason"] = artifact.RouteResult.Reason
	}
	s.Broker.Publish(convoy.ConvoyID, SSEEvent{Type: evtType, Data: evtData})
	s.Pub.Emit(ctx, evtType, evtData)

	return planResponse{PlanArtifact: artifact, Summary: summary}
}

// RequestsHandler handles POST/GET /v1/requests.
func (s *Server) RequestsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.RouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		normalizeRequest(&req)
		pr := s.Priority.Score(req.PriorityInput())
		req.Priority = &pr
		created, err := s.Store.CreateRequest(r.Context(), req)
		if errors.Is(err, store.ErrDuplicate) {
			writeProblem(w, http.StatusBadRequest, "Duplicate request", "request_id already exists", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create request failed", err.Error(), r.URL.Path)
			return
		}
		// Score again under the minted id so the audit field matches.
		pr = s.Priority.Score(created.PriorityInput())
		created.Priority = &pr
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		items, err := s.Store.ListRequests(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List requests failed", err.Error(), r.URL.Path)
			return
		}
		// Recompute priorities on read so config changes take effect, then
		// order by score descending.
		for i := range items {
			pr := s.Priority.Score(items[i].PriorityInput())
			items[i].Priority = &pr
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Priority.Score > items[j].Priority.Score
		})
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RequestByIDHandler handles GET/DELETE /v1/requests/{id} and
// POST /v1/requests/{id}/plan.
func (s *Server) RequestByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/requests/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing request id", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	if len(parts) > 1 && parts[1] == "plan" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		req, err := s.Store.GetRequest(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Request not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get request failed", err.Error(), r.URL.Path)
			return
		}
		pr := s.Priority.Score(req.PriorityInput())
		req.Priority = &pr
		resp := s.runPlan(r.Context(), req.Convoy())
		writeJSON(w, http.StatusOK, resp)
		return
	}

	switch r.Method {
	case http.MethodGet:
		req, err := s.Store.GetRequest(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Request not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get request failed", err.Error(), r.URL.Path)
			return
		}
		pr := s.Priority.Score(req.PriorityInput())
		req.Priority = &pr
		writeJSON(w, http.StatusOK, req)
	case http.MethodDelete:
		err := s.Store.DeleteRequest(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Request not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Delete request failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PriorityScoreHandler handles POST /v1/priority/score.
func (s *Server) PriorityScoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in model.PriorityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, s.Priority.Score(in))
}

// PlansHandler handles GET /v1/plans/{convoyId}: the last stored artifact.
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	if id == r.URL.Path || id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing convoy id", r.URL.Path)
		return
	}
	a, err := s.Store.GetPlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Plan not found", "", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{PlanArtifact: a, Summary: a.Summary()})
}

// PlanStreamHandler handles GET /v1/plans/stream?convoyId=: SSE stream of
// plan lifecycle events for one convoy.
func (s *Server) PlanStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	convoyID := r.URL.Query().Get("convoyId")
	if convoyID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing convoyId", "", r.URL.Path)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(convoyID)
	defer s.Broker.Unsubscribe(convoyID, ch)

	heartbeat := func() {
		fmt.Fprintf(w, "event: heartbeat\n")
		fmt.Fprintf(w, "data: {\"convoyId\":\"%s\",\"ts\":\"%s\"}\n\n", convoyID, time.Now().Format(time.RFC3339))
		flusher.Flush()
	}
	heartbeat()

	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			heartbeat()
		}
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions.
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events are required", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		subs, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": subs})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}.
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Subscription not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store.
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// normalizeRequest fills intake defaults, mirroring the request contract.
func normalizeRequest(req *model.RouteRequest) {
	if req.MissionType == "" {
		req.MissionType = "Routine"
	}
	if req.Urgency == "" {
		req.Urgency = "P3"
	}
	if req.RiskZone == "" {
		req.RiskZone = "Low"
	}
	if req.CivilImpact == "" {
		req.CivilImpact = "Low"
	}
	if req.SpecialFlags == nil {
		req.SpecialFlags = []string{}
	}
}
