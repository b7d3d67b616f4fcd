package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"convoynav/internal/model"
)

// Memory is the in-process store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	requests   map[string]model.RouteRequest
	order      []string // request ids in creation order
	plans      map[string]model.PlanArtifact
	subs       map[string]model.Subscription
	deliveries map[string]*memDelivery
	queue      []string // delivery ids in enqueue order
}

// memDelivery augments WebhookDelivery with scheduling state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
}

func NewMemory() *Memory {
	return &Memory{
		requests:   map[string]model.RouteRequest{},
		plans:      map[string]model.PlanArtifact{},
		subs:       map[string]model.Subscription{},
		deliveries: map[string]*memDelivery{},
	}
}

// NewRequestID mints an intake id in the operator-facing REQ-XXXXXXXX form.
func NewRequestID() string {
	return "REQ-" + strings.ToUpper(uuid.New().String()[:8])
}

func (m *Memory) CreateRequest(ctx context.Context, req model.RouteRequest) (model.RouteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.RequestID == "" {
		req.RequestID = NewRequestID()
	}
	if _, exists := m.requests[req.RequestID]; exists {
		return model.RouteRequest{}, ErrDuplicate
	}
	if req.CreatedAt == "" {
		req.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.requests[req.RequestID] = req
	m.order = append(m.order, req.RequestID)
	return req, nil
}

func (m *Memory) ListRequests(ctx context.Context) ([]model.RouteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RouteRequest, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.requests[id])
	}
	return out, nil
}

func (m *Memory) GetRequest(ctx context.Context, requestID string) (model.RouteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return model.RouteRequest{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) DeleteRequest(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[requestID]; !ok {
		return ErrNotFound
	}
	delete(m.requests, requestID)
	for i, id := range m.order {
		if id == requestID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) SavePlan(ctx context.Context, artifact model.PlanArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[artifact.ConvoyID] = artifact
	return nil
}

func (m *Memory) GetPlan(ctx context.Context, convoyID string) (model.PlanArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[convoyID]
	if !ok {
		return model.PlanArtifact{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{
		ID:     uuid.New().String(),
		URL:    req.URL,
		Events: req.Events,
		Secret: req.Secret,
	}
	m.subs[sub.ID] = sub
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID:             id,
			SubscriptionID: subscriptionID,
			EventType:      eventType,
			URL:            url,
			Secret:         secret,
			Payload:        payload,
			Status:         "pending",
		},
		NextAttemptAt: time.Now(),
	}
	m.queue = append(m.queue, id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []WebhookDelivery
	for _, id := range m.queue {
		d := m.deliveries[id]
		if d == nil || d.Status != "pending" || d.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, d.WebhookDelivery)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}
