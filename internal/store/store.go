package store

import (
	"context"
	"errors"
	"time"

	"convoynav/internal/model"
)

// Store is the persistence interface used by the API server: route request
// intake, plan artifacts, webhook subscriptions, and the webhook delivery
// queue. Implementations serialize their own writes; callers never see the
// read-modify-write races of a shared document.
type Store interface {
	// Route requests
	CreateRequest(ctx context.Context, req model.RouteRequest) (model.RouteRequest, error)
	ListRequests(ctx context.Context) ([]model.RouteRequest, error)
	GetRequest(ctx context.Context, requestID string) (model.RouteRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error

	// Plan artifacts
	SavePlan(ctx context.Context, artifact model.PlanArtifact) error
	GetPlan(ctx context.Context, convoyID string) (model.PlanArtifact, error)

	// Webhook subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Webhook delivery queue
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// WebhookDelivery is one queued outbound notification.
type WebhookDelivery struct {
	ID             string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}
