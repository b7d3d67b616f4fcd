// Package api implements HTTP handlers and helpers for the convoy planning
// service.
package api

import (
	"os"
	"strconv"
	"strings"

	"convoynav/internal/graph"
	"convoynav/internal/plan"
	"convoynav/internal/priority"
	"convoynav/internal/store"
	"convoynav/internal/webhooks"
)

type Server struct {
	Store    store.Store
	Planner  *plan.Planner
	Priority *priority.Engine
	Pub      *webhooks.Publisher
	Broker   EventBroker
}

// NewServer wires a Server around a validated graph. If DATABASE_URL is
// unset, uses the in-memory store; if REDIS_URL is set, plan events go over
// Redis pub/sub instead of the in-process broker. The priority config is
// read once here and never re-read.
func NewServer(g *graph.Graph) (*Server, error) {
	var s store.Store
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		s = sp
	}

	cfg, err := priority.LoadConfig(os.Getenv("PRIORITY_CONFIG"))
	if err != nil {
		return nil, err
	}

	maxExpansions := 0
	if v := os.Getenv("SEARCH_MAX_EXPANSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxExpansions = n
		}
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Store:    s,
		Planner:  plan.New(g, maxExpansions),
		Priority: priority.NewEngine(cfg),
		Pub:      webhooks.NewPublisher(s),
		Broker:   broker,
	}, nil
}

// NewWebhookWorker creates the background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}
