package main

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"convoynav/internal/api"
	"convoynav/internal/graph"
	"convoynav/internal/metrics"
)

func main() {
	graphPath := os.Getenv("GRAPH_PATH")
	if graphPath == "" {
		graphPath = "graph.json"
	}
	g, err := graph.Load(graphPath)
	if err != nil {
		log.Fatalf("load graph %s: %v", graphPath, err)
	}
	log.Printf("graph loaded: %d nodes, %d segments", len(g.Nodes), len(g.Segments))

	srvDeps, err := api.NewServer(g)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	metrics.RegisterDefault()

	limiter := api.NewRateLimiter()

	mux := http.NewServeMux()

	// Planning
	mux.HandleFunc("/v1/plan", limiter.Wrap(srvDeps.PlanHandler))
	mux.HandleFunc("/v1/plans/stream", srvDeps.PlanStreamHandler)
	mux.HandleFunc("/v1/plans/ws", srvDeps.PlanWSHandler)
	mux.HandleFunc("/v1/plans/", srvDeps.PlansHandler)

	// Route requests and priority scoring
	mux.HandleFunc("/v1/requests", srvDeps.RequestsHandler)
	mux.HandleFunc("/v1/requests/", srvDeps.RequestByIDHandler) // includes /plan
	mux.HandleFunc("/v1/priority/score", srvDeps.PriorityScoreHandler)

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

	// Health
	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	// Start webhook worker
	if srvDeps.Pub != nil {
		worker := srvDeps.NewWebhookWorker()
		worker.Start()
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrade take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		status := strconv.Itoa(sw.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
