//go:build postgres_integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"convoynav/internal/model"
)

func TestPostgresRoundtrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	ctx := context.Background()
	if err := p.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	created, err := p.CreateRequest(ctx, model.RouteRequest{Origin: "A", Destination: "B"})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	defer func() { _ = p.DeleteRequest(ctx, created.RequestID) }()
	if _, err := p.CreateRequest(ctx, model.RouteRequest{RequestID: created.RequestID}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate create: %v", err)
	}
	got, err := p.GetRequest(ctx, created.RequestID)
	if err != nil || got.Origin != "A" {
		t.Fatalf("GetRequest: %+v %v", got, err)
	}

	a := model.PlanArtifact{ConvoyID: created.RequestID, RouteResult: model.RouteResult{Success: true, ETAMinutes: 17}}
	if err := p.SavePlan(ctx, a); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	plan, err := p.GetPlan(ctx, created.RequestID)
	if err != nil || plan.RouteResult.ETAMinutes != 17 {
		t.Fatalf("GetPlan: %+v %v", plan, err)
	}
}
