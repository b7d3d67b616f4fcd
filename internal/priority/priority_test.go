package priority

import (
	"os"
	"path/filepath"
	"testing"

	"convoynav/internal/model"
)

func TestScoreMedicalEmergency(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Score(model.PriorityInput{
		RequestID:    "REQ-1",
		MissionType:  "Medical",
		Urgency:      "P1",
		RiskZone:     "High",
		CivilImpact:  "Low",
		SpecialFlags: []string{"medical"},
	})
	// 0.5*100 + 0.2*40 + 0.2*30 - 0.1*10 + 30 = 93
	if res.Score != 93 || res.Label != "P1" {
		t.Fatalf("got score=%d label=%s, want 93/P1", res.Score, res.Label)
	}
	if res.RequestID != "REQ-1" {
		t.Fatalf("request id not echoed: %+v", res)
	}
	if res.Components.U != 100 || res.Components.S != 30 {
		t.Fatalf("components: %+v", res.Components)
	}
}

func TestScoreRoutineLow(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Score(model.PriorityInput{MissionType: "Routine", Urgency: "P3", RiskZone: "Low", CivilImpact: "Low"})
	// 0.5*40 + 0.2*10 + 0.2*10 - 0.1*10 = 23
	if res.Score != 23 || res.Label != "P3" {
		t.Fatalf("got score=%d label=%s, want 23/P3", res.Score, res.Label)
	}
}

func TestScoreLabelBands(t *testing.T) {
	e := NewEngine(DefaultConfig())
	// 0.5*70 + 0.2*40 + 0.2*30 - 0.1*10 + 20 = 68 -> P2
	res := e.Score(model.PriorityInput{MissionType: "Medical", Urgency: "P2", RiskZone: "High", CivilImpact: "Low", SpecialFlags: []string{"VIP"}})
	if res.Score != 68 || res.Label != "P2" {
		t.Fatalf("got score=%d label=%s, want 68/P2", res.Score, res.Label)
	}
}

func TestScoreClampsToRange(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Score(model.PriorityInput{
		MissionType:  "Medical",
		Urgency:      "P1",
		RiskZone:     "High",
		CivilImpact:  "Low",
		SpecialFlags: []string{"medical", "VIP"},
	})
	if res.Score != 100 {
		t.Fatalf("score = %d, want clamp at 100", res.Score)
	}
	if res.Components.Raw <= 100 {
		t.Fatalf("raw should exceed the clamp: %v", res.Components.Raw)
	}

	cfg := DefaultConfig()
	cfg.Weights = Weights{}
	res = NewEngine(cfg).Score(model.PriorityInput{SpecialFlags: []string{"training"}})
	if res.Score != 0 || res.Label != "P3" {
		t.Fatalf("got score=%d label=%s, want clamp at 0/P3", res.Score, res.Label)
	}
}

func TestScoreUnknownCategoriesFallBack(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Score(model.PriorityInput{MissionType: "Parade", Urgency: "P9", RiskZone: "Extreme", CivilImpact: "None", SpecialFlags: []string{"unknown-flag"}})
	// Fallbacks 40/10/10/10, unknown flags contribute nothing: same as
	// Routine/P3/Low/Low.
	if res.Score != 23 {
		t.Fatalf("score = %d, want 23", res.Score)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.UrgencyMap["P1"] != 100 {
		t.Fatalf("defaults not applied: %+v", cfg.UrgencyMap)
	}
	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig nonexistent: %v", err)
	}
	if cfg.Weights.WU != 0.5 {
		t.Fatalf("defaults not applied: %+v", cfg.Weights)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priority.yaml")
	data := []byte("urgency_map:\n  P1: 90\nweights:\n  wU: 1.0\n  wM: 0\n  wR: 0\n  wC: 0\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.UrgencyMap["P1"] != 90 || cfg.Weights.WU != 1.0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Untouched tables keep their defaults.
	if cfg.MissionMap["Medical"] != 40 {
		t.Fatalf("mission map lost defaults: %+v", cfg.MissionMap)
	}
	res := NewEngine(cfg).Score(model.PriorityInput{Urgency: "P1"})
	if res.Score != 90 || res.Label != "P1" {
		t.Fatalf("got score=%d label=%s, want 90/P1", res.Score, res.Label)
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("urgency_map: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("broken config accepted")
	}
}
