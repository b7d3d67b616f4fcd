// Package priority scores route requests with a configurable weighted sum.
// The score feeds the cost model's time allowance; the label drives the
// civil-impact scaling and the high-risk override.
package priority

import (
	"fmt"
	"math"
	"os"

	yaml "gopkg.in/yaml.v3"

	"convoynav/internal/model"
)

// Weights blend the urgency, mission, risk-zone, and civil-impact terms.
type Weights struct {
	WU float64 `yaml:"wU"`
	WM float64 `yaml:"wM"`
	WR float64 `yaml:"wR"`
	WC float64 `yaml:"wC"`
}

// Config holds the category tables and weights. It is loaded once at process
// start and passed in; the engine never re-reads files mid-flight.
type Config struct {
	UrgencyMap map[string]float64 `yaml:"urgency_map"`
	MissionMap map[string]float64 `yaml:"mission_map"`
	RiskMap    map[string]float64 `yaml:"risk_map"`
	CivilMap   map[string]float64 `yaml:"civil_map"`
	SpecialMap map[string]float64 `yaml:"special_map"`
	Weights    Weights            `yaml:"weights"`
}

// DefaultConfig returns the built-in tuning tables.
func DefaultConfig() Config {
	return Config{
		UrgencyMap: map[string]float64{"P1": 100, "P2": 70, "P3": 40},
		MissionMap: map[string]float64{
			"Medical":   40,
			"Ammo":      35,
			"Fuel":      30,
			"TroopMove": 25,
			"Routine":   10,
		},
		RiskMap:    map[string]float64{"High": 30, "Medium": 20, "Low": 10},
		CivilMap:   map[string]float64{"High": 30, "Medium": 20, "Low": 10},
		SpecialMap: map[string]float64{"medical": 30, "VIP": 20, "training": -10, "no-night": 0},
		Weights:    Weights{WU: 0.5, WM: 0.2, WR: 0.2, WC: 0.1},
	}
}

// LoadConfig reads a YAML config file. A missing path falls back to the
// defaults; a present but unparseable file is an error, not a silent default.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("priority: read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("priority: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Engine scores requests against one immutable config.
type Engine struct {
	cfg Config
}

// NewEngine wraps a config in a scorer.
func NewEngine(cfg Config) *Engine { return &Engine{cfg: cfg} }

// Score computes the 0-100 priority score and P1/P2/P3 label for a request.
// Unknown categories fall back to the lowest table entry, matching the
// intake contract's lenient handling of free-form inputs.
func (e *Engine) Score(req model.PriorityInput) model.PriorityResult {
	u := lookup(e.cfg.UrgencyMap, req.Urgency, 40)
	m := lookup(e.cfg.MissionMap, req.MissionType, 10)
	r := lookup(e.cfg.RiskMap, req.RiskZone, 10)
	c := lookup(e.cfg.CivilMap, req.CivilImpact, 10)
	s := 0.0
	for _, f := range req.SpecialFlags {
		s += e.cfg.SpecialMap[f]
	}

	w := e.cfg.Weights
	raw := w.WU*u + w.WM*m + w.WR*r - w.WC*c + s
	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	label := "P3"
	switch {
	case score >= 80:
		label = "P1"
	case score >= 50:
		label = "P2"
	}

	return model.PriorityResult{
		RequestID: req.RequestID,
		Score:     score,
		Label:     label,
		Components: model.PriorityComponents{
			U: u, M: m, R: r, C: c, S: s, Raw: raw,
		},
	}
}

func lookup(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}
