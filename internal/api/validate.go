package api

import (
	"fmt"

	"convoynav/internal/model"
)

// validateConvoy rejects requests that are malformed at the transport level.
// Unknown node ids are not an input error; the planner reports them as a
// failed route result instead.
func validateConvoy(c *model.Convoy) error {
	if c.ConvoyID == "" {
		return fmt.Errorf("convoy_id is required")
	}
	if c.Origin == "" || c.Destination == "" {
		return fmt.Errorf("origin and destination are required")
	}
	switch c.PriorityClass {
	case "", "P1", "P2", "P3":
	default:
		return fmt.Errorf("unknown priority_class %q", c.PriorityClass)
	}
	if c.PriorityScore < 0 || c.PriorityScore > 100 {
		return fmt.Errorf("priority_score must be between 0 and 100")
	}
	if c.WeightTons != nil && *c.WeightTons < 0 {
		return fmt.Errorf("weight_tons must be non-negative")
	}
	if c.HeightM != nil && *c.HeightM < 0 {
		return fmt.Errorf("height_m must be non-negative")
	}
	if c.WidthM != nil && *c.WidthM < 0 {
		return fmt.Errorf("width_m must be non-negative")
	}
	return nil
}
