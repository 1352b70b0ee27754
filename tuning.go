package sylph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tuning holds the detection parameters that are safe to adjust per
// application. The zero value is not usable; start from DefaultTuning.
type Tuning struct {
	// AABBExpansion is the margin added around fixture bounds by expanding
	// broad phase strategies. Larger margins mean fewer index updates but
	// more narrow phase tests.
	AABBExpansion float64 `yaml:"aabb_expansion"`
	// InitialCapacity sizes broad phase storage up front.
	InitialCapacity int `yaml:"initial_capacity"`
	// InitialPairCapacity sizes per detection pair buffers.
	InitialPairCapacity int `yaml:"initial_pair_capacity"`
	// OptimizeRatio is the perimeter ratio above which a dynamic tree is
	// considered degraded and worth rebuilding.
	OptimizeRatio float64 `yaml:"optimize_ratio"`
}

// DefaultTuning returns the parameters used when no configuration is
// supplied.
func DefaultTuning() Tuning {
	return Tuning{
		AABBExpansion:       0.2,
		InitialCapacity:     64,
		InitialPairCapacity: 64,
		OptimizeRatio:       1.5,
	}
}

// LoadTuning parses YAML configuration over the defaults, so a file only
// needs the keys it changes.
func LoadTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parsing tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate rejects parameters that would break detection.
func (t Tuning) Validate() error {
	if t.AABBExpansion < 0 {
		return fmt.Errorf("aabb_expansion %v must not be negative", t.AABBExpansion)
	}
	if t.InitialCapacity < 0 || t.InitialPairCapacity < 0 {
		return fmt.Errorf("capacities must not be negative")
	}
	if t.OptimizeRatio <= 0 {
		return fmt.Errorf("optimize_ratio %v must be positive", t.OptimizeRatio)
	}
	return nil
}
