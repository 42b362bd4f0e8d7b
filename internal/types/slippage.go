// internal/types/slippage.go
package types

import "math"

// SlippageType selects how the minimum acceptable output is derived.
type SlippageType string

const (
	// SlippageFixed uses a fixed min-amount-out value.
	SlippageFixed SlippageType = "fixed"
	// SlippagePercent uses a percentage of the expected output.
	SlippagePercent SlippageType = "percent"
	// SlippageNone places no meaningful floor on the output.
	SlippageNone SlippageType = "none"
)

// SlippageConfig configures the slippage policy for a trade leg.
type SlippageConfig struct {
	Type SlippageType `mapstructure:"type"`
	// Value meaning depends on Type:
	// - SlippageFixed: the exact min-amount-out in base units
	// - SlippagePercent: allowed slippage percent (1.0 = 1%)
	// - SlippageNone: ignored
	Value float64 `mapstructure:"value"`
}

// CalculateMinAmountOut derives min-amount-out from the expected output
// according to the configured policy.
func CalculateMinAmountOut(expectedAmount float64, config SlippageConfig) uint64 {
	switch config.Type {
	case SlippageFixed:
		return uint64(config.Value)
	case SlippagePercent:
		multiplier := 1.0 - (config.Value / 100.0)
		if multiplier < 0 {
			multiplier = 0
		}
		return uint64(math.Floor(expectedAmount * multiplier))
	case SlippageNone:
		// 1, not 0, so program-level amount validation still passes.
		return 1
	default:
		return 1
	}
}
