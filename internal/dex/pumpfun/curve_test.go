// internal/dex/pumpfun/curve_test.go
package pumpfun

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reserve values match a freshly initialized bonding curve.
const (
	initialVirtualTokens = 1_073_000_000_000_000
	initialVirtualSol    = 30_000_000_000
)

func TestTokensOutForSol(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}

	// k = sol * tokens; buying 1 SOL moves sol reserves to 31 SOL and
	// tokens to floor(k / newSol); the difference is the payout.
	solIn := uint64(1_000_000_000)
	got := state.TokensOutForSol(solIn)

	newSol := uint64(initialVirtualSol) + solIn
	want := uint64(initialVirtualTokens) - mulDiv(initialVirtualSol, initialVirtualTokens, newSol)
	assert.Equal(t, want, got)
	assert.Greater(t, got, uint64(0))
	assert.Less(t, got, uint64(initialVirtualTokens))
}

func TestTokensOutForSol_ZeroInput(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}
	assert.Zero(t, state.TokensOutForSol(0))
}

func TestTokensOutForSol_EmptyCurve(t *testing.T) {
	assert.Zero(t, (&CurveState{}).TokensOutForSol(1_000_000))
}

func TestSolOutForTokens(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}

	tokens := uint64(35_000_000_000_000)
	got := state.SolOutForTokens(tokens)

	want := mulDiv(tokens, initialVirtualSol, initialVirtualTokens+tokens)
	assert.Equal(t, want, got)
	assert.Greater(t, got, uint64(0))
}

func TestSolOutForTokens_ZeroInput(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}
	assert.Zero(t, state.SolOutForTokens(0))
}

func TestCurveMath_ReserveOverflowYieldsZero(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}

	// Inputs that would wrap the reserve sums quote as zero instead of
	// panicking in the 128-bit division.
	assert.Zero(t, state.TokensOutForSol(math.MaxUint64))
	assert.Zero(t, state.SolOutForTokens(math.MaxUint64))

	nearFull := &CurveState{
		VirtualTokenReserves: math.MaxUint64 - 1,
		VirtualSolReserves:   math.MaxUint64 - 1,
	}
	assert.Zero(t, nearFull.TokensOutForSol(2))
	assert.Zero(t, nearFull.SolOutForTokens(2))
}

func TestCurveRoundTrip_SellNeverExceedsBuy(t *testing.T) {
	state := &CurveState{
		VirtualTokenReserves: initialVirtualTokens,
		VirtualSolReserves:   initialVirtualSol,
	}

	solIn := uint64(500_000_000)
	tokens := state.TokensOutForSol(solIn)

	// Selling the same tokens back on the moved curve cannot return
	// more lamports than were paid in.
	moved := &CurveState{
		VirtualTokenReserves: state.VirtualTokenReserves - tokens,
		VirtualSolReserves:   state.VirtualSolReserves + solIn,
	}
	assert.LessOrEqual(t, moved.SolOutForTokens(tokens), solIn)
}

// mulDiv computes floor(a*b/c) through big.Int as an independent
// oracle for the 128-bit curve math.
func mulDiv(a, b, c uint64) uint64 {
	product := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return product.Div(product, new(big.Int).SetUint64(c)).Uint64()
}
