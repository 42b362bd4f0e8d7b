// internal/dex/pumpfun/curve.go
package pumpfun

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
)

// GlobalAccount is the layout of the Pump.fun global config account.
type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// BondingCurveAccount is the layout of a per-token bonding curve.
type BondingCurveAccount struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// CurveState is the reserve pair the price math works on.
type CurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
}

// FetchGlobalAccount loads the program's global config.
func FetchGlobalAccount(ctx context.Context, client blockchain.Client) (*GlobalAccount, error) {
	global, err := DeriveGlobal()
	if err != nil {
		return nil, err
	}
	var account GlobalAccount
	if err := client.GetAccountDataInto(ctx, global, &account); err != nil {
		return nil, fmt.Errorf("failed to fetch global account: %w", err)
	}
	return &account, nil
}

// FetchCurveState returns the live bonding curve reserves for mint.
// When the curve account does not exist yet (the create transaction
// rides in the same bundle as the buy), the initial reserves from the
// global account are used instead.
func FetchCurveState(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (*CurveState, error) {
	bondingCurve, _, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}

	var curve BondingCurveAccount
	if err := client.GetAccountDataInto(ctx, bondingCurve, &curve); err == nil {
		if curve.VirtualTokenReserves == 0 {
			return nil, fmt.Errorf("bonding curve %s has zero token reserves", bondingCurve)
		}
		return &CurveState{
			VirtualTokenReserves: curve.VirtualTokenReserves,
			VirtualSolReserves:   curve.VirtualSolReserves,
		}, nil
	}

	global, err := FetchGlobalAccount(ctx, client)
	if err != nil {
		return nil, err
	}
	if global.InitialVirtualTokenReserves == 0 {
		return nil, fmt.Errorf("global account has zero initial token reserves")
	}
	return &CurveState{
		VirtualTokenReserves: global.InitialVirtualTokenReserves,
		VirtualSolReserves:   global.InitialVirtualSolReserves,
	}, nil
}

// TokensOutForSol computes the token amount bought with solIn lamports
// on the constant-product curve. Reserve products overflow uint64, so
// the intermediate math runs on 128 bits.
func (s *CurveState) TokensOutForSol(solIn uint64) uint64 {
	if solIn == 0 || s.VirtualSolReserves == 0 || s.VirtualTokenReserves == 0 {
		return 0
	}
	newSol, carry := bits.Add64(s.VirtualSolReserves, solIn, 0)
	if carry != 0 {
		return 0
	}
	hi, lo := bits.Mul64(s.VirtualSolReserves, s.VirtualTokenReserves)
	// hi < VirtualSolReserves <= newSol because the token reserves fit
	// in 64 bits and the add did not wrap, so Div64 cannot panic here.
	newToken, _ := bits.Div64(hi, lo, newSol)
	return s.VirtualTokenReserves - newToken
}

// SolOutForTokens computes the lamports received for selling tokens.
func (s *CurveState) SolOutForTokens(tokens uint64) uint64 {
	if tokens == 0 || s.VirtualTokenReserves == 0 {
		return 0
	}
	denominator, carry := bits.Add64(s.VirtualTokenReserves, tokens, 0)
	if carry != 0 {
		return 0
	}
	hi, lo := bits.Mul64(tokens, s.VirtualSolReserves)
	solOut, _ := bits.Div64(hi, lo, denominator)
	return solOut
}
