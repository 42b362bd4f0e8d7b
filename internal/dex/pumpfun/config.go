// internal/dex/pumpfun/config.go
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Known Pump.fun protocol addresses.
var (
	// ProgramID of the Pump.fun bonding curve program.
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// EventAuthority of the Pump.fun program.
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	// MetaplexTokenMetadata program, owner of the metadata PDA
	// initialized during create.
	MetaplexTokenMetadata = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

	// AssociatedTokenProgramID creates associated token accounts.
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// DeriveGlobal returns the program's global config PDA.
func DeriveGlobal() (solana.PublicKey, error) {
	global, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("global")},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive global account: %w", err)
	}
	return global, nil
}

// DeriveMintAuthority returns the PDA that signs mints for new tokens.
func DeriveMintAuthority() (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("mint-authority")},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive mint authority: %w", err)
	}
	return authority, nil
}

// DeriveBondingCurve returns the bonding curve PDA for mint and its
// associated token account.
func DeriveBondingCurve(mint solana.PublicKey) (bondingCurve, associatedBondingCurve solana.PublicKey, err error) {
	bondingCurve, _, err = solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	associatedBondingCurve, _, err = solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	return bondingCurve, associatedBondingCurve, nil
}

// DeriveMetadata returns the Metaplex metadata PDA for mint.
func DeriveMetadata(mint solana.PublicKey) (solana.PublicKey, error) {
	metadata, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			MetaplexTokenMetadata.Bytes(),
			mint.Bytes(),
		},
		MetaplexTokenMetadata,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata account: %w", err)
	}
	return metadata, nil
}
