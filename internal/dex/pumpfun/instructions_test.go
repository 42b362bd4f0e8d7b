// internal/dex/pumpfun/instructions_test.go
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCreateInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := BuildCreateInstruction(payer, mint, "Test Token", "TST", "https://example.com/meta.json")
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, CreateDiscriminator, data[:8])

	// Three borsh strings follow the discriminator: name, symbol, uri.
	offset := 8
	for _, want := range []string{"Test Token", "TST", "https://example.com/meta.json"} {
		length := binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4
		assert.Equal(t, want, string(data[offset:offset+int(length)]))
		offset += int(length)
	}
	assert.Equal(t, len(data), offset)

	accounts := ix.Accounts()
	require.Len(t, accounts, 14)
	assert.Equal(t, mint, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, payer, accounts[7].PublicKey)
	assert.True(t, accounts[7].IsSigner)
	assert.Equal(t, MetaplexTokenMetadata, accounts[5].PublicKey)
	assert.Equal(t, EventAuthority, accounts[12].PublicKey)
	assert.Equal(t, ProgramID, accounts[13].PublicKey)
}

func TestBuildBuyInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	feeRecipient := solana.NewWallet().PublicKey()
	userATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	require.NoError(t, err)

	ix, err := BuildBuyInstruction(payer, mint, feeRecipient, userATA, 42_000, 1_000_000_000)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, BuyDiscriminator, data[:8])
	assert.Equal(t, uint64(42_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[16:24]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 12)
	assert.Equal(t, feeRecipient, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, userATA, accounts[5].PublicKey)
	assert.Equal(t, payer, accounts[6].PublicKey)
	assert.True(t, accounts[6].IsSigner)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[9].PublicKey)

	// The buyer is the only signer.
	for i, acc := range accounts {
		if i != 6 {
			assert.False(t, acc.IsSigner, "account %d must not sign", i)
		}
	}
}

func TestBuildSellInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	feeRecipient := solana.NewWallet().PublicKey()
	userATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	require.NoError(t, err)

	ix, err := BuildSellInstruction(payer, mint, feeRecipient, userATA, 5_000_000, 900_000)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, SellDiscriminator, data[:8])
	assert.Equal(t, uint64(5_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(900_000), binary.LittleEndian.Uint64(data[16:24]))

	// Sell swaps the rent sysvar slot for the associated token program.
	accounts := ix.Accounts()
	require.Len(t, accounts, 12)
	assert.Equal(t, AssociatedTokenProgramID, accounts[8].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[9].PublicKey)
}

func TestBuildCreateATAIdempotentInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ata, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	require.NoError(t, err)

	ix, err := BuildCreateATAIdempotentInstruction(payer, payer, mint)
	require.NoError(t, err)
	assert.Equal(t, AssociatedTokenProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
}

func TestDeriveBondingCurve_Deterministic(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	curve1, ata1, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	curve2, ata2, err := DeriveBondingCurve(mint)
	require.NoError(t, err)

	assert.Equal(t, curve1, curve2)
	assert.Equal(t, ata1, ata2)
	assert.NotEqual(t, curve1, ata1)
}
