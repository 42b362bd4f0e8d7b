// internal/dex/pumpfun/instructions.go
package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Anchor instruction discriminators of the Pump.fun program.
var (
	CreateDiscriminator = []byte{0x18, 0x1e, 0xc8, 0x28, 0x05, 0x1c, 0x07, 0x77}
	BuyDiscriminator    = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	SellDiscriminator   = []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// BuildCreateInstruction builds the token-creation instruction. The
// mint account must co-sign the transaction alongside the payer.
func BuildCreateInstruction(
	payer solana.PublicKey,
	mint solana.PublicKey,
	name, symbol, metadataURI string,
) (solana.Instruction, error) {
	mintAuthority, err := DeriveMintAuthority()
	if err != nil {
		return nil, err
	}
	bondingCurve, associatedBondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}
	global, err := DeriveGlobal()
	if err != nil {
		return nil, err
	}
	metadata, err := DeriveMetadata(mint)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(CreateDiscriminator)+12+len(name)+len(symbol)+len(metadataURI))
	data = append(data, CreateDiscriminator...)
	data = appendBorshString(data, name)
	data = appendBorshString(data, symbol)
	data = appendBorshString(data, metadataURI)

	// Account list must be in the exact order expected by the program.
	insAccounts := []*solana.AccountMeta{
		{PublicKey: mint, IsSigner: true, IsWritable: true},
		{PublicKey: mintAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: global, IsSigner: false, IsWritable: false},
		{PublicKey: MetaplexTokenMetadata, IsSigner: false, IsWritable: false},
		{PublicKey: metadata, IsSigner: false, IsWritable: true},
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data), nil
}

// BuildBuyInstruction builds a buy for amount tokens paying at most
// maxSolCost lamports. feeRecipient comes from the global account.
func BuildBuyInstruction(
	payer solana.PublicKey,
	mint solana.PublicKey,
	feeRecipient solana.PublicKey,
	userATA solana.PublicKey,
	amount, maxSolCost uint64,
) (solana.Instruction, error) {
	bondingCurve, associatedBondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}
	global, err := DeriveGlobal()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 24)
	data = append(data, BuyDiscriminator...)
	data = appendUint64(data, amount)
	data = appendUint64(data, maxSolCost)

	insAccounts := []*solana.AccountMeta{
		{PublicKey: global, IsSigner: false, IsWritable: false},
		{PublicKey: feeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: userATA, IsSigner: false, IsWritable: true},
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data), nil
}

// BuildSellInstruction builds a sell of amount tokens for at least
// minSolOutput lamports.
func BuildSellInstruction(
	payer solana.PublicKey,
	mint solana.PublicKey,
	feeRecipient solana.PublicKey,
	userATA solana.PublicKey,
	amount, minSolOutput uint64,
) (solana.Instruction, error) {
	bondingCurve, associatedBondingCurve, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, err
	}
	global, err := DeriveGlobal()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 24)
	data = append(data, SellDiscriminator...)
	data = appendUint64(data, amount)
	data = appendUint64(data, minSolOutput)

	insAccounts := []*solana.AccountMeta{
		{PublicKey: global, IsSigner: false, IsWritable: false},
		{PublicKey: feeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: userATA, IsSigner: false, IsWritable: true},
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data), nil
}

// BuildCreateATAIdempotentInstruction creates the payer's associated
// token account for mint if it does not exist yet.
func BuildCreateATAIdempotentInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return solana.NewInstruction(
		AssociatedTokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: ata, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: false, IsWritable: false},
			{PublicKey: mint, IsSigner: false, IsWritable: false},
			{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
			{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		},
		[]byte{1}, // instruction code 1: create idempotent
	), nil
}

func appendBorshString(data []byte, s string) []byte {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	data = append(data, length[:]...)
	return append(data, s...)
}

func appendUint64(data []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(data, buf[:]...)
}
