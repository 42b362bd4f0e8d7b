// internal/txbuild/assembler_test.go
package txbuild

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testBlockhash(t *testing.T) solana.Hash {
	t.Helper()
	var h solana.Hash
	copy(h[:], []byte("test-blockhash-for-assembly-1234"))
	return h
}

func TestAssemble_SignsWithAllSigners(t *testing.T) {
	payer := solana.NewWallet()
	second := solana.NewWallet()
	to := solana.NewWallet().PublicKey()

	batch := []solana.Instruction{
		system.NewTransferInstruction(1_000, payer.PublicKey(), to).Build(),
		system.NewTransferInstruction(2_000, second.PublicKey(), to).Build(),
	}

	a := NewAssembler(nil, zaptest.NewLogger(t), false)
	tx, err := a.Assemble(context.Background(), batch, payer.PublicKey(), testBlockhash(t),
		[]solana.PrivateKey{payer.PrivateKey, second.PrivateKey})
	require.NoError(t, err)

	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
	require.Len(t, tx.Signatures, 2)
	assert.NoError(t, tx.VerifySignatures())
}

func TestAssemble_EmptyBatch(t *testing.T) {
	a := NewAssembler(nil, zaptest.NewLogger(t), false)
	payer := solana.NewWallet()

	_, err := a.Assemble(context.Background(), nil, payer.PublicKey(), testBlockhash(t),
		[]solana.PrivateKey{payer.PrivateKey})
	assert.Error(t, err)
}

func TestAssemble_NoSigners(t *testing.T) {
	a := NewAssembler(nil, zaptest.NewLogger(t), false)
	payer := solana.NewWallet()
	to := solana.NewWallet().PublicKey()
	batch := []solana.Instruction{
		system.NewTransferInstruction(1, payer.PublicKey(), to).Build(),
	}

	_, err := a.Assemble(context.Background(), batch, payer.PublicKey(), testBlockhash(t), nil)
	assert.Error(t, err)
}

func TestAssemble_MissingRequiredSigner(t *testing.T) {
	payer := solana.NewWallet()
	other := solana.NewWallet()
	to := solana.NewWallet().PublicKey()
	batch := []solana.Instruction{
		system.NewTransferInstruction(1, payer.PublicKey(), to).Build(),
	}

	a := NewAssembler(nil, zaptest.NewLogger(t), false)
	_, err := a.Assemble(context.Background(), batch, payer.PublicKey(), testBlockhash(t),
		[]solana.PrivateKey{other.PrivateKey})
	assert.Error(t, err)
}
