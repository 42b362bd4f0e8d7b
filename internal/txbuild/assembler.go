// internal/txbuild/assembler.go
package txbuild

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
)

// Assembler compiles an instruction batch into a signed transaction.
type Assembler struct {
	client   blockchain.Client
	logger   *zap.Logger
	simulate bool
}

// NewAssembler creates an assembler. When simulate is true every
// assembled transaction is dry-run against current network state; a
// simulation failure is logged for diagnostics but never blocks the
// signed transaction from being returned.
func NewAssembler(client blockchain.Client, logger *zap.Logger, simulate bool) *Assembler {
	return &Assembler{
		client:   client,
		logger:   logger.Named("tx-assembler"),
		simulate: simulate,
	}
}

// Assemble compiles batch with the given blockhash and fee payer and
// signs with every provided signer. Signer completeness beyond the set
// passed in is not validated here; a missing signer surfaces at the
// network layer.
func (a *Assembler) Assemble(
	ctx context.Context,
	batch []solana.Instruction,
	feePayer solana.PublicKey,
	blockhash solana.Hash,
	signers []solana.PrivateKey,
) (*solana.Transaction, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("no instructions to assemble")
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("no signers provided")
	}

	tx, err := solana.NewTransaction(
		batch,
		blockhash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, signer := range signers {
			if signer.PublicKey().Equals(key) {
				privateCopy := signer
				return &privateCopy
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if a.simulate && a.client != nil {
		a.runSimulation(ctx, tx)
	}

	return tx, nil
}

func (a *Assembler) runSimulation(ctx context.Context, tx *solana.Transaction) {
	result, err := a.client.SimulateTransaction(ctx, tx)
	if err != nil {
		a.logger.Warn("Transaction simulation failed", zap.Error(err))
		return
	}
	if result.Err != nil {
		a.logger.Warn("Transaction simulation reported error",
			zap.Any("sim_err", result.Err),
			zap.Strings("logs", result.Logs))
		return
	}
	a.logger.Debug("Transaction simulation ok",
		zap.Uint64("units_consumed", result.UnitsConsumed))
}
