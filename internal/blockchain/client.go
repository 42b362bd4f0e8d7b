// internal/blockchain/client.go
package blockchain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// RPCClient is a thin adapter over the solana-go RPC client.
type RPCClient struct {
	rpc    *rpc.Client
	logger *zap.Logger

	confirmInterval time.Duration
	confirmTimeout  time.Duration
}

// NewClient creates a client for the given RPC URL.
func NewClient(rpcURL string, logger *zap.Logger) *RPCClient {
	return &RPCClient{
		rpc:             rpc.New(rpcURL),
		logger:          logger.Named("rpc-client"),
		confirmInterval: 500 * time.Millisecond,
		confirmTimeout:  30 * time.Second,
	}
}

// GetLatestBlockhash fetches the latest blockhash at confirmed
// commitment. Retry policy lives in the Resolver, not here.
func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Warn("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetBalance returns the lamport balance of pubkey.
func (c *RPCClient) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// GetTokenAccountBalance returns the raw token amount held by account.
// A missing token account reads as zero, which callers treat as a
// legitimate nothing-to-sell outcome.
func (c *RPCClient) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("account", account.String()),
			zap.Error(err))
		return 0, err
	}
	if result == nil || result.Value == nil {
		return 0, nil
	}
	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance %q: %w", result.Value.Amount, err)
	}
	return amount, nil
}

// GetAccountDataInto fetches account data and decodes it into dst.
func (c *RPCClient) GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, dst interface{}) error {
	if err := c.rpc.GetAccountDataInto(ctx, pubkey, dst); err != nil {
		c.logger.Debug("GetAccountDataInto error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// SendTransactionWithOpts broadcasts a signed transaction.
func (c *RPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// SimulateTransaction dry-runs the transaction against current state.
func (c *RPCClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	result, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		c.logger.Error("SimulateTransaction error", zap.Error(err))
		return nil, err
	}
	units := uint64(0)
	if result.Value.UnitsConsumed != nil {
		units = *result.Value.UnitsConsumed
	}
	return &SimulationResult{
		Err:           result.Value.Err,
		Logs:          result.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// WaitForConfirmation polls signature statuses until the transaction
// is confirmed or finalized, or the polling window runs out.
func (c *RPCClient) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()
	deadline := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrConfirmationTimeout
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized ||
				status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
				return nil
			}
		}
	}
}

var _ Client = (*RPCClient)(nil)
