// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrBlockhashUnavailable is returned by the Resolver when both
	// fetch attempts fail. Callers abort the enclosing stage; a stale
	// or synthetic hash is never substituted.
	ErrBlockhashUnavailable = errors.New("recent blockhash unavailable")

	// ErrConfirmationTimeout is returned when a transaction does not
	// reach confirmed status inside the polling window.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
)

// TransactionOptions mirror the send options we care about.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// SimulationResult is the subset of the simulation response used for
// diagnostic logging.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// Client is the ledger RPC surface consumed by the pipeline. The
// concrete implementation lives in this package; tests inject fakes.
type Client interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, dst interface{}) error
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}
