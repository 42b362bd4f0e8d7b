// internal/blockchain/blockhash.go
package blockchain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// BlockhashSource is the narrow fetch surface the Resolver needs.
type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Resolver fetches a recent blockhash with a single retry. Blockhashes
// are cheap to re-fetch and RPC nodes routinely drop one request under
// load; more than one retry risks the hash expiring before use, so the
// second failure surfaces ErrBlockhashUnavailable instead.
type Resolver struct {
	source BlockhashSource
	logger *zap.Logger
}

// NewResolver creates a blockhash resolver over source.
func NewResolver(source BlockhashSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger.Named("blockhash-resolver"),
	}
}

// Resolve returns a fresh blockhash. Each stage calls this immediately
// before assembly; results are never cached across stages.
func (r *Resolver) Resolve(ctx context.Context) (solana.Hash, error) {
	hash, err := r.source.GetLatestBlockhash(ctx)
	if err == nil {
		return hash, nil
	}
	r.logger.Warn("Blockhash fetch failed, retrying once", zap.Error(err))

	// No backoff between attempts: the RPC call carries its own
	// network timeout.
	hash, err = r.source.GetLatestBlockhash(ctx)
	if err != nil {
		r.logger.Error("Blockhash fetch failed twice", zap.Error(err))
		return solana.Hash{}, fmt.Errorf("%w: %v", ErrBlockhashUnavailable, err)
	}
	return hash, nil
}
