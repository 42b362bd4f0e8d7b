// internal/relay/relay.go
package relay

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// BundleResult reports one submit-and-poll round trip. Confirmation is
// all-or-nothing: the relay lands the whole bundle or none of it.
type BundleResult struct {
	Confirmed bool
	BundleID  string
}

// Client is the block-space auction relay surface consumed by the
// dispatcher. Tests inject stubs.
type Client interface {
	// SubmitBundle submits the transactions as one atomic unit signed
	// for by payer and polls for inclusion once. An unconfirmed result
	// with a nil error means the round trip completed without the
	// bundle landing; the caller decides whether to retry.
	SubmitBundle(ctx context.Context, txs []*solana.Transaction, payer solana.PrivateKey) (*BundleResult, error)
}
