// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
	"github.com/rovshanmuradov/solana-launcher/internal/relay"
)

// Mode selects the submission strategy.
type Mode string

const (
	// ModeBundle submits the whole pool atomically through the relay.
	ModeBundle Mode = "bundle"
	// ModeSequential broadcasts and confirms each transaction in order.
	ModeSequential Mode = "sequential"
)

// ErrSubmitDeadline is returned when the bundle did not land inside
// the bounded attempt/deadline window.
var ErrSubmitDeadline = errors.New("bundle submission deadline exceeded")

var errBundleNotLanded = errors.New("bundle not landed")

// Config bounds the atomic submission loop. Attempts and deadline
// keep the bias toward eventual inclusion while capping worst-case
// latency.
type Config struct {
	Mode           Mode
	MaxAttempts    uint64
	SubmitDeadline time.Duration
	InitialBackoff time.Duration
}

// DefaultConfig returns the submission policy used by the launcher.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeBundle,
		MaxAttempts:    10,
		SubmitDeadline: 90 * time.Second,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// TxResult records the outcome of one sequential transaction.
type TxResult struct {
	Signature string
	Confirmed bool
	Err       string
}

// Report is what Dispatch hands back for auditing: the bundle id in
// atomic mode, per-transaction signatures in sequential mode.
type Report struct {
	Mode         Mode
	Confirmed    bool
	BundleID     string
	Attempts     int
	Transactions []TxResult
}

// Dispatcher routes an assembled transaction pool through one of the
// two submission strategies.
type Dispatcher struct {
	relay   relay.Client
	client  blockchain.Client
	logger  *zap.Logger
	metrics *Metrics
	config  Config
}

// New creates a dispatcher. reg may be nil to use the default
// prometheus registerer.
func New(relayClient relay.Client, client blockchain.Client, logger *zap.Logger, cfg Config, reg prometheus.Registerer) *Dispatcher {
	return &Dispatcher{
		relay:   relayClient,
		client:  client,
		logger:  logger.Named("dispatcher"),
		metrics: NewMetrics(reg),
		config:  cfg,
	}
}

// Dispatch consumes the pool exactly once. The pool must be submitted
// in the order it was populated: create before buy.
func (d *Dispatcher) Dispatch(ctx context.Context, txs []*solana.Transaction, payer solana.PrivateKey) (*Report, error) {
	defer d.metrics.TrackDispatch(time.Now())

	if len(txs) == 0 {
		d.logger.Warn("Dispatch called with an empty pool")
		return &Report{Mode: d.config.Mode}, nil
	}

	switch d.config.Mode {
	case ModeSequential:
		return d.dispatchSequential(ctx, txs), nil
	default:
		return d.dispatchBundle(ctx, txs, payer)
	}
}

// dispatchBundle re-submits the same pool until the relay confirms it,
// with exponential backoff, an attempt cap and a hard deadline.
func (d *Dispatcher) dispatchBundle(ctx context.Context, txs []*solana.Transaction, payer solana.PrivateKey) (*Report, error) {
	report := &Report{Mode: ModeBundle}

	operation := func() error {
		report.Attempts++
		d.metrics.bundleAttempts.Inc()

		result, err := d.relay.SubmitBundle(ctx, txs, payer)
		if err != nil {
			d.logger.Warn("Bundle submission attempt failed",
				zap.Int("attempt", report.Attempts),
				zap.Error(err))
			return err
		}
		if !result.Confirmed {
			d.logger.Warn("Bundle not confirmed, retrying",
				zap.Int("attempt", report.Attempts),
				zap.String("bundle_id", result.BundleID))
			return errBundleNotLanded
		}
		report.Confirmed = true
		report.BundleID = result.BundleID
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.config.InitialBackoff
	policy.MaxElapsedTime = d.config.SubmitDeadline

	// MaxAttempts of 0 still gets the one mandatory attempt.
	var retries uint64
	if d.config.MaxAttempts > 0 {
		retries = d.config.MaxAttempts - 1
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, retries), ctx))
	if err != nil {
		d.metrics.failureCounter.Inc()
		return report, fmt.Errorf("%w after %d attempts: %v", ErrSubmitDeadline, report.Attempts, err)
	}

	d.metrics.successCounter.Inc()
	d.logger.Info("Bundle confirmed",
		zap.String("bundle_id", report.BundleID),
		zap.Int("attempts", report.Attempts))
	return report, nil
}

// dispatchSequential broadcasts each transaction in order and waits
// for its confirmation independently. A failure is logged, recorded
// and does not stop later transactions; create-before-buy ordering is
// preserved but not verified.
func (d *Dispatcher) dispatchSequential(ctx context.Context, txs []*solana.Transaction) *Report {
	report := &Report{Mode: ModeSequential, Confirmed: true}

	for i, tx := range txs {
		result := TxResult{}
		sig, err := d.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			d.metrics.failureCounter.Inc()
			d.logger.Error("Transaction broadcast failed",
				zap.Int("index", i),
				zap.Error(err))
			result.Err = err.Error()
			report.Confirmed = false
			report.Transactions = append(report.Transactions, result)
			continue
		}
		result.Signature = sig.String()

		if err := d.client.WaitForConfirmation(ctx, sig); err != nil {
			d.metrics.failureCounter.Inc()
			d.logger.Error("Transaction confirmation failed",
				zap.String("signature", sig.String()),
				zap.Error(err))
			result.Err = err.Error()
			report.Confirmed = false
		} else {
			d.metrics.successCounter.Inc()
			result.Confirmed = true
			d.logger.Info("Transaction confirmed",
				zap.String("link", "https://solscan.io/tx/"+sig.String()))
		}
		report.Transactions = append(report.Transactions, result)
	}
	return report
}
