// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
	"github.com/rovshanmuradov/solana-launcher/internal/relay"
)

type stubRelay struct {
	calls   int
	results []*relay.BundleResult
	errs    []error
}

func (s *stubRelay) SubmitBundle(ctx context.Context, txs []*solana.Transaction, payer solana.PrivateKey) (*relay.BundleResult, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx < len(s.results) {
		return s.results[idx], nil
	}
	return &relay.BundleResult{}, nil
}

type stubClient struct {
	sendFunc    func(tx *solana.Transaction) (solana.Signature, error)
	confirmFunc func(sig solana.Signature) error
	sent        int
}

func (s *stubClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}
func (s *stubClient) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	return 0, nil
}
func (s *stubClient) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return 0, nil
}
func (s *stubClient) GetAccountDataInto(ctx context.Context, pubkey solana.PublicKey, dst interface{}) error {
	return errors.New("not implemented")
}
func (s *stubClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	s.sent++
	if s.sendFunc != nil {
		return s.sendFunc(tx)
	}
	return solana.Signature{}, nil
}
func (s *stubClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	return &blockchain.SimulationResult{}, nil
}
func (s *stubClient) WaitForConfirmation(ctx context.Context, sig solana.Signature) error {
	if s.confirmFunc != nil {
		return s.confirmFunc(sig)
	}
	return nil
}

func testConfig(mode Mode) Config {
	return Config{
		Mode:           mode,
		MaxAttempts:    10,
		SubmitDeadline: 5 * time.Second,
		InitialBackoff: time.Millisecond,
	}
}

func testPool(n int) []*solana.Transaction {
	pool := make([]*solana.Transaction, n)
	for i := range pool {
		pool[i] = &solana.Transaction{}
	}
	return pool
}

func TestDispatchBundle_RetriesUntilConfirmed(t *testing.T) {
	rly := &stubRelay{
		results: []*relay.BundleResult{
			{Confirmed: false, BundleID: "b-1"},
			{Confirmed: false, BundleID: "b-2"},
			{Confirmed: true, BundleID: "b-3"},
		},
	}
	d := New(rly, &stubClient{}, zaptest.NewLogger(t), testConfig(ModeBundle), prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(2), payer.PrivateKey)
	require.NoError(t, err)

	assert.True(t, report.Confirmed)
	assert.Equal(t, "b-3", report.BundleID)
	assert.Equal(t, 3, report.Attempts)
	assert.Equal(t, 3, rly.calls)
}

func TestDispatchBundle_AttemptCap(t *testing.T) {
	cfg := testConfig(ModeBundle)
	cfg.MaxAttempts = 3

	rly := &stubRelay{} // never confirms
	d := New(rly, &stubClient{}, zaptest.NewLogger(t), cfg, prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(1), payer.PrivateKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitDeadline)
	assert.False(t, report.Confirmed)
	assert.Equal(t, 3, report.Attempts)
}

func TestDispatchBundle_ZeroMaxAttemptsStillTriesOnce(t *testing.T) {
	cfg := testConfig(ModeBundle)
	cfg.MaxAttempts = 0

	rly := &stubRelay{} // never confirms
	d := New(rly, &stubClient{}, zaptest.NewLogger(t), cfg, prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(1), payer.PrivateKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitDeadline)
	assert.Equal(t, 1, report.Attempts)
	assert.Equal(t, 1, rly.calls)
}

func TestDispatchBundle_TransientRelayErrors(t *testing.T) {
	rly := &stubRelay{
		errs: []error{errors.New("relay unreachable"), nil},
		results: []*relay.BundleResult{
			nil,
			{Confirmed: true, BundleID: "b-ok"},
		},
	}
	d := New(rly, &stubClient{}, zaptest.NewLogger(t), testConfig(ModeBundle), prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(2), payer.PrivateKey)
	require.NoError(t, err)
	assert.True(t, report.Confirmed)
	assert.Equal(t, 2, report.Attempts)
}

func TestDispatchSequential_FailureDoesNotStopLaterTransactions(t *testing.T) {
	sendErrs := []error{errors.New("blockhash not found"), nil}
	client := &stubClient{}
	client.sendFunc = func(tx *solana.Transaction) (solana.Signature, error) {
		err := sendErrs[0]
		sendErrs = sendErrs[1:]
		return solana.Signature{}, err
	}

	d := New(&stubRelay{}, client, zaptest.NewLogger(t), testConfig(ModeSequential), prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(2), payer.PrivateKey)
	require.NoError(t, err)

	require.Len(t, report.Transactions, 2)
	assert.False(t, report.Confirmed)
	assert.NotEmpty(t, report.Transactions[0].Err)
	assert.True(t, report.Transactions[1].Confirmed)
	assert.Equal(t, 2, client.sent)
}

func TestDispatchSequential_ConfirmationFailureRecorded(t *testing.T) {
	client := &stubClient{}
	client.confirmFunc = func(sig solana.Signature) error {
		return blockchain.ErrConfirmationTimeout
	}

	d := New(&stubRelay{}, client, zaptest.NewLogger(t), testConfig(ModeSequential), prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), testPool(1), payer.PrivateKey)
	require.NoError(t, err)
	assert.False(t, report.Confirmed)
	require.Len(t, report.Transactions, 1)
	assert.False(t, report.Transactions[0].Confirmed)
}

func TestDispatch_EmptyPool(t *testing.T) {
	rly := &stubRelay{}
	d := New(rly, &stubClient{}, zaptest.NewLogger(t), testConfig(ModeBundle), prometheus.NewRegistry())

	payer := solana.NewWallet()
	report, err := d.Dispatch(context.Background(), nil, payer.PrivateKey)
	require.NoError(t, err)
	assert.False(t, report.Confirmed)
	assert.Zero(t, rly.calls)
}
