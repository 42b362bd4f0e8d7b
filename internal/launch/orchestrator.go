// internal/launch/orchestrator.go
package launch

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
	"github.com/rovshanmuradov/solana-launcher/internal/config"
	"github.com/rovshanmuradov/solana-launcher/internal/dex/pumpfun"
	"github.com/rovshanmuradov/solana-launcher/internal/dispatch"
	"github.com/rovshanmuradov/solana-launcher/internal/txbuild"
	"github.com/rovshanmuradov/solana-launcher/internal/types"
	"github.com/rovshanmuradov/solana-launcher/internal/wallet"
)

// InstructionProvider produces the DEX-specific instructions of the
// pipeline. Satisfied by pumpfun.Provider; tests inject fakes.
type InstructionProvider interface {
	CreateTokenMetadata(ctx context.Context, info pumpfun.TokenInfo) (*pumpfun.TokenMetadata, error)
	GetCreateInstructions(ctx context.Context, payer solana.PublicKey, name, symbol, metadataURI string, mint solana.PublicKey) (solana.Instruction, error)
	GetBuyInstructionsBySolAmount(ctx context.Context, payer, mint solana.PublicKey, solLamports uint64, slippage types.SlippageConfig) ([]solana.Instruction, error)
	GetSellInstructionsByTokenAmount(ctx context.Context, payer, mint solana.PublicKey, tokenAmount uint64, slippage types.SlippageConfig) (solana.Instruction, error)
}

// Submitter consumes a transaction pool exactly once.
type Submitter interface {
	Dispatch(ctx context.Context, txs []*solana.Transaction, payer solana.PrivateKey) (*dispatch.Report, error)
}

// Deps carries every collaborator of a run explicitly. Nothing here is
// process-global; two orchestrators with different Deps never share
// state.
type Deps struct {
	Funding    *wallet.Wallet // fee payer, buyer and seller
	Asset      *wallet.Wallet // the mint keypair for this run
	Client     blockchain.Client
	Blockhash  *blockchain.Resolver
	Assembler  *txbuild.Assembler
	Dispatcher Submitter
	Provider   InstructionProvider
	Config     *config.Config
	Logger     *zap.Logger
}

// Orchestrator drives one launch: create, buy, submit, settle, sell.
// Stage failures are recorded in the report and never abort the run.
type Orchestrator struct {
	deps Deps
	log  *zap.Logger
}

func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps, log: deps.Logger}
}

// Run executes the pipeline once and always returns a complete report.
// The returned error is reserved for setup-level problems; stage
// errors live in the report.
func (o *Orchestrator) Run(ctx context.Context) *RunReport {
	cfg := o.deps.Config
	mint := o.deps.Asset.PublicKey
	report := &RunReport{Mint: mint.String()}

	o.log.Info("Starting launch",
		zap.String("mint", mint.String()),
		zap.String("link", "https://solscan.io/token/"+mint.String()),
		zap.String("mode", cfg.Mode))
	o.logBalance(ctx)

	var pool []*solana.Transaction

	if tx, err := o.buildCreate(ctx); err != nil {
		o.log.Error("Create stage failed", zap.Error(err))
		report.record(StageCreate, StatusFailed, err.Error())
	} else {
		pool = append(pool, tx)
		report.record(StageCreate, StatusOK, "")
	}

	o.logBalance(ctx)

	if tx, err := o.buildBuy(ctx); err != nil {
		o.log.Error("Buy stage failed", zap.Error(err))
		report.record(StageBuy, StatusFailed, err.Error())
	} else {
		pool = append(pool, tx)
		report.record(StageBuy, StatusOK, "")
	}

	if len(pool) == 0 {
		report.record(StageSubmit, StatusSkipped, "empty pool")
		report.record(StageSettle, StatusSkipped, "nothing submitted")
	} else {
		dispatchReport, err := o.deps.Dispatcher.Dispatch(ctx, pool, o.deps.Funding.PrivateKey)
		report.Dispatch = dispatchReport
		if err != nil {
			o.log.Error("Submit stage failed", zap.Error(err))
			report.record(StageSubmit, StatusFailed, err.Error())
			report.record(StageSettle, StatusSkipped, "nothing landed")
		} else {
			report.record(StageSubmit, StatusOK, fmt.Sprintf("%d transaction(s)", len(pool)))
			o.settle(ctx, report)
		}
	}

	o.sell(ctx, report)

	o.logBalance(ctx)
	o.log.Info("Launch finished", zap.Bool("failed", report.Failed()))
	return report
}

func (o *Orchestrator) buildCreate(ctx context.Context) (*solana.Transaction, error) {
	cfg := o.deps.Config
	funding := o.deps.Funding

	metadata, err := o.deps.Provider.CreateTokenMetadata(ctx, pumpfun.TokenInfo{
		Name:        cfg.Token.Name,
		Symbol:      cfg.Token.Symbol,
		Description: cfg.Token.Description,
		Twitter:     cfg.Token.Twitter,
		Telegram:    cfg.Token.Telegram,
		Website:     cfg.Token.Website,
		ShowName:    cfg.Token.ShowName,
		ImagePath:   cfg.Token.ImageFile,
	})
	if err != nil {
		return nil, fmt.Errorf("metadata upload: %w", err)
	}

	createIx, err := o.deps.Provider.GetCreateInstructions(ctx,
		funding.PublicKey, cfg.Token.Name, cfg.Token.Symbol, metadata.MetadataURI, o.deps.Asset.PublicKey)
	if err != nil {
		return nil, err
	}

	batch := txbuild.Augment([]solana.Instruction{createIx}, txbuild.Budget{
		PriorityFee:  cfg.TradePriorityFee,
		ComputeUnits: cfg.TradeComputeUnits,
	})

	blockhash, err := o.deps.Blockhash.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	// The create instruction requires both the payer and the new mint
	// to sign.
	return o.deps.Assembler.Assemble(ctx, batch, funding.PublicKey, blockhash,
		[]solana.PrivateKey{funding.PrivateKey, o.deps.Asset.PrivateKey})
}

func (o *Orchestrator) buildBuy(ctx context.Context) (*solana.Transaction, error) {
	cfg := o.deps.Config
	funding := o.deps.Funding

	lamports := uint64(cfg.SwapAmountSOL * float64(solana.LAMPORTS_PER_SOL))
	buyIxs, err := o.deps.Provider.GetBuyInstructionsBySolAmount(ctx,
		funding.PublicKey, o.deps.Asset.PublicKey, lamports, cfg.BuySlippage)
	if err != nil {
		return nil, err
	}

	batch := txbuild.Augment(buyIxs, txbuild.Budget{
		PriorityFee:  cfg.TradePriorityFee,
		ComputeUnits: cfg.TradeComputeUnits,
	})

	blockhash, err := o.deps.Blockhash.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return o.deps.Assembler.Assemble(ctx, batch, funding.PublicKey, blockhash,
		[]solana.PrivateKey{funding.PrivateKey})
}

// settle polls the funding wallet's token account until the bought
// balance is visible or the window closes. Visibility here means the
// cluster state is readable, not merely that the submit path reported
// success.
func (o *Orchestrator) settle(ctx context.Context, report *RunReport) {
	cfg := o.deps.Config

	ata, err := o.deps.Funding.GetATA(o.deps.Asset.PublicKey)
	if err != nil {
		report.record(StageSettle, StatusFailed, err.Error())
		return
	}

	deadline := time.Now().Add(time.Duration(cfg.SettleTimeoutSec) * time.Second)
	interval := time.Duration(cfg.SettleIntervalMsec) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		balance, err := o.deps.Client.GetTokenAccountBalance(ctx, ata)
		if err == nil && balance > 0 {
			o.log.Info("Token balance visible",
				zap.Uint64("balance", balance),
				zap.String("account", ata.String()))
			report.record(StageSettle, StatusOK, fmt.Sprintf("balance %d", balance))
			return
		}
		if err != nil {
			o.log.Debug("Settle poll failed", zap.Error(err))
		}

		if time.Now().After(deadline) {
			report.record(StageSettle, StatusFailed,
				fmt.Sprintf("balance not visible within %ds", cfg.SettleTimeoutSec))
			return
		}
		select {
		case <-ctx.Done():
			report.record(StageSettle, StatusFailed, ctx.Err().Error())
			return
		case <-ticker.C:
		}
	}
}

// sell liquidates the full visible token balance in a single
// transaction, skipping preflight so a slow simulation cannot eat the
// price. A zero balance skips the stage instead of failing it.
func (o *Orchestrator) sell(ctx context.Context, report *RunReport) {
	cfg := o.deps.Config
	funding := o.deps.Funding
	mint := o.deps.Asset.PublicKey

	ata, err := funding.GetATA(mint)
	if err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}
	balance, err := o.deps.Client.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		report.record(StageSell, StatusFailed, fmt.Sprintf("balance check: %v", err))
		return
	}
	if balance == 0 {
		o.log.Info("Nothing to sell", zap.String("mint", mint.String()))
		report.record(StageSell, StatusSkipped, "zero token balance")
		return
	}

	sellIx, err := o.deps.Provider.GetSellInstructionsByTokenAmount(ctx,
		funding.PublicKey, mint, balance, cfg.SellSlippage)
	if err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}

	batch := txbuild.Augment([]solana.Instruction{sellIx}, txbuild.Budget{
		PriorityFee:  cfg.SellPriorityFee,
		ComputeUnits: cfg.SellComputeUnits,
	})

	blockhash, err := o.deps.Blockhash.Resolve(ctx)
	if err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}
	tx, err := o.deps.Assembler.Assemble(ctx, batch, funding.PublicKey, blockhash,
		[]solana.PrivateKey{funding.PrivateKey})
	if err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}

	sig, err := o.deps.Client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight: true,
	})
	if err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}
	o.log.Info("Sell broadcast", zap.String("link", "https://solscan.io/tx/"+sig.String()))

	if err := o.deps.Client.WaitForConfirmation(ctx, sig); err != nil {
		report.record(StageSell, StatusFailed, err.Error())
		return
	}
	report.record(StageSell, StatusOK, sig.String())
}

func (o *Orchestrator) logBalance(ctx context.Context) {
	balance, err := o.deps.Client.GetBalance(ctx, o.deps.Funding.PublicKey)
	if err != nil {
		o.log.Debug("Balance check failed", zap.Error(err))
		return
	}
	o.log.Info("Wallet balance",
		zap.String("wallet", o.deps.Funding.PublicKey.String()),
		zap.Float64("sol", float64(balance)/float64(solana.LAMPORTS_PER_SOL)))
}
