// internal/dex/pumpfun/provider.go
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
	"github.com/rovshanmuradov/solana-launcher/internal/types"
)

// Provider builds ready-to-sign Pump.fun instructions. It implements
// the instruction provider surface the orchestrator consumes.
type Provider struct {
	client   blockchain.Client
	uploader *MetadataUploader
	logger   *zap.Logger
}

// NewProvider creates a provider over the given ledger client.
func NewProvider(client blockchain.Client, logger *zap.Logger) *Provider {
	return &Provider{
		client:   client,
		uploader: NewMetadataUploader(logger),
		logger:   logger.Named("pumpfun"),
	}
}

// CreateTokenMetadata uploads the token image and descriptive fields.
func (p *Provider) CreateTokenMetadata(ctx context.Context, info TokenInfo) (*TokenMetadata, error) {
	return p.uploader.Upload(ctx, info)
}

// GetCreateInstructions returns the token creation instruction for the
// freshly generated mint.
func (p *Provider) GetCreateInstructions(
	_ context.Context,
	payer solana.PublicKey,
	name, symbol, metadataURI string,
	mint solana.PublicKey,
) (solana.Instruction, error) {
	return BuildCreateInstruction(payer, mint, name, symbol, metadataURI)
}

// GetBuyInstructionsBySolAmount sizes a buy by solLamports and applies
// the slippage policy as a minimum-token-out guard: the instruction
// asks for the discounted token amount while capping the spend at
// solLamports.
func (p *Provider) GetBuyInstructionsBySolAmount(
	ctx context.Context,
	payer solana.PublicKey,
	mint solana.PublicKey,
	solLamports uint64,
	slippage types.SlippageConfig,
) ([]solana.Instruction, error) {
	state, err := FetchCurveState(ctx, p.client, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve curve state: %w", err)
	}
	global, err := FetchGlobalAccount(ctx, p.client)
	if err != nil {
		return nil, err
	}

	expectedTokens := state.TokensOutForSol(solLamports)
	if expectedTokens == 0 {
		return nil, fmt.Errorf("buy of %d lamports yields zero tokens", solLamports)
	}
	minTokensOut := types.CalculateMinAmountOut(float64(expectedTokens), slippage)

	p.logger.Info("Sized buy",
		zap.Uint64("sol_lamports", solLamports),
		zap.Uint64("expected_tokens", expectedTokens),
		zap.Uint64("min_tokens_out", minTokensOut))

	userATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	ataIx, err := BuildCreateATAIdempotentInstruction(payer, payer, mint)
	if err != nil {
		return nil, err
	}
	buyIx, err := BuildBuyInstruction(payer, mint, global.FeeRecipient, userATA, minTokensOut, solLamports)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{ataIx, buyIx}, nil
}

// GetSellInstructionsByTokenAmount sizes a sell by tokenAmount with a
// minimum-SOL-out guard derived from the slippage policy.
func (p *Provider) GetSellInstructionsByTokenAmount(
	ctx context.Context,
	payer solana.PublicKey,
	mint solana.PublicKey,
	tokenAmount uint64,
	slippage types.SlippageConfig,
) (solana.Instruction, error) {
	state, err := FetchCurveState(ctx, p.client, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve curve state: %w", err)
	}
	global, err := FetchGlobalAccount(ctx, p.client)
	if err != nil {
		return nil, err
	}

	expectedSol := state.SolOutForTokens(tokenAmount)
	minSolOut := types.CalculateMinAmountOut(float64(expectedSol), slippage)

	p.logger.Info("Sized sell",
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("expected_sol_lamports", expectedSol),
		zap.Uint64("min_sol_out", minSolOut))

	userATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return BuildSellInstruction(payer, mint, global.FeeRecipient, userATA, tokenAmount, minSolOut)
}
