// cmd/launcher/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launcher/internal/blockchain"
	"github.com/rovshanmuradov/solana-launcher/internal/config"
	"github.com/rovshanmuradov/solana-launcher/internal/dex/pumpfun"
	"github.com/rovshanmuradov/solana-launcher/internal/dispatch"
	"github.com/rovshanmuradov/solana-launcher/internal/launch"
	"github.com/rovshanmuradov/solana-launcher/internal/logger"
	"github.com/rovshanmuradov/solana-launcher/internal/relay"
	"github.com/rovshanmuradov/solana-launcher/internal/txbuild"
	"github.com/rovshanmuradov/solana-launcher/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the launcher configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	runLog := log.WithStage("launch")

	report, err := run(ctx, cfg, runLog)
	if err != nil {
		runLog.Error("Launch setup failed", zap.Error(err))
		log.Sync() // os.Exit skips the deferred flush
		os.Exit(1)
	}

	fmt.Print(report.Summary())
	if report.Failed() {
		log.Sync()
		os.Exit(1)
	}
}

// run wires the pipeline and executes it once. Errors returned here
// are setup problems; stage outcomes live in the report.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*launch.RunReport, error) {
	funding, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("funding wallet: %w", err)
	}

	asset, err := wallet.Generate()
	if err != nil {
		return nil, fmt.Errorf("mint keypair: %w", err)
	}
	// Persist the mint secret before anything touches the network, so
	// a crash mid-run never loses the keypair.
	if err := asset.SaveSecret(cfg.MintKeyFile); err != nil {
		return nil, fmt.Errorf("persist mint secret: %w", err)
	}
	log.Info("Generated mint keypair",
		zap.String("mint", asset.PublicKey.String()),
		zap.String("key_file", cfg.MintKeyFile))

	client := blockchain.NewClient(cfg.RPCURL, log)
	resolver := blockchain.NewResolver(client, log)
	assembler := txbuild.NewAssembler(client, log, cfg.Simulate)
	provider := pumpfun.NewProvider(client, log)

	jito := relay.NewJitoClient(relay.JitoConfig{
		BlockEngineURL: cfg.BlockEngineURL,
		TipLamports:    cfg.TipLamports,
		PollInterval:   2 * time.Second,
		PollTimeout:    30 * time.Second,
	}, resolver, log)

	dispatcher := dispatch.New(jito, client, log, dispatch.Config{
		Mode:           dispatch.Mode(cfg.Mode),
		MaxAttempts:    cfg.SubmitMaxAttempts,
		SubmitDeadline: time.Duration(cfg.SubmitDeadlineSec) * time.Second,
		InitialBackoff: 500 * time.Millisecond,
	}, nil)

	orchestrator := launch.NewOrchestrator(launch.Deps{
		Funding:    funding,
		Asset:      asset,
		Client:     client,
		Blockhash:  resolver,
		Assembler:  assembler,
		Dispatcher: dispatcher,
		Provider:   provider,
		Config:     cfg,
		Logger:     log,
	})

	return orchestrator.Run(ctx), nil
}
