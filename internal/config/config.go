// internal/config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-launcher/internal/types"
)

// TokenConfig describes the token to launch.
type TokenConfig struct {
	Name        string `mapstructure:"name"`
	Symbol      string `mapstructure:"symbol"`
	Description string `mapstructure:"description"`
	Twitter     string `mapstructure:"twitter"`
	Telegram    string `mapstructure:"telegram"`
	Website     string `mapstructure:"website"`
	ShowName    bool   `mapstructure:"show_name"`
	ImageFile   string `mapstructure:"image_file"`
}

type Config struct {
	RPCURL      string `mapstructure:"rpc_url"`
	PrivateKey  string `mapstructure:"private_key"`
	MintKeyFile string `mapstructure:"mint_key_file"`

	Mode           string `mapstructure:"mode"` // "bundle" or "sequential"
	BlockEngineURL string `mapstructure:"block_engine_url"`
	TipLamports    uint64 `mapstructure:"tip_lamports"`

	SwapAmountSOL float64              `mapstructure:"swap_amount_sol"`
	BuySlippage   types.SlippageConfig `mapstructure:"buy_slippage"`
	SellSlippage  types.SlippageConfig `mapstructure:"sell_slippage"`

	// Compute budgets per stage. Create and buy share one budget; the
	// sell path runs with a higher one.
	TradePriorityFee  uint64 `mapstructure:"trade_priority_fee"`  // micro-lamports
	TradeComputeUnits uint32 `mapstructure:"trade_compute_units"` // CU limit
	SellPriorityFee   uint64 `mapstructure:"sell_priority_fee"`
	SellComputeUnits  uint32 `mapstructure:"sell_compute_units"`

	SubmitMaxAttempts  uint64 `mapstructure:"submit_max_attempts"`
	SubmitDeadlineSec  int    `mapstructure:"submit_deadline_sec"`
	SettleTimeoutSec   int    `mapstructure:"settle_timeout_sec"`
	SettleIntervalMsec int    `mapstructure:"settle_interval_msec"`

	Simulate     bool `mapstructure:"simulate"`
	DebugLogging bool `mapstructure:"debug_logging"`

	Token TokenConfig `mapstructure:"token"`
}

const (
	ModeBundle     = "bundle"
	ModeSequential = "sequential"

	DefaultBlockEngineURL = "https://mainnet.block-engine.jito.wtf/api/v1"
	DefaultTipLamports    = 1_000_000

	DefaultTradePriorityFee  = 70_000
	DefaultTradeComputeUnits = 150_000
	DefaultSellPriorityFee   = 100_000
	DefaultSellComputeUnits  = 200_000

	DefaultSubmitMaxAttempts  = 10
	DefaultSubmitDeadlineSec  = 90
	DefaultSettleTimeoutSec   = 10
	DefaultSettleIntervalMsec = 500
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"mint_key_file":        "mint.json",
		"mode":                 ModeBundle,
		"block_engine_url":     DefaultBlockEngineURL,
		"tip_lamports":         DefaultTipLamports,
		"trade_priority_fee":   DefaultTradePriorityFee,
		"trade_compute_units":  DefaultTradeComputeUnits,
		"sell_priority_fee":    DefaultSellPriorityFee,
		"sell_compute_units":   DefaultSellComputeUnits,
		"submit_max_attempts":  DefaultSubmitMaxAttempts,
		"submit_deadline_sec":  DefaultSubmitDeadlineSec,
		"settle_timeout_sec":   DefaultSettleTimeoutSec,
		"settle_interval_msec": DefaultSettleIntervalMsec,
		"buy_slippage.type":    string(types.SlippagePercent),
		"buy_slippage.value":   5.0,
		"sell_slippage.type":   string(types.SlippagePercent),
		"sell_slippage.value":  5.0,
		"simulate":             true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.Mode != ModeBundle && cfg.Mode != ModeSequential {
		return errors.New("mode must be \"bundle\" or \"sequential\"")
	}
	if cfg.Mode == ModeBundle {
		if err := validateURL(cfg.BlockEngineURL, "http"); err != nil {
			return errors.New("invalid block engine URL protocol")
		}
	}
	if cfg.SwapAmountSOL <= 0 {
		return errors.New("invalid swap_amount_sol")
	}
	if cfg.SubmitMaxAttempts == 0 {
		return errors.New("invalid submit_max_attempts")
	}
	if cfg.SettleTimeoutSec <= 0 || cfg.SettleIntervalMsec <= 0 {
		return errors.New("invalid settle polling parameters")
	}
	if cfg.Token.Name == "" || cfg.Token.Symbol == "" {
		return errors.New("token name and symbol are required")
	}
	if cfg.Token.ImageFile == "" {
		return errors.New("token image_file is required")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("SOLANA_LAUNCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}
	if envRPC := v.GetString("RPC_URL"); envRPC != "" {
		cfg.RPCURL = envRPC
	}
}
