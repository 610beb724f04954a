package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"TaxLedger/internal/config"
	"TaxLedger/internal/model"
	"TaxLedger/internal/recorder"
	"TaxLedger/internal/token"
)

var (
	// Global flags
	cfgPath    string
	verbose    bool
	callerAddr string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taxledger",
	Short: "Fungible-token ledger with transfer tax, anti-whale limits and a launch gate",
	Long: `taxledger keeps the balances of a single fungible token and decides, for
every transfer, whether it is allowed and how much of it is taxed.

Buys and sells against registered liquidity sources pay the configured fee
schedule after launch and a 99% penalty before it. Peer transfers are free.
Owner commands take the identity from --caller.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "path to the YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&callerAddr, "caller", "", "identity of the caller (defaults to token.owner)")

	rootCmd.AddCommand(
		genesisCmd,
		statusCmd,
		balanceCmd,
		allowanceCmd,
		transferCmd,
		approveCmd,
		transferFromCmd,
		setBuyFeesCmd,
		setSellFeesCmd,
		setMaxBalanceCmd,
		setMaxTxCmd,
		launchCmd,
		exemptCmd,
		liquiditySourceCmd,
		transferOwnershipCmd,
		swapBackCmd,
		serveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	cfg   *config.Config
	token *token.Token
	rec   recorder.Recorder
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		logger.Warn("close recorder", zap.Error(err))
	}
}

// caller returns --caller, falling back to the configured owner.
func (a *app) caller() model.Address {
	if callerAddr != "" {
		return model.Address(callerAddr)
	}
	return model.Address(a.cfg.Token.Owner)
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	g, err := cfg.Genesis()
	if err != nil {
		return nil, err
	}
	threshold, err := cfg.SwapBackThreshold()
	if err != nil {
		return nil, err
	}
	rec, err := buildRecorder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	tk, err := token.Open(g, token.Options{
		StatePath:         cfg.Token.StateFile,
		SwapBackThreshold: threshold,
		Recorder:          rec,
		Logger:            logger,
	})
	if err != nil {
		_ = rec.Close()
		return nil, fmt.Errorf("open token: %w", err)
	}
	return &app{cfg: cfg, token: tk, rec: rec}, nil
}

func buildRecorder(ctx context.Context, cfg *config.Config) (recorder.Recorder, error) {
	switch cfg.Database.Driver {
	case "postgres":
		pr, err := recorder.NewPostgresRecorder(ctx, cfg.Database.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("init postgres recorder: %w", err)
		}
		return pr, nil
	case "sqlite":
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			return recorder.NewNoopRecorder(), nil
		}
		return sr, nil
	default:
		return recorder.NewNoopRecorder(), nil
	}
}

// withApp runs fn with a loaded app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
