package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"TaxLedger/internal/model"
	"TaxLedger/internal/token"
)

// Config holds all application configuration.
type Config struct {
	Token struct {
		Name                 string            `yaml:"name"`
		Symbol               string            `yaml:"symbol"`
		Decimals             uint8             `yaml:"decimals"`
		TotalSupply          string            `yaml:"total_supply"`
		Owner                string            `yaml:"owner"`
		Contract             string            `yaml:"contract"`
		BurnAddress          string            `yaml:"burn_address"`
		LiquiditySources     []string          `yaml:"liquidity_sources"`
		BuyFees              model.FeeSchedule `yaml:"buy_fees"`
		SellFees             model.FeeSchedule `yaml:"sell_fees"`
		MaxBalancePercentage uint64            `yaml:"max_balance_percentage"`
		MaxTxPercentage      uint64            `yaml:"max_tx_percentage"`
		StateFile            string            `yaml:"state_file"`
	} `yaml:"token"`
	SwapBack struct {
		Cron       string `yaml:"cron"`
		ReportCron string `yaml:"report_cron"`
		Threshold  string `yaml:"threshold"`
		Router     string `yaml:"router"`
	} `yaml:"swap_back"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		Driver      string `yaml:"driver"`
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TOKEN_OWNER"); v != "" {
		cfg.Token.Owner = v
	}
	if v := os.Getenv("TOKEN_CONTRACT"); v != "" {
		cfg.Token.Contract = v
	}
	if v := os.Getenv("TOKEN_LIQUIDITY_SOURCES"); v != "" {
		cfg.Token.LiquiditySources = splitList(v)
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.Token.StateFile = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SWAP_BACK_THRESHOLD"); v != "" {
		cfg.SwapBack.Threshold = v
	}
	if v := os.Getenv("SWAP_BACK_ROUTER"); v != "" {
		cfg.SwapBack.Router = v
	}
	if v := os.Getenv("CRON_SWAP_BACK"); v != "" {
		cfg.SwapBack.Cron = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("MAX_TX_PERCENTAGE"); v != "" {
		if pct, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Token.MaxTxPercentage = pct
		}
	}

	// Defaults
	if cfg.Token.Name == "" {
		cfg.Token.Name = "Catmao"
	}
	if cfg.Token.Symbol == "" {
		cfg.Token.Symbol = "CATMAO"
	}
	if cfg.Token.Decimals == 0 {
		cfg.Token.Decimals = 18
	}
	if cfg.Token.TotalSupply == "" {
		cfg.Token.TotalSupply = "100000000000000000000000000"
	}
	if cfg.Token.BurnAddress == "" {
		cfg.Token.BurnAddress = string(token.DefaultBurnAddress)
	}
	if cfg.Token.MaxBalancePercentage == 0 {
		cfg.Token.MaxBalancePercentage = 2
	}
	if cfg.Token.MaxTxPercentage == 0 {
		cfg.Token.MaxTxPercentage = 5
	}
	if cfg.Token.StateFile == "" {
		cfg.Token.StateFile = "data/token_state.json"
	}
	if cfg.SwapBack.Cron == "" {
		cfg.SwapBack.Cron = "0 */5 * * * *"
	}
	if cfg.SwapBack.ReportCron == "" {
		cfg.SwapBack.ReportCron = "0 0 9 * * *"
	}
	if cfg.SwapBack.Threshold == "" {
		cfg.SwapBack.Threshold = "100000000000000000000000"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/taxledger.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Token.Owner == "" {
		return fmt.Errorf("token.owner is required")
	}
	if c.Token.Contract == "" {
		return fmt.Errorf("token.contract is required")
	}
	if _, err := uint256.FromDecimal(c.Token.TotalSupply); err != nil {
		return fmt.Errorf("token.total_supply: %w", err)
	}
	if _, err := uint256.FromDecimal(c.SwapBack.Threshold); err != nil {
		return fmt.Errorf("swap_back.threshold: %w", err)
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Genesis builds the initial distribution from the token section.
func (c *Config) Genesis() (token.Genesis, error) {
	supply, err := model.ParseAmount(c.Token.TotalSupply)
	if err != nil {
		return token.Genesis{}, fmt.Errorf("token.total_supply: %w", err)
	}
	g := token.Genesis{
		Metadata: model.TokenMetadata{
			Name:     c.Token.Name,
			Symbol:   c.Token.Symbol,
			Decimals: c.Token.Decimals,
		},
		TotalSupply:          supply,
		Owner:                model.Address(c.Token.Owner),
		Contract:             model.Address(c.Token.Contract),
		BurnAddress:          model.Address(c.Token.BurnAddress),
		BuyFees:              c.Token.BuyFees,
		SellFees:             c.Token.SellFees,
		MaxBalancePercentage: c.Token.MaxBalancePercentage,
		MaxTxPercentage:      c.Token.MaxTxPercentage,
	}
	for _, a := range c.Token.LiquiditySources {
		g.LiquiditySources = append(g.LiquiditySources, model.Address(a))
	}
	return g, nil
}

// SwapBackThreshold parses swap_back.threshold as base units.
func (c *Config) SwapBackThreshold() (*uint256.Int, error) {
	return model.ParseAmount(c.SwapBack.Threshold)
}
