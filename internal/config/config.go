package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/AthenaOracle/athena-genesis/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	TokenSymbol string `mapstructure:"token_symbol"`
}

// DatabaseConfig encapsulates the optional PostgreSQL mirror.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// OracleConfig locates the oracle targets file and names the symbol to settle on.
type OracleConfig struct {
	ConfigPath     string        `mapstructure:"config_path"`
	TargetSymbol   string        `mapstructure:"target_symbol"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// EngineConfig holds scoring and allocation parameters.
type EngineConfig struct {
	TokenDecimals   int     `mapstructure:"token_decimals"`
	TruthPowerAlpha float64 `mapstructure:"truth_power_alpha"`
	EmitProofs      bool    `mapstructure:"emit_proofs"`
}

// PathsConfig collects on-disk inputs and outputs.
type PathsConfig struct {
	AgentsFile     string `mapstructure:"agents_file"`
	DAOSplitFile   string `mapstructure:"dao_split_file"`
	ReportDir      string `mapstructure:"report_dir"`
	LedgerFile     string `mapstructure:"ledger_file"`
	AuditFile      string `mapstructure:"audit_file"`
	ReputationFile string `mapstructure:"reputation_file"`
	StreaksFile    string `mapstructure:"streaks_file"`
	BenchmarkDir   string `mapstructure:"benchmark_dir"`
}

// WatchConfig governs the sequential epoch loop.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// NotifyConfig routes epoch completion summaries.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram bot credentials.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ATHENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "athena-genesis")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.token_symbol", "ATA")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("oracle.config_path", "oracle.yaml")
	v.SetDefault("oracle.target_symbol", "BTC-USD")
	v.SetDefault("oracle.request_timeout", "5s")

	v.SetDefault("engine.token_decimals", 18)
	v.SetDefault("engine.truth_power_alpha", 2.0)
	v.SetDefault("engine.emit_proofs", false)

	v.SetDefault("paths.agents_file", "agents.json")
	v.SetDefault("paths.dao_split_file", "dao_split.yaml")
	v.SetDefault("paths.report_dir", "out")
	v.SetDefault("paths.ledger_file", "ledger.csv")
	v.SetDefault("paths.audit_file", "audit.jsonl")
	v.SetDefault("paths.reputation_file", "state/reputation.json")
	v.SetDefault("paths.streaks_file", "state/streaks.json")
	v.SetDefault("paths.benchmark_dir", "out")

	v.SetDefault("watch.interval", "1h")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Engine.TokenDecimals < 0 || c.Engine.TokenDecimals > 30 {
		return fmt.Errorf("engine.token_decimals must be within [0,30]")
	}
	if c.Engine.TruthPowerAlpha <= 0 {
		return fmt.Errorf("engine.truth_power_alpha must be greater than zero")
	}
	if c.Oracle.TargetSymbol == "" {
		return fmt.Errorf("oracle.target_symbol is required")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}
