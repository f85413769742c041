package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log            Logger         `mapstructure:"logger"`
	API            API            `mapstructure:"api"`
	MissionControl MissionControl `mapstructure:"mission_control"`
	Backtest       Backtest       `mapstructure:"backtest"`
	Cache          Cache          `mapstructure:"cache"`
	Scheduler      Scheduler      `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port int `mapstructure:"port"`
}

// MissionControl points at the external CRUD API that owns positions,
// portfolio, and the activity feed. This service only reads from it,
// except for the fire-and-forget activity POST.
type MissionControl struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	UserAgent        string        `mapstructure:"user_agent"`
	AgentName        string        `mapstructure:"agent_name"`
}

type Backtest struct {
	DefaultTrials     int    `mapstructure:"default_trials"`
	MinTradesPerTrial int    `mapstructure:"min_trades_per_trial"`
	MaxTrialWorkers   int    `mapstructure:"max_trial_workers"`
	BaseSeed          int64  `mapstructure:"base_seed"`
	DeliverablesDir   string `mapstructure:"deliverables_dir"`
	RegimePath        string `mapstructure:"regime_path"`
	StartingCapital   float64 `mapstructure:"starting_capital"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Scheduler struct {
	ReportCron string `mapstructure:"report_cron"`
}

func Load() (*Config, error) {
	// Local development convenience, missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, env vars and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("mission_control.base_url", "https://mission-control-api.roguefamilyfarms.workers.dev/api")
	viper.SetDefault("mission_control.timeout", 15*time.Second)
	viper.SetDefault("mission_control.max_request_per_min", 60)
	viper.SetDefault("mission_control.user_agent", "Mozilla/5.0 (compatible; AtlasSquad/1.0)")
	viper.SetDefault("mission_control.agent_name", "backtest")
	viper.SetDefault("backtest.default_trials", 50)
	viper.SetDefault("backtest.min_trades_per_trial", 5)
	viper.SetDefault("backtest.max_trial_workers", 8)
	viper.SetDefault("backtest.base_seed", 0)
	viper.SetDefault("backtest.deliverables_dir", "deliverables")
	viper.SetDefault("backtest.regime_path", "regime/current-signal.json")
	viper.SetDefault("backtest.starting_capital", 3000)
	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("scheduler.report_cron", "")
}
