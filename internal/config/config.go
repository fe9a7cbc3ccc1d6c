package config

import (
	"context"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/RishalEP/tenx-blockchain/common"
	"github.com/RishalEP/tenx-blockchain/internal/postgres"
	tenxconfig "github.com/RishalEP/tenx-blockchain/modules/tenx/config"
	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/RishalEP/tenx-blockchain/pkg/logger/slogx"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestcontext"
	"github.com/RishalEP/tenx-blockchain/pkg/middleware/requestlogger"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	isInit bool
	mu     sync.Mutex
	config = defaultConfig()

	// dotEnvFile is loaded into the process environment before viper reads
	// it. Variables already set are not overridden.
	dotEnvFile = ".env"
)

func defaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkLocal,
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
	}
}

type Config struct {
	EnableModules []string          `mapstructure:"enable_modules"`
	APIOnly       bool              `mapstructure:"api_only"`
	Logger        logger.Config     `mapstructure:"logger"`
	Network       common.Network    `mapstructure:"network"`
	HTTPServer    HTTPServerConfig  `mapstructure:"http_server"`
	Postgres      postgres.Config   `mapstructure:"postgres"`
	Tenx          tenxconfig.Config `mapstructure:"tenx"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"requestip"`

	// DisableMetrics turns off the /metrics endpoint.
	DisableMetrics bool `mapstructure:"disable_metrics"`
}

// Parse parse the configuration from environment variables
func Parse(configFile ...string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile...)
}

// Load returns the loaded configuration
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if isInit {
		return *config
	}
	return parse()
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	Viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}

// SetDefault sets the default value for this key.
// SetDefault is case-insensitive for a key.
// Default only used when no value is provided by the user via flag, config or ENV.
func SetDefault(key string, value any) { viper.SetDefault(key, value) }

func parse(configFile ...string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))

	if len(configFile) > 0 && configFile[0] != "" {
		viper.SetConfigFile(configFile[0])
	} else {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")
	}

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WarnContext(ctx, "Failed to load dotenv file", slog.String("file", dotEnvFile), slogx.Error(err))
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var errNotfound viper.ConfigFileNotFoundError
		if errors.As(err, &errNotfound) {
			logger.WarnContext(ctx, "Config file not found, use default config value", slogx.Error(err))
		} else {
			logger.WarnContext(ctx, "Failed to read config file, use default config value", slogx.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		logger.WarnContext(ctx, "Failed to unmarshal config, use default config value", slogx.Error(err))
	}

	isInit = true

	return *config
}
