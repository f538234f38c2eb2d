// Package config loads service configuration with viper. Values come from
// defaults, an optional equip.yaml, EQUIP_* environment variables and any
// flags bound to the viper instance, in increasing precedence.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

const (
	configFileName = "equip"
	configFileType = "yaml"
	envPrefix      = "EQUIP"
)

// Config keys
const (
	KeyGRPCPort         = "grpc.port"
	KeyRedisAddr        = "redis.addr"
	KeyRedisPassword    = "redis.password"
	KeyRedisDB          = "redis.db"
	KeyRedisPoolSize    = "redis.pool_size"
	KeyRedisTTL         = "redis.ttl"
	KeyMetricsAddr      = "metrics.addr"
	KeyMetricsNamespace = "metrics.namespace"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyLimitDefinitions = "limits.definitions"
	KeyGlobalLimits     = "limits.global"
	KeySetsAutoSave     = "sets.auto_save"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the full service configuration
type Config struct {
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Sets    SetsConfig    `mapstructure:"sets"`
}

// GRPCConfig configures the gRPC listener
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

// RedisConfig configures set persistence. An empty Addr keeps sets in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LimitsConfig seeds limit definitions and global limits of new sets
type LimitsConfig struct {
	Definitions []equipment.LimitDefinition `mapstructure:"definitions"`
	Global      map[string]float64          `mapstructure:"global"`
}

// SetsConfig configures the set registry
type SetsConfig struct {
	AutoSave bool `mapstructure:"auto_save"`
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyGRPCPort, 50051)
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisPoolSize, 10)
	v.SetDefault(KeyRedisTTL, time.Duration(0))
	v.SetDefault(KeyMetricsAddr, ":9090")
	v.SetDefault(KeyMetricsNamespace, "equip")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, LogFormatText)
	v.SetDefault(KeyLimitDefinitions, []map[string]any{
		{"name": "weight", "dimension": string(equipment.DimensionWeight)},
		{"name": "price", "dimension": string(equipment.DimensionPrice)},
	})
	v.SetDefault(KeyGlobalLimits, map[string]float64{})
	v.SetDefault(KeySetsAutoSave, true)
}

// Load reads configuration into v and returns the validated result. path
// names an explicit config file; when empty equip.yaml is searched for in
// the working directory, $HOME/.equip and /etc/equip, and a missing file is
// not an error. A nil v uses a fresh viper instance.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.equip")
		v.AddConfigPath("/etc/equip")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); path != "" || !notFound {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		vb.Fieldf(KeyGRPCPort, "must be between 1 and 65535, got %d", c.GRPC.Port)
	}
	if c.Redis.PoolSize < 0 {
		vb.Fieldf(KeyRedisPoolSize, "must not be negative, got %d", c.Redis.PoolSize)
	}
	if c.Metrics.Addr != "" {
		errors.ValidateRequired(KeyMetricsNamespace, c.Metrics.Namespace, vb)
	}
	errors.ValidateEnum(KeyLogLevel, strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum(KeyLogFormat, c.Log.Format, []string{LogFormatText, LogFormatJSON}, vb)

	defined := make(map[string]struct{}, len(c.Limits.Definitions))
	for _, def := range c.Limits.Definitions {
		if def.Name == "" {
			vb.RequiredField(KeyLimitDefinitions + ".name")
			continue
		}
		if _, dup := defined[def.Name]; dup {
			vb.Fieldf(KeyLimitDefinitions, "duplicate limit %q", def.Name)
		}
		defined[def.Name] = struct{}{}
		if !def.Dimension.IsValid() {
			vb.Fieldf(KeyLimitDefinitions+"."+def.Name, "unknown dimension %q", def.Dimension)
		}
	}
	for name, value := range c.Limits.Global {
		if _, ok := defined[name]; !ok {
			vb.Fieldf(KeyGlobalLimits+"."+name, "unknown limit %q", name)
		}
		errors.ValidateNonNegative(KeyGlobalLimits+"."+name, value, vb)
	}

	return vb.Build()
}

// GlobalLimits returns the configured global limits
func (c *LimitsConfig) GlobalLimits() equipment.Limits {
	if len(c.Global) == 0 {
		return nil
	}
	out := make(equipment.Limits, len(c.Global))
	for name, value := range c.Global {
		out[name] = value
	}
	return out
}

// SlogLevel maps the configured level name to a slog level
func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
