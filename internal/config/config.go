// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/iwvelando/loan-cost/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-cost.
type Configuration struct {
	Fees    loans.FeeConfig `yaml:"fees"`
	Limits  LimitsConfig    `yaml:"limits,omitempty"`
	Logging LoggingConfig   `yaml:"logging,omitempty"`
	Output  OutputConfig    `yaml:"output,omitempty"`
	Cache   CacheConfig     `yaml:"cache,omitempty"`
	Store   StoreConfig     `yaml:"store,omitempty"`
}

// LimitsConfig bounds the loan terms accepted by the calculator.
type LimitsConfig struct {
	MaxTermDays    int             `yaml:"maxTermDays,omitempty"`
	MaxMonthlyRate decimal.Decimal `yaml:"maxMonthlyRate,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// CacheConfig selects where calculated quotes are memoised.
type CacheConfig struct {
	Backend       string        `yaml:"backend,omitempty"` // memory, redis, none
	RedisAddress  string        `yaml:"redisAddress,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty"`
	KeyPrefix     string        `yaml:"keyPrefix,omitempty"`
	TTL           time.Duration `yaml:"ttl,omitempty"`
}

// StoreConfig selects where fee schedule versions are kept.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // memory, sqlite
	Path    string `yaml:"path,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("cache.backend", constants.BackendMemory)
	v.SetDefault("cache.redisAddress", constants.DefaultRedisAddress)
	v.SetDefault("cache.keyPrefix", "loan-cost:quote:")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("store.backend", constants.BackendMemory)
	v.SetDefault("store.path", constants.DefaultStorePath)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		DecimalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// DecimalHookFunc converts YAML strings and numbers into decimal.Decimal.
// Quoting amounts in YAML avoids any float parsing on the way in.
func DecimalHookFunc() mapstructure.DecodeHookFuncType {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case decimal.Decimal:
			return v, nil
		case nil:
			return decimal.Zero, nil
		}
		return nil, fmt.Errorf("cannot convert %T to decimal", data)
	}
}

// CalculatorLimits converts the configured limits for the calculator.
func (c *Configuration) CalculatorLimits() loans.Limits {
	return loans.Limits{
		MaxTermDays:    c.Limits.MaxTermDays,
		MaxMonthlyRate: c.Limits.MaxMonthlyRate,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.ValidateFeeSettings(c.Fees)

	if c.Limits.MaxTermDays <= 0 {
		warnings = append(warnings, fmt.Sprintf("limits.maxTermDays is not set; terms up to %d days will be accepted", constants.MaxTermDays))
	} else if c.Limits.MaxTermDays > constants.MaxTermDays {
		warnings = append(warnings, fmt.Sprintf("limits.maxTermDays %d exceeds the hard ceiling; terms above %d days are always rejected", c.Limits.MaxTermDays, constants.MaxTermDays))
	}
	if !c.Limits.MaxMonthlyRate.IsPositive() {
		warnings = append(warnings, "limits.maxMonthlyRate is not set; any monthly rate will be accepted")
	}

	switch c.Cache.Backend {
	case constants.BackendMemory, constants.BackendRedis, constants.BackendNone, "":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown cache backend %q; caching disabled", c.Cache.Backend))
	}
	switch c.Store.Backend {
	case constants.BackendMemory, constants.BackendSQLite, "":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown store backend %q; using memory", c.Store.Backend))
	}
	return warnings
}
