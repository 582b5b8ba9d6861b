// Package constants provides shared constants for the loan-cost application.
package constants

// DateLayout is the format expected for dates in config files, CLI flags and
// API payloads, and is also the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// DaysPerMonth is the regulatory month length used to convert a term in
	// days into months for interest accrual, service fees and installment count.
	DaysPerMonth = 30

	// CentPlaces is the number of decimal places money is rounded to.
	CentPlaces = 2

	// CadenceDays is the longest calendar month, used as the tolerance when
	// comparing the last due date against the maturity date.
	CadenceDays = 31

	// MaxSalaryDay is the largest valid day-of-month for salary alignment.
	MaxSalaryDay = 31

	// MaxTermDays is the longest term ever accepted (100 years of 365 days).
	// Configured limits can only tighten it.
	MaxTermDays = 36500
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the indented JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix viper uses for environment overrides,
	// e.g. LOANCOST_FEES_VATRATE.
	EnvPrefix = "LOANCOST"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Storage and cache defaults
const (
	// BackendMemory selects the in-process implementation of a store or cache.
	BackendMemory = "memory"

	// BackendSQLite selects the SQLite fee-schedule store.
	BackendSQLite = "sqlite"

	// BackendRedis selects the Redis quote cache.
	BackendRedis = "redis"

	// BackendNone disables the quote cache.
	BackendNone = "none"

	// DefaultStorePath is the default SQLite database path.
	DefaultStorePath = "loan-cost.db"

	// DefaultRedisAddress is the default Redis address for the quote cache.
	DefaultRedisAddress = "localhost:6379"

	// InitialFeeScheduleName names the fee schedule seeded from config.
	InitialFeeScheduleName = "initial"
)
