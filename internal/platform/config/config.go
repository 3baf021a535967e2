package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers understood by the binary.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// LimitsConfig holds the global transaction ceilings. Custom per-account limits
// can only raise these, never lower them.
type LimitsConfig struct {
	DailyWithdrawal   decimal.Decimal
	DailyTransfer     decimal.Decimal
	SingleTransaction decimal.Decimal
	MinTransaction    decimal.Decimal
	MinBalance        decimal.Decimal
}

// FeesConfig holds the fee table. Percentages are expressed as 0.5 for 0.5%.
type FeesConfig struct {
	InternalTransferPct   decimal.Decimal
	InterbankTransferPct  decimal.Decimal
	WithdrawalSameBank    decimal.Decimal
	WithdrawalOtherBank   decimal.Decimal
	CurrencyConversionPct decimal.Decimal
	CommissionRate        decimal.Decimal
}

// FraudConfig holds the fraud scoring thresholds.
type FraudConfig struct {
	SuspiciousAmount   decimal.Decimal
	MediumAmount       decimal.Decimal
	RapidCount         int
	RapidWindow        time.Duration
	BusinessHoursStart int
	BusinessHoursEnd   int
}

// ExchangeConfig holds the spot-rate table used for conversions.
// FallbackRates are quoted as units of currency per one unit of BaseCurrency.
type ExchangeConfig struct {
	BaseCurrency  string
	FallbackRates map[string]decimal.Decimal
}

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageDriver  string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventStream   string

	CategoryServiceURL string
	CategoryCacheTTL   time.Duration
	CategoryTimeout    time.Duration

	DefaultCurrency    string
	StoreCallTimeout   time.Duration
	AutomationMaxDepth int
	Location           *time.Location

	Limits   LimitsConfig
	Fees     FeesConfig
	Fraud    FraudConfig
	Exchange ExchangeConfig

	RateLimit          string
	CORSAllowedOrigins []string

	SeedAccountsFile string
	SeedDemoAccounts bool
}

func setDefaults() {
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("EVENT_STREAM", "transaction.events")

	viper.SetDefault("CATEGORY_SERVICE_URL", "")
	viper.SetDefault("CATEGORY_CACHE_TTL", "5m")
	viper.SetDefault("CATEGORY_TIMEOUT", "3s")

	viper.SetDefault("DEFAULT_CURRENCY", "TND")
	viper.SetDefault("STORE_CALL_TIMEOUT", "5s")
	viper.SetDefault("AUTOMATION_MAX_DEPTH", 1)
	viper.SetDefault("TIMEZONE", "Africa/Tunis")

	viper.SetDefault("LIMIT_DAILY_WITHDRAWAL", "5000")
	viper.SetDefault("LIMIT_DAILY_TRANSFER", "10000")
	viper.SetDefault("LIMIT_SINGLE_TRANSACTION", "2000")
	viper.SetDefault("LIMIT_MIN_TRANSACTION", "1")
	viper.SetDefault("MIN_ACCOUNT_BALANCE", "10")

	viper.SetDefault("FEE_INTERNAL_TRANSFER_PCT", "0.5")
	viper.SetDefault("FEE_INTERBANK_TRANSFER_PCT", "2")
	viper.SetDefault("FEE_WITHDRAWAL_SAME_BANK", "0")
	viper.SetDefault("FEE_WITHDRAWAL_OTHER_BANK", "5")
	viper.SetDefault("FEE_CURRENCY_CONVERSION_PCT", "1")
	viper.SetDefault("FEE_COMMISSION_RATE", "0.5")

	viper.SetDefault("FRAUD_SUSPICIOUS_AMOUNT", "10000")
	viper.SetDefault("FRAUD_MEDIUM_AMOUNT", "5000")
	viper.SetDefault("FRAUD_RAPID_COUNT", 5)
	viper.SetDefault("FRAUD_RAPID_WINDOW", "1h")
	viper.SetDefault("BUSINESS_HOURS_START", 8)
	viper.SetDefault("BUSINESS_HOURS_END", 18)

	viper.SetDefault("EXCHANGE_BASE_CURRENCY", "USD")
	viper.SetDefault("EXCHANGE_FALLBACK_RATES", "USD:1,TND:3.2,EUR:0.92,GBP:0.78,SAR:3.75,AED:3.67,CAD:1.35,CHF:0.9")

	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetDefault("SEED_ACCOUNTS_FILE", "")
	viper.SetDefault("SEED_DEMO_ACCOUNTS", true)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		log.Printf("Warning: Unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}
	if cfg.StorageDriver == StorageDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.EventStream = viper.GetString("EVENT_STREAM")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Transaction events will not be published.")
	}

	cfg.CategoryServiceURL = strings.TrimRight(viper.GetString("CATEGORY_SERVICE_URL"), "/")
	cfg.CategoryCacheTTL = durationOrDefault("CATEGORY_CACHE_TTL", 5*time.Minute)
	cfg.CategoryTimeout = durationOrDefault("CATEGORY_TIMEOUT", 3*time.Second)

	cfg.DefaultCurrency = strings.ToUpper(viper.GetString("DEFAULT_CURRENCY"))
	cfg.StoreCallTimeout = durationOrDefault("STORE_CALL_TIMEOUT", 5*time.Second)
	cfg.AutomationMaxDepth = viper.GetInt("AUTOMATION_MAX_DEPTH")
	if cfg.AutomationMaxDepth < 0 {
		log.Printf("Warning: Negative AUTOMATION_MAX_DEPTH (%d). Automation rules are disabled.\n", cfg.AutomationMaxDepth)
		cfg.AutomationMaxDepth = 0
	}

	tz := viper.GetString("TIMEZONE")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("Warning: Invalid TIMEZONE ('%s'). Defaulting to UTC.\n", tz)
		loc = time.UTC
	}
	cfg.Location = loc

	cfg.Limits = LimitsConfig{
		DailyWithdrawal:   decimalOrDefault("LIMIT_DAILY_WITHDRAWAL", 5000),
		DailyTransfer:     decimalOrDefault("LIMIT_DAILY_TRANSFER", 10000),
		SingleTransaction: decimalOrDefault("LIMIT_SINGLE_TRANSACTION", 2000),
		MinTransaction:    decimalOrDefault("LIMIT_MIN_TRANSACTION", 1),
		MinBalance:        decimalOrDefault("MIN_ACCOUNT_BALANCE", 10),
	}

	cfg.Fees = FeesConfig{
		InternalTransferPct:   decimalOrDefault("FEE_INTERNAL_TRANSFER_PCT", 0.5),
		InterbankTransferPct:  decimalOrDefault("FEE_INTERBANK_TRANSFER_PCT", 2),
		WithdrawalSameBank:    decimalOrDefault("FEE_WITHDRAWAL_SAME_BANK", 0),
		WithdrawalOtherBank:   decimalOrDefault("FEE_WITHDRAWAL_OTHER_BANK", 5),
		CurrencyConversionPct: decimalOrDefault("FEE_CURRENCY_CONVERSION_PCT", 1),
		CommissionRate:        decimalOrDefault("FEE_COMMISSION_RATE", 0.5),
	}

	cfg.Fraud = FraudConfig{
		SuspiciousAmount:   decimalOrDefault("FRAUD_SUSPICIOUS_AMOUNT", 10000),
		MediumAmount:       decimalOrDefault("FRAUD_MEDIUM_AMOUNT", 5000),
		RapidCount:         viper.GetInt("FRAUD_RAPID_COUNT"),
		RapidWindow:        durationOrDefault("FRAUD_RAPID_WINDOW", time.Hour),
		BusinessHoursStart: viper.GetInt("BUSINESS_HOURS_START"),
		BusinessHoursEnd:   viper.GetInt("BUSINESS_HOURS_END"),
	}

	cfg.Exchange = ExchangeConfig{
		BaseCurrency:  strings.ToUpper(viper.GetString("EXCHANGE_BASE_CURRENCY")),
		FallbackRates: ParseRates(viper.GetString("EXCHANGE_FALLBACK_RATES")),
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.SeedAccountsFile = viper.GetString("SEED_ACCOUNTS_FILE")
	cfg.SeedDemoAccounts = viper.GetBool("SEED_DEMO_ACCOUNTS")

	return cfg, nil
}

// Default returns the configuration used when no environment is present.
func Default() *Config {
	return &Config{
		Port:               "8080",
		StorageDriver:      StorageDriverMemory,
		MigrationsPath:     "file://migrations",
		EventStream:        "transaction.events",
		CategoryCacheTTL:   5 * time.Minute,
		CategoryTimeout:    3 * time.Second,
		DefaultCurrency:    "TND",
		StoreCallTimeout:   5 * time.Second,
		AutomationMaxDepth: 1,
		Location:           time.UTC,
		Limits: LimitsConfig{
			DailyWithdrawal:   decimal.NewFromInt(5000),
			DailyTransfer:     decimal.NewFromInt(10000),
			SingleTransaction: decimal.NewFromInt(2000),
			MinTransaction:    decimal.NewFromInt(1),
			MinBalance:        decimal.NewFromInt(10),
		},
		Fees: FeesConfig{
			InternalTransferPct:   decimal.RequireFromString("0.5"),
			InterbankTransferPct:  decimal.NewFromInt(2),
			WithdrawalSameBank:    decimal.Zero,
			WithdrawalOtherBank:   decimal.NewFromInt(5),
			CurrencyConversionPct: decimal.NewFromInt(1),
			CommissionRate:        decimal.RequireFromString("0.5"),
		},
		Fraud: FraudConfig{
			SuspiciousAmount:   decimal.NewFromInt(10000),
			MediumAmount:       decimal.NewFromInt(5000),
			RapidCount:         5,
			RapidWindow:        time.Hour,
			BusinessHoursStart: 8,
			BusinessHoursEnd:   18,
		},
		Exchange: ExchangeConfig{
			BaseCurrency:  "USD",
			FallbackRates: ParseRates("USD:1,TND:3.2,EUR:0.92,GBP:0.78,SAR:3.75,AED:3.67,CAD:1.35,CHF:0.9"),
		},
		RateLimit:          "100-M",
		CORSAllowedOrigins: []string{"*"},
		SeedDemoAccounts:   true,
	}
}

// ParseRates parses "USD:1,TND:3.2" into a rate table. Malformed pairs are skipped.
func ParseRates(raw string) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range splitList(raw) {
		code, value, ok := strings.Cut(pair, ":")
		if !ok {
			log.Printf("Warning: Ignoring malformed exchange rate entry '%s'.\n", pair)
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() {
			log.Printf("Warning: Ignoring invalid exchange rate for '%s'.\n", code)
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func decimalOrDefault(key string, fallback float64) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %v.\n", key, raw, fallback)
		}
		return decimal.NewFromFloat(fallback)
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
