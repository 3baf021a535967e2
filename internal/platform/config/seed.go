package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SeedAccount is one account entry of a seed file. Amounts are kept as text so
// they reach decimal parsing without a float round trip.
type SeedAccount struct {
	AccountID    string      `mapstructure:"accountId"`
	Balance      string      `mapstructure:"balance"`
	Currency     string      `mapstructure:"currency"`
	Status       string      `mapstructure:"status"`
	CustomLimits *SeedLimits `mapstructure:"customLimits"`
}

// SeedLimits are the optional per-account overrides of a seed entry.
type SeedLimits struct {
	DailyWithdrawal   string `mapstructure:"dailyWithdrawal"`
	DailyTransfer     string `mapstructure:"dailyTransfer"`
	SingleTransaction string `mapstructure:"singleTransaction"`
}

// LoadSeedAccounts reads the "accounts" list of a JSON, YAML or TOML seed file.
func LoadSeedAccounts(path string) ([]SeedAccount, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var accounts []SeedAccount
	if err := v.UnmarshalKey("accounts", &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts in seed file %s: %w", path, err)
	}
	return accounts, nil
}

// DemoSeedAccounts are the accounts a fresh in-memory deployment starts with:
// two customer accounts and the external bank's settlement account.
func DemoSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{
			AccountID: "ACC_123",
			Balance:   "5500",
			Currency:  "TND",
			Status:    "active",
			CustomLimits: &SeedLimits{
				DailyWithdrawal:   "8000",
				DailyTransfer:     "15000",
				SingleTransaction: "2000",
			},
		},
		{AccountID: "ACC_456", Balance: "3000", Currency: "TND", Status: "active"},
		{AccountID: "EXT_999", Balance: "1000000", Currency: "TND", Status: "active"},
	}
}
