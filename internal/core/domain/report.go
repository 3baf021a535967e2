package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportPeriod is the window a report covers. A nil bound means unbounded and
// EndDate is exclusive.
type ReportPeriod struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// TypeTotals counts and sums the transactions of one class.
type TypeTotals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Add records one transaction of amount.
func (t *TypeTotals) Add(amount decimal.Decimal) {
	t.Count++
	t.Total = t.Total.Add(amount)
}

// TransactionSummary aggregates every completed transaction in a period.
type TransactionSummary struct {
	TotalTransactions        int             `json:"totalTransactions"`
	TotalDeposits            int             `json:"totalDeposits"`
	TotalWithdrawals         int             `json:"totalWithdrawals"`
	TotalTransfers           int             `json:"totalTransfers"`
	TotalAmount              decimal.Decimal `json:"totalAmount"`
	TotalDepositAmount       decimal.Decimal `json:"totalDepositAmount"`
	TotalWithdrawalAmount    decimal.Decimal `json:"totalWithdrawalAmount"`
	TotalTransferAmount      decimal.Decimal `json:"totalTransferAmount"`
	AverageTransactionAmount decimal.Decimal `json:"averageTransactionAmount"`
	Period                   ReportPeriod    `json:"period"`
}

// AccountStatistics is the money flow of one account over a period.
type AccountStatistics struct {
	AccountID            string          `json:"accountId"`
	AccountBalance       decimal.Decimal `json:"accountBalance"`
	TotalTransactions    int             `json:"totalTransactions"`
	IncomingTransactions int             `json:"incomingTransactions"`
	OutgoingTransactions int             `json:"outgoingTransactions"`
	TotalIncoming        decimal.Decimal `json:"totalIncoming"`
	TotalOutgoing        decimal.Decimal `json:"totalOutgoing"`
	NetFlow              decimal.Decimal `json:"netFlow"`
	Deposits             int             `json:"deposits"`
	Withdrawals          int             `json:"withdrawals"`
	Transfers            int             `json:"transfers"`
	AverageIncoming      decimal.Decimal `json:"averageIncoming"`
	AverageOutgoing      decimal.Decimal `json:"averageOutgoing"`
	Period               ReportPeriod    `json:"period"`
}

// DailyTotals is one day of a monthly breakdown.
type DailyTotals struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyStatistics aggregates one calendar month, with a per-day breakdown of
// the days that had activity.
type MonthlyStatistics struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	MonthName         string          `json:"monthName"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Deposits          TypeTotals      `json:"deposits"`
	Withdrawals       TypeTotals      `json:"withdrawals"`
	Transfers         TypeTotals      `json:"transfers"`
	DailyBreakdown    []DailyTotals   `json:"dailyBreakdown"`
}

// DailyTrend is one day of a trend report.
type DailyTrend struct {
	Date        string          `json:"date"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Deposits    int             `json:"deposits"`
	Withdrawals int             `json:"withdrawals"`
	Transfers   int             `json:"transfers"`
}

// TrendReport is the daily activity over the last Days days, oldest day first.
type TrendReport struct {
	Days              int                             `json:"days"`
	Type              *TransactionType                `json:"type,omitempty"`
	TotalTransactions int                             `json:"totalTransactions"`
	TypeStatistics    map[TransactionType]*TypeTotals `json:"typeStatistics"`
	Trends            []DailyTrend                    `json:"trends"`
}
