package services

import (
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeCalculator prices transactions from the configured fee table.
type FeeCalculator struct {
	fees config.FeesConfig
}

func NewFeeCalculator(fees config.FeesConfig) *FeeCalculator {
	return &FeeCalculator{fees: fees}
}

// Calculate returns the fee, commission and total debit for a transaction of
// txType moving amount. Commission is taken from the unrounded fee and both
// are rounded to cents once, at the end.
func (f *FeeCalculator) Calculate(txType domain.TransactionType, amount decimal.Decimal) domain.FeeBreakdown {
	var fee decimal.Decimal
	commissionable := true

	switch txType {
	case domain.Withdrawal:
		fee = f.fees.WithdrawalSameBank
		commissionable = false
	case domain.InternalTransfer:
		fee = amount.Mul(f.fees.InternalTransferPct).Div(hundred)
	case domain.InterbankTransfer:
		fee = amount.Mul(f.fees.InterbankTransferPct).Div(hundred)
	default:
		fee = decimal.Zero
	}
	commission := decimal.Zero
	if commissionable {
		commission = fee.Mul(f.fees.CommissionRate).Round(domain.MoneyScale)
	}
	fee = fee.Round(domain.MoneyScale)

	total := amount
	if txType.Debits() {
		total = amount.Add(fee)
	}

	return domain.FeeBreakdown{
		Type:       txType,
		Amount:     amount,
		Fees:       fee,
		Commission: commission,
		Total:      total,
	}
}
