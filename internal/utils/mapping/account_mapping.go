package mapping

import (
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountID:   d.AccountID,
		Balance:     d.Balance,
		Currency:    d.Currency,
		Status:      string(d.Status),
		FeeWaivers:  ToFeeWaiverColumn(d.FeeWaivers),
		Version:     d.Version,
		AuditFields: toModelAudit(d.AuditFields),
	}
	if d.CustomLimits != nil {
		m.DailyWithdrawalLimit = toNullDecimal(d.CustomLimits.DailyWithdrawal)
		m.DailyTransferLimit = toNullDecimal(d.CustomLimits.DailyTransfer)
		m.SingleTransactionLimit = toNullDecimal(d.CustomLimits.SingleTransaction)
	}
	return m
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountID:   m.AccountID,
		Balance:     m.Balance,
		Currency:    m.Currency,
		Status:      domain.AccountStatus(m.Status),
		Version:     m.Version,
		AuditFields: toDomainAudit(m.AuditFields),
	}
	for _, t := range m.FeeWaivers {
		d.FeeWaivers = append(d.FeeWaivers, domain.TransactionType(t))
	}
	if m.DailyWithdrawalLimit.Valid || m.DailyTransferLimit.Valid || m.SingleTransactionLimit.Valid {
		d.CustomLimits = &domain.CustomLimits{
			DailyWithdrawal:   fromNullDecimal(m.DailyWithdrawalLimit),
			DailyTransfer:     fromNullDecimal(m.DailyTransferLimit),
			SingleTransaction: fromNullDecimal(m.SingleTransactionLimit),
		}
	}
	return d
}

// ToFeeWaiverColumn renders fee waivers for the NOT NULL text[] column.
func ToFeeWaiverColumn(types []domain.TransactionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// ToNullLimits splits custom limits into their nullable columns.
func ToNullLimits(l domain.CustomLimits) (withdrawal, transfer, single decimal.NullDecimal) {
	return toNullDecimal(l.DailyWithdrawal), toNullDecimal(l.DailyTransfer), toNullDecimal(l.SingleTransaction)
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
