package mapping

import (
	"database/sql"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
)

// ToModelTransaction converts a domain Transaction to a ledger row
func ToModelTransaction(d domain.Transaction) models.Transaction {
	flags := d.FraudFlags
	if flags == nil {
		flags = []string{}
	}
	return models.Transaction{
		TransactionID:    d.TransactionID,
		Type:             string(d.Type),
		FromAccount:      nullString(d.FromAccount),
		ToAccount:        nullString(d.ToAccount),
		Amount:           d.Amount,
		Currency:         d.Currency,
		Fees:             d.Fees,
		Commission:       d.Commission,
		Status:           string(d.Status),
		Timestamp:        d.Timestamp,
		Description:      d.Description,
		SecurityLevel:    string(d.SecurityLevel),
		FraudFlag:        d.FraudFlag,
		FraudFlags:       flags,
		CategoryID:       nullStringPtr(d.CategoryID),
		CategoryName:     nullStringPtr(d.CategoryName),
		Reference:        nullStringPtr(d.Reference),
		AutomationRuleID: nullStringPtr(d.AutomationRuleID),
		TriggeredBy:      nullStringPtr(d.TriggeredBy),
		Depth:            d.Depth,
	}
}

// ToDomainTransaction converts a ledger row to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	var flags []string
	if len(m.FraudFlags) > 0 {
		flags = m.FraudFlags
	}
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		Type:             domain.TransactionType(m.Type),
		FromAccount:      m.FromAccount.String,
		ToAccount:        m.ToAccount.String,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Fees:             m.Fees,
		Commission:       m.Commission,
		Status:           domain.TransactionStatus(m.Status),
		Timestamp:        m.Timestamp.UTC(),
		Description:      m.Description,
		SecurityLevel:    domain.SecurityLevel(m.SecurityLevel),
		FraudFlag:        m.FraudFlag,
		FraudFlags:       flags,
		CategoryID:       stringPtr(m.CategoryID),
		CategoryName:     stringPtr(m.CategoryName),
		Reference:        stringPtr(m.Reference),
		AutomationRuleID: stringPtr(m.AutomationRuleID),
		TriggeredBy:      stringPtr(m.TriggeredBy),
		Depth:            m.Depth,
	}
}

// ToDomainTransactionSlice converts ledger rows to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
