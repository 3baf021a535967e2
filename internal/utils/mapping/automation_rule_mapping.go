package mapping

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
)

// ToModelAutomationRule converts a domain rule to a row, encoding its JSON documents.
func ToModelAutomationRule(d domain.AutomationRule) (models.AutomationRule, error) {
	conditions, err := json.Marshal(d.Conditions)
	if err != nil {
		return models.AutomationRule{}, fmt.Errorf("encode conditions of rule %s: %w", d.RuleID, err)
	}
	action, err := json.Marshal(d.Action)
	if err != nil {
		return models.AutomationRule{}, fmt.Errorf("encode action of rule %s: %w", d.RuleID, err)
	}
	limits, err := json.Marshal(d.Limits)
	if err != nil {
		return models.AutomationRule{}, fmt.Errorf("encode limits of rule %s: %w", d.RuleID, err)
	}

	m := models.AutomationRule{
		RuleID:               d.RuleID,
		AccountID:            d.AccountID,
		Name:                 d.Name,
		Description:          d.Description,
		Type:                 string(d.Type),
		Trigger:              string(d.Trigger),
		Conditions:           conditions,
		Action:               action,
		Limits:               limits,
		IsActive:             d.IsActive,
		ExecutionCount:       d.ExecutionCount,
		TotalAmountProcessed: d.TotalAmountProcessed,
		AuditFields:          toModelAudit(d.AuditFields),
	}
	if d.LastExecuted != nil {
		m.LastExecuted = sql.NullTime{Time: *d.LastExecuted, Valid: true}
	}
	return m, nil
}

// ToDomainAutomationRule converts a row to a domain rule, decoding its JSON documents.
func ToDomainAutomationRule(m models.AutomationRule) (domain.AutomationRule, error) {
	d := domain.AutomationRule{
		RuleID:               m.RuleID,
		AccountID:            m.AccountID,
		Name:                 m.Name,
		Description:          m.Description,
		Type:                 domain.RuleType(m.Type),
		Trigger:              domain.RuleTrigger(m.Trigger),
		IsActive:             m.IsActive,
		ExecutionCount:       m.ExecutionCount,
		TotalAmountProcessed: m.TotalAmountProcessed,
		AuditFields:          toDomainAudit(m.AuditFields),
	}
	if err := decodeDocument(m.Conditions, &d.Conditions); err != nil {
		return domain.AutomationRule{}, fmt.Errorf("decode conditions of rule %s: %w", m.RuleID, err)
	}
	if err := decodeDocument(m.Action, &d.Action); err != nil {
		return domain.AutomationRule{}, fmt.Errorf("decode action of rule %s: %w", m.RuleID, err)
	}
	if err := decodeDocument(m.Limits, &d.Limits); err != nil {
		return domain.AutomationRule{}, fmt.Errorf("decode limits of rule %s: %w", m.RuleID, err)
	}
	if m.LastExecuted.Valid {
		t := m.LastExecuted.Time.UTC()
		d.LastExecuted = &t
	}
	return d, nil
}

func decodeDocument(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
