package mapping

import (
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
)

// Audit columns mirror domain.AuditFields field for field, so both directions
// are plain struct conversions. Adding a field on one side only breaks the build here.

func toModelAudit(d domain.AuditFields) models.AuditFields {
	return models.AuditFields(d)
}

// toDomainAudit normalises timestamps to UTC; pgx scans timestamptz in the
// session time zone.
func toDomainAudit(m models.AuditFields) domain.AuditFields {
	a := domain.AuditFields(m)
	a.CreatedAt = a.CreatedAt.UTC()
	a.LastUpdatedAt = a.LastUpdatedAt.UTC()
	return a
}
