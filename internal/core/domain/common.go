package domain

import (
	"strings"
	"time"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// SystemActor is recorded in audit fields for changes made by the service itself.
const SystemActor = "SYSTEM"

// NewAuditFields stamps a new entity as created and last updated by actor at at.
func NewAuditFields(actor string, at time.Time) AuditFields {
	at = at.UTC()
	return AuditFields{CreatedAt: at, CreatedBy: actor, LastUpdatedAt: at, LastUpdatedBy: actor}
}

// Touch records a change by actor at at, keeping the creation stamp.
func (a *AuditFields) Touch(actor string, at time.Time) {
	a.LastUpdatedAt = at.UTC()
	a.LastUpdatedBy = actor
}

// Clock abstracts time.Now so scoring and limit windows can be tested.
type Clock func() time.Time

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfMonth returns midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
