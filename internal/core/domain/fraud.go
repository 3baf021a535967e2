package domain

// Fraud flags raised by the scorer.
const (
	FlagSuspiciousAmount     = "SUSPICIOUS_AMOUNT"
	FlagRapidTransactions    = "RAPID_TRANSACTIONS"
	FlagOutsideBusinessHours = "OUTSIDE_BUSINESS_HOURS"
)

// FraudAssessment is the fraud scorer's verdict for a transaction. It never blocks.
type FraudAssessment struct {
	SecurityLevel SecurityLevel `json:"securityLevel"`
	FraudFlag     bool          `json:"fraudFlag"`
	Flags         []string      `json:"flags"`
}

// Apply copies the assessment onto tx.
func (a FraudAssessment) Apply(tx *Transaction) {
	tx.SecurityLevel = a.SecurityLevel
	tx.FraudFlag = a.FraudFlag
	tx.FraudFlags = a.Flags
}
