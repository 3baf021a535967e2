package domain

// SagaState is a forward state of the transaction saga.
type SagaState string

const (
	SagaCreated   SagaState = "created"
	SagaValidated SagaState = "validated"
	SagaDebited   SagaState = "debited"
	SagaCredited  SagaState = "credited"
	SagaCommitted SagaState = "committed"
)

// SagaStepStatus records how a step ended.
type SagaStepStatus string

const (
	StepDone        SagaStepStatus = "done"
	StepFailed      SagaStepStatus = "failed"
	StepCompensated SagaStepStatus = "compensated"
	// StepCompensationFailed marks a step whose undo did not apply. Needs manual reconciliation.
	StepCompensationFailed SagaStepStatus = "compensation_failed"
)

// SagaStep is one entry of the saga trail returned to callers.
type SagaStep struct {
	State     SagaState      `json:"state"`
	AccountID string         `json:"accountId,omitempty"`
	Status    SagaStepStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
}

// SagaResult is the outcome of running one transaction through the saga.
type SagaResult struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction"`
	Steps       []SagaStep   `json:"steps"`
}

// ProcessResult is the outcome of a user-submitted transaction including any
// automation rules it triggered.
type ProcessResult struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction"`
	Steps       []SagaStep   `json:"steps"`
	Automation  []RuleResult `json:"automation,omitempty"`
}

// ReversalResult is the outcome of reversing a completed transaction.
type ReversalResult struct {
	Success             bool         `json:"success"`
	OriginalTransaction *Transaction `json:"originalTransaction"`
	ReversalTransaction *Transaction `json:"reversalTransaction"`
	Automation          []RuleResult `json:"automation,omitempty"`
}
