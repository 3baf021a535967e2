package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraudScorer_Assess(t *testing.T) {
	evening := func() time.Time { return time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		now   func() time.Time
		tx    domain.Transaction
		level domain.SecurityLevel
		flags []string
	}{
		{"small amount", fixedClock, deposit("A", "100"), domain.SecurityLow, []string{}},
		{"medium amount in hours", fixedClock, deposit("A", "6000"), domain.SecurityMedium, []string{}},
		{"medium amount after hours", evening, deposit("A", "6000"), domain.SecurityMedium, []string{domain.FlagOutsideBusinessHours}},
		{"small amount after hours", evening, deposit("A", "100"), domain.SecurityLow, []string{}},
		{"suspicious amount", fixedClock, deposit("A", "10000"), domain.SecurityHigh, []string{domain.FlagSuspiciousAmount}},
		{"suspicious amount after hours", evening, deposit("A", "12000"), domain.SecurityHigh, []string{domain.FlagSuspiciousAmount, domain.FlagOutsideBusinessHours}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := services.NewFraudScorer(testConfig().Fraud, newStores().ledger, tt.now, time.UTC)

			got, err := scorer.Assess(context.Background(), tt.tx)
			require.NoError(t, err)
			assert.Equal(t, tt.level, got.SecurityLevel)
			assert.ElementsMatch(t, tt.flags, got.Flags)
			assert.Equal(t, len(tt.flags) > 0, got.FraudFlag)
		})
	}
}

func TestFraudScorer_RapidTransactions(t *testing.T) {
	ctx := context.Background()
	st := newStores()
	scorer := services.NewFraudScorer(testConfig().Fraud, st.ledger, fixedClock, time.UTC)

	insert := func(id string, at time.Time, status domain.TransactionStatus) {
		_, err := st.ledger.Insert(ctx, domain.Transaction{
			TransactionID: id, Type: domain.Withdrawal, FromAccount: "A",
			Amount: dec("10"), Status: status, Timestamp: at,
		})
		require.NoError(t, err)
	}

	// Old and failed transactions do not count towards velocity.
	insert("old", fixedNow.Add(-2*time.Hour), domain.StatusCompleted)
	insert("failed", fixedNow.Add(-time.Minute), domain.StatusFailed)
	for i := 0; i < 4; i++ {
		insert(fmt.Sprintf("t%d", i), fixedNow.Add(-time.Duration(i+1)*time.Minute), domain.StatusCompleted)
	}

	got, err := scorer.Assess(ctx, withdrawal("A", "10"))
	require.NoError(t, err)
	assert.Equal(t, domain.SecurityLow, got.SecurityLevel)
	assert.False(t, got.FraudFlag)

	insert("t4", fixedNow.Add(-30*time.Second), domain.StatusCompleted)

	got, err = scorer.Assess(ctx, withdrawal("A", "10"))
	require.NoError(t, err)
	assert.Equal(t, domain.SecurityHigh, got.SecurityLevel)
	assert.True(t, got.FraudFlag)
	assert.Equal(t, []string{domain.FlagRapidTransactions}, got.Flags)

	// Velocity is tracked per payer.
	got, err = scorer.Assess(ctx, withdrawal("B", "10"))
	require.NoError(t, err)
	assert.Empty(t, got.Flags)
}
