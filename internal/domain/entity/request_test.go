package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Run("accepts known symbols", func(t *testing.T) {
		for _, raw := range []string{
			"DRAFT", "PENDING_FINANCIAL_APPROVAL", "APPROVED",
			"REJECTED", "PAID", "CANCELLED",
		} {
			s, err := ParseStatus(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, s.String())
		}
	})

	t.Run("rejects unknown symbol", func(t *testing.T) {
		_, err := ParseStatus("PENDING")
		assert.Error(t, err)
	})

	t.Run("rejects empty symbol", func(t *testing.T) {
		_, err := ParseStatus("")
		assert.Error(t, err)
	})
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("MEALS")
	require.NoError(t, err)
	assert.Equal(t, CategoryMeals, c)

	_, err = ParseCategory("GROCERIES")
	assert.Error(t, err)
}

func TestRequest_Capabilities(t *testing.T) {
	tests := []struct {
		status      Status
		editable    bool
		cancellable bool
		approvable  bool
		payable     bool
	}{
		{StatusDraft, true, true, false, false},
		{StatusPendingFinancialApproval, false, true, true, false},
		{StatusApproved, false, false, false, true},
		{StatusRejected, false, false, false, false},
		{StatusPaid, false, false, false, false},
		{StatusCancelled, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := &ReimbursementRequest{Status: tt.status}
			assert.Equal(t, tt.editable, r.Editable())
			assert.Equal(t, tt.cancellable, r.Cancellable())
			assert.Equal(t, tt.approvable, r.Approvable())
			assert.Equal(t, tt.payable, r.Payable())
		})
	}
}
