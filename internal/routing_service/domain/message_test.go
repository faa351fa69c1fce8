package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeMessageResults(t *testing.T) {
	t.Run("empty input yields successful empty result", func(t *testing.T) {
		merged := MergeMessageResults(nil)
		require.NotNil(t, merged)
		assert.True(t, merged.Status)
		assert.Zero(t, merged.CreditsUsed)
		assert.Empty(t, merged.Reports)
	})

	t.Run("one failure fails the aggregate", func(t *testing.T) {
		merged := MergeMessageResults([]*MessageResult{
			{Status: true, Reports: map[string]DeliveryReport{}},
			{Status: false, ErrorMessage: "gateway down", Reports: map[string]DeliveryReport{}},
			{Status: true, Reports: map[string]DeliveryReport{}},
		})
		assert.False(t, merged.Status)
	})

	t.Run("credits sum, balance and error take last value", func(t *testing.T) {
		merged := MergeMessageResults([]*MessageResult{
			{Status: true, CreditsUsed: 2.5, CreditBalance: 97.5, ErrorMessage: "first"},
			{Status: true, CreditsUsed: 1.0, CreditBalance: 96.5, ErrorMessage: ""},
		})
		assert.True(t, merged.Status)
		assert.Equal(t, 3.5, merged.CreditsUsed)
		assert.Equal(t, 96.5, merged.CreditBalance)
		// Last result had no error, so the aggregate carries none.
		assert.Empty(t, merged.ErrorMessage)
	})

	t.Run("reports union across gateways", func(t *testing.T) {
		merged := MergeMessageResults([]*MessageResult{
			{Status: true, Reports: map[string]DeliveryReport{
				"2348191234500": {Recipient: "2348191234500", Status: "SENT", Gateway: "cdma"},
			}},
			nil,
			{Status: true, Reports: map[string]DeliveryReport{
				"2348031234500": {Recipient: "2348031234500", Status: "SENT", Gateway: "gsm"},
			}},
		})
		require.Len(t, merged.Reports, 2)
		assert.Equal(t, "cdma", merged.Reports["2348191234500"].Gateway)
		assert.Equal(t, "gsm", merged.Reports["2348031234500"].Gateway)
	})
}
