package eventlog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceID(t *testing.T) {
	id := NewTraceID()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)

	other := NewTraceID()
	assert.NotEqual(t, id, other)
}

func TestNewSpanID(t *testing.T) {
	id := NewSpanID()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), id)
}

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID("ord")
	assert.Regexp(t, regexp.MustCompile(`^ord-[0-9a-z]+-[0-9a-z]{8}$`), id)
}

func TestNewBatchID(t *testing.T) {
	id := NewBatchID("upload-svc")
	assert.Regexp(t, regexp.MustCompile(`^batch-\d{8}-upload-svc-[0-9a-z]{6}$`), id)
}

func TestMaskLast4(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "****"},
		{"short", "12", "****"},
		{"exactly four", "1234", "****"},
		{"longer", "4242424242424242", "***4242"},
		{"card number", "4111111111111111", "***1111"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskLast4(tt.in))
		})
	}
}

func TestGenerateSummary(t *testing.T) {
	assert.Equal(t, "charge - succeeded",
		GenerateSummary(SummaryInput{Action: "charge", Outcome: "succeeded"}))

	assert.Equal(t, "charge card-123 - failed (insufficient_funds)",
		GenerateSummary(SummaryInput{
			Action: "charge", Target: "card-123", Outcome: "failed", Details: "insufficient_funds",
		}))
}
