package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	return Event{
		CorrelationID:     "corr-1",
		TraceID:           NewTraceID(),
		ApplicationID:     "app",
		TargetSystem:      "target",
		OriginatingSystem: "origin",
		ProcessName:       "refund",
		EventType:         EventTypeStep,
		EventStatus:       EventStatusSuccess,
		Summary:           "did the thing",
		Result:            "ok",
	}
}

func TestValidatePasses(t *testing.T) {
	e := validEvent()
	assert.NoError(t, Validate(&e))
}

func TestValidateReportsAllMissingFields(t *testing.T) {
	e := Event{}
	err := Validate(&e)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 10)
}

func TestValidateSingleMissingField(t *testing.T) {
	e := validEvent()
	e.Summary = ""
	err := Validate(&e)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "summary", ve.Fields[0].Field)
}
