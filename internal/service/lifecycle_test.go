package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repairops/backend/internal/models"
)

func TestNextStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		current models.CallStatus
		code    string
		want    models.CallStatus
		ok      bool
	}{
		{"answered from routed", models.CallRouted, StatusAnswered, models.CallAnswered, true},
		{"answered from pending ignored", models.CallPending, StatusAnswered, models.CallPending, false},
		{"disconnected from answered", models.CallAnswered, StatusDisconnected, models.CallCompleted, true},
		{"finished from answered", models.CallAnswered, StatusFinished, models.CallCompleted, true},
		{"disconnected from routed", models.CallRouted, StatusDisconnected, models.CallCompleted, true},
		{"disconnected from pending ignored", models.CallPending, StatusDisconnected, models.CallPending, false},
		{"no answer from pending", models.CallPending, StatusNoAnswer, models.CallMissed, true},
		{"no answer from routed", models.CallRouted, StatusNoAnswer, models.CallMissed, true},
		{"busy from answered", models.CallAnswered, StatusBusy, models.CallMissed, true},
		{"rejected from routed", models.CallRouted, StatusRejected, models.CallMissed, true},
		{"unknown code ignored", models.CallRouted, "Ringing", models.CallRouted, false},
		{"proceeding is not a transition", models.CallPending, StatusProceeding, models.CallPending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextStatus(tc.current, tc.code)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextStatusTerminalStatesAreImmutable(t *testing.T) {
	terminals := []models.CallStatus{models.CallCompleted, models.CallMissed, models.CallCancelled}
	codes := []string{StatusAnswered, StatusDisconnected, StatusFinished, StatusNoAnswer, StatusBusy, StatusRejected}

	for _, cur := range terminals {
		for _, code := range codes {
			got, ok := NextStatus(cur, code)
			assert.False(t, ok, "%s + %s", cur, code)
			assert.Equal(t, cur, got)
		}
	}
}

func TestCallStatusTerminal(t *testing.T) {
	assert.False(t, models.CallPending.Terminal())
	assert.False(t, models.CallRouted.Terminal())
	assert.False(t, models.CallAnswered.Terminal())
	assert.True(t, models.CallCompleted.Terminal())
	assert.True(t, models.CallMissed.Terminal())
	assert.True(t, models.CallCancelled.Terminal())
}
