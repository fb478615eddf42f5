package service

import "github.com/repairops/backend/internal/models"

// Telephony status codes as reported by RingCentral.
const (
	StatusProceeding   = "Proceeding"
	StatusAnswered     = "Answered"
	StatusDisconnected = "Disconnected"
	StatusFinished     = "Finished"
	StatusNoAnswer     = "NoAnswer"
	StatusBusy         = "Busy"
	StatusRejected     = "Rejected"
)

// NextStatus is the call lifecycle transition table. It maps the current
// call status and an externally reported status code to the next status.
// ok is false when the event does not move the call: terminal states
// accept nothing (providers redeliver events), and codes that do not
// apply to the current state are ignored.
func NextStatus(current models.CallStatus, statusCode string) (models.CallStatus, bool) {
	if current.Terminal() {
		return current, false
	}
	switch statusCode {
	case StatusAnswered:
		if current == models.CallRouted {
			return models.CallAnswered, true
		}
	case StatusDisconnected, StatusFinished:
		if current == models.CallRouted || current == models.CallAnswered {
			return models.CallCompleted, true
		}
	case StatusNoAnswer, StatusBusy, StatusRejected:
		// Any pre-terminal state can be reported missed.
		return models.CallMissed, true
	}
	return current, false
}
