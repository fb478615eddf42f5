// Package ringcentral parses and classifies RingCentral telephony webhook
// payloads and verifies their signatures.
package ringcentral

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

type Party struct {
	Direction string `json:"direction"`
	From      struct {
		PhoneNumber string `json:"phoneNumber"`
		Name        string `json:"name"`
	} `json:"from"`
	To struct {
		PhoneNumber string `json:"phoneNumber"`
		Name        string `json:"name"`
	} `json:"to"`
	Status struct {
		Code   string `json:"code"`
		Reason string `json:"reason"`
	} `json:"status"`
	Recordings []struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	} `json:"recordings"`
}

type Payload struct {
	UUID      string `json:"uuid"`
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Body      struct {
		TelephonySessionID string  `json:"telephonySessionId"`
		SessionID          string  `json:"sessionId"`
		Parties            []Party `json:"parties"`
	} `json:"body"`
}

func Parse(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// ExternalID is the idempotency key for call ingestion: the telephony
// session id, falling back to the event uuid.
func (p Payload) ExternalID() string {
	if p.Body.TelephonySessionID != "" {
		return p.Body.TelephonySessionID
	}
	return p.UUID
}

// FirstParty returns the leading party of the session, if any.
func (p Payload) FirstParty() (Party, bool) {
	if len(p.Body.Parties) == 0 {
		return Party{}, false
	}
	return p.Body.Parties[0], true
}

// RecordingID returns the id of the party's first recording, or "".
func (pt Party) RecordingID() string {
	if len(pt.Recordings) == 0 {
		return ""
	}
	return pt.Recordings[0].ID
}

type EventKind int

const (
	// EventUnknown is acknowledged without processing.
	EventUnknown EventKind = iota
	// EventIncomingCall is a new inbound call to route.
	EventIncomingCall
	// EventStatusUpdate advances a known session's lifecycle.
	EventStatusUpdate
)

// Classify decides the processing path. A telephony-session event whose
// first party is an inbound call in Proceeding state is a new call;
// every other telephony-session event is a status update.
func (p Payload) Classify() EventKind {
	if !strings.Contains(p.Event, "telephony/sessions") {
		return EventUnknown
	}
	if pt, ok := p.FirstParty(); ok && pt.Direction == "Inbound" && pt.Status.Code == "Proceeding" {
		return EventIncomingCall
	}
	return EventStatusUpdate
}

// VerifySignature checks the HMAC-SHA256 hex signature over the raw
// request body, in constant time.
func VerifySignature(signature string, body []byte, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
