package model

import "strings"

// WebhookPayload is the envelope Vapi posts to the webhook endpoint.
type WebhookPayload struct {
	Message *Message `json:"message"`
}

// Message is a single Vapi server message. Only "function-call" messages are
// acted on; everything else is acknowledged and ignored.
type Message struct {
	Type         string       `json:"type"`
	FunctionCall FunctionCall `json:"functionCall"`
}

// FunctionCall is the tool invocation requested by the voice agent.
type FunctionCall struct {
	Name       string     `json:"name"`
	Parameters Parameters `json:"parameters"`
}

// Parameters holds the loosely typed function-call arguments.
type Parameters map[string]interface{}

// String returns the named parameter as a trimmed string ("" when absent or
// not a string).
func (p Parameters) String(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Patient is one row of the patient directory sheet. Fields carries every
// column keyed by header so registration round-trips columns the service
// does not model.
type Patient struct {
	FullName     string
	DOB          string
	MobileNumber string
	Fields       map[string]string
}

// FirstName returns the leading name part of FullName.
func (p *Patient) FirstName() string {
	parts := strings.Fields(p.FullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// Initials returns the upper-cased first letters of the first and last name
// parts, or "" when the full name has fewer than two parts.
func (p *Patient) Initials() string {
	parts := strings.Fields(p.FullName)
	if len(parts) < 2 {
		return ""
	}
	first := parts[0]
	last := parts[len(parts)-1]
	return strings.ToUpper(first[:1] + last[:1])
}

// PatientQuery identifies a patient for verification. MobileNumber+DOB is the
// primary key; DOB+Initials is accepted when no mobile number was captured.
type PatientQuery struct {
	MobileNumber string
	DOB          string
	Initials     string
}
