// Package message defines the envelope that flows between actors.
package message

import "github.com/google/uuid"

// Envelope is the unit of communication between actors. It is immutable once
// sent; recipients dispatch on Method and type-assert Payload to their
// expected variant.
type Envelope struct {
	Method        string
	Payload       any
	CorrelationID string
}

// New builds an envelope with no correlation id.
func New(method string, payload any) Envelope {
	return Envelope{Method: method, Payload: payload}
}

// WithCorrelation builds an envelope tagged with a correlation id.
func WithCorrelation(method string, payload any, correlationID string) Envelope {
	return Envelope{Method: method, Payload: payload, CorrelationID: correlationID}
}

// NewCorrelationID allocates a fresh, short, opaque correlation id for one
// dispatch generation.
func NewCorrelationID() string {
	return uuid.NewString()
}
