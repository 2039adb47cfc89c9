// Package types holds the JSON envelopes written by api/responses.
package types

// Envelope wraps every 2xx body. Writers use Envelope[any]; clients and
// tests decode into a concrete T.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// SuccessEnvelope is the untyped envelope used when writing responses.
type SuccessEnvelope = Envelope[any]

// APIError is the public error shape. Details only carries field level
// validation messages.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return e.Code + ": " + e.Message
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
