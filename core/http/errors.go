package http

import "errors"

// Error definitions
var (
	// Decode-time failures. These abort the connection before any routing.
	ErrMalformedFraming     = errors.New("missing header/body separator")
	ErrInvalidEncoding      = errors.New("header block is not valid UTF-8")
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrMalformedHeader      = errors.New("malformed header line")

	// Handling-time failures. The router turns these into 500 responses.
	ErrIO                = errors.New("i/o failure")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrMissingHeader     = errors.New("missing required header")
)
