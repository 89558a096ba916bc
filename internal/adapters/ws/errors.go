package ws

import "errors"

// Sentinel errors for the client protocol.
var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
)
