package app

import "errors"

// Sentinel errors for service and session lifecycle.
var (
	ErrNoWorld         = errors.New("no world configured")
	ErrNotStarted      = errors.New("service not started")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)
