package models

import "errors"

var (
	// ErrUnknownGroup is returned when an operation names a group that was
	// never registered.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrStorage wraps persistence read and write failures.
	ErrStorage = errors.New("storage error")

	// ErrTransport wraps delivery failures reported by the chat transport.
	ErrTransport = errors.New("transport error")

	// ErrInvalidPeriod is returned for malformed period identifiers.
	ErrInvalidPeriod = errors.New("invalid period")
)
