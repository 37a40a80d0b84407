package models

import "errors"

var (
	// ErrInvalidConfig aborts the run before any traversal.
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrIO                = errors.New("unreadable file")
	ErrCorruptImage      = errors.New("corrupt image header")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrConflict          = errors.New("destination already occupied")
	ErrSourceMissing     = errors.New("source file missing")
)
