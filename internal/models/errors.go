package models

import "errors"

// Error taxonomy surfaced to callers. Upstream and persistence failures are
// deliberately absent: those degrade to fail-open defaults inside the
// pipeline and are only logged.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
