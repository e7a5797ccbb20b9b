package coordinator

import "errors"

// Sentinel errors for coordinator runs.
var (
	ErrNoSourceID   = errors.New("no folder id")
	ErrNoCategories = errors.New("grouping table defines no categories")
	ErrPanic        = errors.New("student processing panicked")
)
