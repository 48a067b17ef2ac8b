package interfaces

import "errors"

// Sentinel errors shared by all repository implementations. Services and
// handlers distinguish failure kinds with errors.Is instead of matching
// message text.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrUsageLimitExceeded = errors.New("discount usage limit exceeded")
)
