package database

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BackendUnavailableError means a connection or session could not be
// established. It is fatal to the call and never retried internally.
type BackendUnavailableError struct {
	Backend string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// PartialWriteError reports a Load that failed after some batches were
// already committed. Only the graph adapter produces it: its per-batch
// transactions cannot be rolled back retroactively, so the store is left
// partially populated and needs an explicit Reset before retrying. The
// relational adapter rolls back the whole call instead.
type PartialWriteError struct {
	Backend          string
	CommittedBatches int
	Err              error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s load failed with %d batch(es) already committed: %v",
		e.Backend, e.CommittedBatches, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
