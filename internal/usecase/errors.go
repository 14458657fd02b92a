package usecase

import (
	"context"
	"errors"
	"fmt"
)

// ErrCollaborator marks a failed mandatory analyst call. Errors returned by
// the aggregator for quant/social failures unwrap to this sentinel.
var ErrCollaborator = errors.New("collaborator failed")

// CollaboratorError carries which analyst failed and whether the failure was
// a timeout.
type CollaboratorError struct {
	Analyst string
	Timeout bool
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s analyst timed out: %v", e.Analyst, e.Err)
	}
	return fmt.Sprintf("%s analyst failed: %v", e.Analyst, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return ErrCollaborator }

func newCollaboratorError(analyst string, err error) *CollaboratorError {
	return &CollaboratorError{
		Analyst: analyst,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}
