package branch

import (
	"errors"
	"fmt"
)

// ErrCannotDeleteMain is returned when deletion of the main branch is
// attempted. The check runs before any mutation.
var ErrCannotDeleteMain = errors.New("cannot delete main branch")

// ErrMergeIntoSelf is returned when source and target of a merge are the
// same branch.
var ErrMergeIntoSelf = errors.New("cannot merge a branch into itself")

// NotFoundError indicates a project, branch or worktree does not exist
type NotFoundError struct {
	Kind string // "branch", "worktree", "repository"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PartialFailureError indicates an operation mutated some state before
// failing, e.g. a worktree was removed but the branch ref deletion failed.
// Callers must treat this as requiring external reconciliation.
type PartialFailureError struct {
	Op  string
	Err error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure during %s: %v", e.Op, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// IsPartialFailure reports whether err is a PartialFailureError
func IsPartialFailure(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}
