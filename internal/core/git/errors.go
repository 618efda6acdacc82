package git

import "errors"

// ErrBranchNotFound is returned when a named branch does not exist
var ErrBranchNotFound = errors.New("branch not found")

// ErrNotRepository is returned when a path is not a git repository
var ErrNotRepository = errors.New("not a git repository")
