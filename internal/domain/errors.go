package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidFilterSpec = errors.New("invalid filter spec")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidCursor     = errors.New("invalid cursor")
	ErrInvalidAction     = errors.New("invalid swipe action")
	ErrCannotSwipeSelf   = errors.New("cannot swipe yourself")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrUndoNotAllowed    = errors.New("undo is a premium feature")
)

// DependencyDegraded marks a collaborator failure that callers are expected
// to absorb via a fallback path instead of failing the request.
type DependencyDegraded struct {
	Dependency string
	Cause      error
}

func (e *DependencyDegraded) Error() string {
	return fmt.Sprintf("dependency %s degraded: %v", e.Dependency, e.Cause)
}

func (e *DependencyDegraded) Unwrap() error { return e.Cause }

// Degraded wraps cause as a DependencyDegraded error for the named dependency.
func Degraded(dependency string, cause error) error {
	return &DependencyDegraded{Dependency: dependency, Cause: cause}
}

// IsDegraded reports whether err is a DependencyDegraded failure.
func IsDegraded(err error) bool {
	var d *DependencyDegraded
	return errors.As(err, &d)
}
