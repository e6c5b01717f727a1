package orders

import "fmt"

// The four failure classes of order placement. Validation, not-found
// and capacity errors are client faults detected before any mutation
// is visible; a storage error is a server fault and the only one a
// caller may blindly retry.

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type NotFoundError struct {
	LessonID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lesson not found: %s", e.LessonID)
}

type CapacityError struct {
	LessonID  string
	Topic     string
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough spaces for %q: requested %d, available %d", e.Topic, e.Requested, e.Available)
}

type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage failure: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
