package errs

import "fmt"

// ValidationError reports which input field was rejected. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

// Validation returns a ValidationError for field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateGameError names the partition a write collided with. It matches ErrDuplicateGame.
type DuplicateGameError struct {
	Title    string
	Platform string
	Wishlist bool
}

// Partition is "wishlist" or "collection".
func (e *DuplicateGameError) Partition() string {
	if e.Wishlist {
		return "wishlist"
	}
	return "collection"
}

func (e *DuplicateGameError) Error() string {
	return fmt.Sprintf("%s for %s already exists in your %s", e.Title, e.Platform, e.Partition())
}

// Is makes errors.Is(err, ErrDuplicateGame) hold.
func (e *DuplicateGameError) Is(target error) bool { return target == ErrDuplicateGame }
