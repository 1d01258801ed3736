package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	ErrFetch         = errors.New(config.ErrFetch)
	ErrNoSelection   = errors.New(config.ErrNoSelection)
	ErrInvalidPhone  = errors.New(config.ErrInvalidPhone)
	ErrInvalidName   = errors.New(config.ErrInvalidName)
	ErrMutation      = errors.New(config.ErrMutation)
	ErrPartialRename = errors.New(config.ErrPartialRename)
	ErrNotFound      = errors.New(config.ErrNotFound)
)

// FetchError reports a failed listing of the store.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string        { return fmt.Sprintf("%s: %v", config.ErrFetch, e.Err) }
func (e *FetchError) Unwrap() error        { return e.Err }
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// InvalidPhoneError is returned when the stripped input does not hold exactly 10 digits.
type InvalidPhoneError struct {
	Input  string
	Digits string
}

func (e *InvalidPhoneError) Error() string {
	return fmt.Sprintf("%s: got %d digits", config.ErrInvalidPhone, len(e.Digits))
}

func (e *InvalidPhoneError) Is(target error) bool { return target == ErrInvalidPhone }

// MutationError reports a failed create, update or delete round trip.
type MutationError struct {
	Op   string
	Name string
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s (%s %q): %v", config.ErrMutation, e.Op, e.Name, e.Err)
}

func (e *MutationError) Unwrap() error        { return e.Err }
func (e *MutationError) Is(target error) bool { return target == ErrMutation }

// PartialRenameError is returned when the old key was deleted but the new one
// could not be written: OldName is gone and NewName does not exist.
type PartialRenameError struct {
	OldName string
	NewName string
	Err     error
}

func (e *PartialRenameError) Error() string {
	return fmt.Sprintf("%s (%q -> %q): %v", config.ErrPartialRename, e.OldName, e.NewName, e.Err)
}

func (e *PartialRenameError) Unwrap() error { return e.Err }

// Is matches both ErrPartialRename and the generic ErrMutation.
func (e *PartialRenameError) Is(target error) bool {
	return target == ErrPartialRename || target == ErrMutation
}
