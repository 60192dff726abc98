// Package apperr defines the error kinds shared by the diary components.
package apperr

import "errors"

var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrAlreadyEnrolled  = errors.New("password already enrolled")
	ErrNoCredential     = errors.New("no password enrolled")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrPasswordTooLong  = errors.New("password is longer than 72 bytes")
	ErrWrongPassword    = errors.New("wrong password")
	ErrEmptyContent     = errors.New("entry content is empty")
	ErrInvalidContent   = errors.New("entry content is not valid UTF-8")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("not found")
	ErrLocked           = errors.New("diary is locked")
	ErrInvalidState     = errors.New("operation not allowed in current session state")
)

// NoEntries is shown when the diary has nothing to list.
const NoEntries = "You have no previous entries saved."

// Notice returns the message shown to the user for err. Unknown errors get a
// generic message so internals never leak into the UI.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyEnrolled):
		return "You have created a password previously."
	case errors.Is(err, ErrNoCredential):
		return NoEntries
	case errors.Is(err, ErrEmptyPassword):
		return "The password cannot be empty."
	case errors.Is(err, ErrPasswordTooLong):
		return "The password is too long (72 bytes at most)."
	case errors.Is(err, ErrWrongPassword):
		return "The entered password is incorrect!"
	case errors.Is(err, ErrEmptyContent):
		return "You left one of the fields empty."
	case errors.Is(err, ErrInvalidContent):
		return "The entry contains characters that cannot be saved."
	case errors.Is(err, ErrStoreUnavailable):
		return "Your saved entries could not be read. The file was left untouched."
	case errors.Is(err, ErrNotFound):
		return "Nothing was found."
	case errors.Is(err, ErrLocked):
		return "Unlock the diary first."
	case errors.Is(err, ErrInvalidState):
		return "That action is not available right now."
	default:
		return "Something went wrong."
	}
}
