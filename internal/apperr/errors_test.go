package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotice_WrappedKinds(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("credential: enroll: %w", ErrAlreadyEnrolled), "You have created a password previously."},
		{fmt.Errorf("session: verify: %w", ErrWrongPassword), "The entered password is incorrect!"},
		{fmt.Errorf("journal: append: %w", ErrEmptyContent), "You left one of the fields empty."},
		{fmt.Errorf("journal: append: %w", ErrInvalidContent), "The entry contains characters that cannot be saved."},
		{ErrNoCredential, "You have no previous entries saved."},
		{errors.New("disk on fire"), "Something went wrong."},
		{nil, ""},
	}
	for _, c := range cases {
		if got := Notice(c.err); got != c.want {
			t.Errorf("Notice(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
