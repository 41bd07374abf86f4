package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrDraftNotFound indicates the draft expired or never existed.
	ErrDraftNotFound = errors.New("registration draft not found")
	// ErrInvalidRole indicates an unsupported role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStep indicates a step number outside the role's range or
	// not matching the draft's current position.
	ErrInvalidStep = errors.New("invalid step")
	// ErrPasscodeInvalid indicates the provided passcode did not match or
	// has expired.
	ErrPasscodeInvalid = errors.New("passcode invalid or expired")
	// ErrNotAwaitingPasscode indicates a passcode action while the draft is
	// not in the awaiting-passcode phase.
	ErrNotAwaitingPasscode = errors.New("draft is not awaiting a passcode")
	// ErrFileNotStaged indicates an unstage request for a file that was
	// never staged.
	ErrFileNotStaged = errors.New("no file staged under that field")
)

// AlreadyRegisteredError indicates the declared email already owns an auth
// identity. It is a distinct, user-recoverable outcome: the caller should
// offer sign-in instead of a generic failure.
type AlreadyRegisteredError struct {
	Email string
}

func (e AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("an account with email %s already exists; sign in instead", e.Email)
}

// CommitStateError indicates an operation that the committer's current state
// does not permit.
type CommitStateError struct {
	State string
	Op    string
}

func (e CommitStateError) Error() string {
	return fmt.Sprintf("cannot %s while commit state is %q", e.Op, e.State)
}
