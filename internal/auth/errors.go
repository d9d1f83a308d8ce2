package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown accounts and wrong passwords.
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid")
	ErrBadSignature       = errors.New("token signature is invalid")
	ErrExpired            = errors.New("token is expired")

	// ErrNoCredentials is the InvalidToken raised when no Authorization header was sent.
	ErrNoCredentials error = noCredentials{}
)

type noCredentials struct{}

func (noCredentials) Error() string { return "authentication credentials were not provided" }

func (noCredentials) Is(target error) bool { return target == ErrInvalidToken }

// IsAuthError reports whether err belongs to the 401 family.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrExpired)
}
