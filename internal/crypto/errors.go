package crypto

import "errors"

var (
	// ErrUnavailable indicates that a cryptographic primitive could not be
	// constructed or the random source failed. Callers treat it as fatal.
	ErrUnavailable = errors.New("crypto: primitive unavailable")

	// ErrAuthFailed indicates that ciphertext failed GCM authentication
	// (tampered data or a key that does not belong to the data).
	ErrAuthFailed = errors.New("crypto: authentication failed")

	// ErrMalformed indicates that sealed data is not in nonce||ciphertext||tag form.
	ErrMalformed = errors.New("crypto: malformed sealed data")

	// ErrInvalidUserID indicates that a user identifier is unsuitable for key derivation.
	ErrInvalidUserID = errors.New("crypto: invalid user id")
)
