package cache

import "errors"

var (
	// ErrConfiguration indicates that the cryptographic primitives needed by
	// the cache are unavailable. Fatal for the cache, never retried.
	ErrConfiguration = errors.New("cache: cryptography unavailable")

	// ErrNotInitialized indicates that an operation needing a key was invoked before Init.
	ErrNotInitialized = errors.New("cache: not initialized, call Init first")

	// ErrInvalidUserID indicates a missing or malformed user identifier.
	ErrInvalidUserID = errors.New("cache: invalid user id")

	// ErrStorageCapacity indicates that the store rejected a write for lack of
	// space. Previously persisted data is untouched.
	ErrStorageCapacity = errors.New("cache: storage capacity exceeded")

	// ErrStorage wraps any other failure of the underlying store.
	ErrStorage = errors.New("cache: storage failure")

	// ErrDecryption covers corrupt ciphertext, a wrong key and malformed envelopes.
	// Load reports it as a cache miss.
	ErrDecryption = errors.New("cache: cannot decrypt envelope")

	// ErrInvalidPayload indicates decrypted content that is not a well-formed
	// contact list. Load reports it as a cache miss.
	ErrInvalidPayload = errors.New("cache: invalid contact payload")
)
