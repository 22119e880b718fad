package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/iudanet/gcontacts/internal/validation"
)

// Scheme identifies a key derivation scheme. Each scheme has its own salt
// so a change of scheme deliberately invalidates previously stored data.
type Scheme string

const (
	// SchemeSHA256 derives the key with HashIterations rounds of SHA-256 over userID||SaltV1.
	SchemeSHA256 Scheme = "sha256"
	// SchemeArgon2id derives the key with Argon2id over userID salted with SaltV2.
	SchemeArgon2id Scheme = "argon2id"
)

const (
	// SaltV1 - фиксированная соль приложения для SchemeSHA256
	SaltV1 = "gcontacts-viewer-v1"
	// SaltV2 - фиксированная соль приложения для SchemeArgon2id
	SaltV2 = "gcontacts-viewer-v2"

	// HashIterations - количество раундов SHA-256
	HashIterations = 3

	// KeySize - длина ключа AES-256 в байтах
	KeySize = 32

	// Параметры Argon2id такие же, как для master password
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024
	Argon2Threads = 4
)

// Key is a derived AES-256-GCM key. The raw key material is consumed when the
// key is built and is not retained or exposed.
type Key struct {
	aead   cipher.AEAD
	scheme Scheme
}

// Scheme returns the derivation scheme the key was built with.
func (k *Key) Scheme() Scheme {
	return k.scheme
}

// KeyDeriver turns a user identifier into a Key. It is stateless and safe
// for concurrent use.
type KeyDeriver struct {
	scheme Scheme
}

// NewKeyDeriver creates a deriver for the given scheme. Empty scheme selects SchemeSHA256.
func NewKeyDeriver(scheme Scheme) (*KeyDeriver, error) {
	switch scheme {
	case "":
		scheme = SchemeSHA256
	case SchemeSHA256, SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown key derivation scheme %q", scheme)
	}
	return &KeyDeriver{scheme: scheme}, nil
}

// Scheme returns the scheme used by d.
func (d *KeyDeriver) Scheme() Scheme {
	return d.scheme
}

// Derive deterministically builds a key from userID. The same userID always
// yields a key able to open data sealed by a previous derivation.
func (d *KeyDeriver) Derive(userID string) (*Key, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUserID, err)
	}

	material := d.material(userID)
	defer clear(material)

	return newKey(material, d.scheme)
}

func (d *KeyDeriver) material(userID string) []byte {
	if d.scheme == SchemeArgon2id {
		return argon2.IDKey([]byte(userID), []byte(SaltV2), Argon2Time, Argon2Memory, Argon2Threads, KeySize)
	}

	sum := HashRounds([]byte(userID+SaltV1), HashIterations)
	return sum[:]
}

func newKey(material []byte, scheme Scheme) (*Key, error) {
	if len(material) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(material))
	}

	// Создаем AES cipher block
	block, err := aes.NewCipher(material)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cipher: %w", ErrUnavailable, err)
	}

	// Создаем GCM mode
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %w", ErrUnavailable, err)
	}

	return &Key{aead: aead, scheme: scheme}, nil
}
