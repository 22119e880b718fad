package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// TagSize - размер authentication tag GCM
	TagSize = 16
)

// randReader is the nonce source; tests replace it to simulate a broken RNG.
var randReader io.Reader = rand.Reader

// Seal шифрует данные с использованием AES-256-GCM.
// Формат результата: nonce (12 bytes) + ciphertext + auth_tag (16 bytes).
// Для каждого вызова генерируется новый случайный nonce.
func (k *Key) Seal(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %w", ErrUnavailable, err)
	}

	// Seal дописывает ciphertext+tag в конец nonce
	return k.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// SealToBase64 шифрует данные и возвращает результат в Base64.
// Удобно для хранения в текстовом key-value хранилище.
func (k *Key) SealToBase64(plaintext []byte) (string, error) {
	sealed, err := k.Seal(plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open дешифрует данные, зашифрованные с помощью Seal.
// Ожидает формат: nonce (12 bytes) + ciphertext + auth_tag (16 bytes).
func (k *Key) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: encrypted data too short", ErrMalformed)
	}

	nonce := sealed[:NonceSize]
	ciphertext := sealed[NonceSize:]

	plaintext, err := k.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return plaintext, nil
}

// OpenFromBase64 дешифрует данные из Base64.
func (k *Key) OpenFromBase64(encoded string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %w", ErrMalformed, err)
	}
	return k.Open(sealed)
}
