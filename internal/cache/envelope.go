package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/gcontacts/internal/crypto"
	"github.com/iudanet/gcontacts/internal/models"
)

// FormatVersion is written into every envelope; envelopes with another
// version are treated as undecryptable.
const FormatVersion = "1"

// envelope is the plaintext sealed into the persisted blob.
type envelope struct {
	FormatVersion string          `json:"formatVersion"`
	Integrity     string          `json:"integrity"` // отпечаток userID, привязывает данные к владельцу
	Payload       json.RawMessage `json:"payload"`
	Timestamp     int64           `json:"timestamp"` // epoch ms
}

// sealContacts сериализует список контактов в конверт и шифрует его.
// Результат - base64(nonce || ciphertext || tag).
func sealContacts(key *crypto.Key, userID string, contacts models.ContactList, timestamp int64) (string, error) {
	payload, err := json.Marshal(contacts)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal contacts: %w", ErrInvalidPayload, err)
	}

	plaintext, err := json.Marshal(envelope{
		FormatVersion: FormatVersion,
		Integrity:     crypto.Fingerprint(userID),
		Payload:       payload,
		Timestamp:     timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	sealed, err := key.SealToBase64(plaintext)
	if err != nil {
		if errors.Is(err, crypto.ErrUnavailable) {
			return "", fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return "", fmt.Errorf("failed to encrypt envelope: %w", err)
	}

	return sealed, nil
}

// openContacts расшифровывает конверт и проверяет его содержимое.
// Любая ошибка оборачивает ErrDecryption или ErrInvalidPayload.
func openContacts(key *crypto.Key, userID, encoded string) (models.ContactList, int64, error) {
	plaintext, err := key.OpenFromBase64(encoded)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrDecryption, err)
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return nil, 0, fmt.Errorf("%w: malformed envelope: %w", ErrDecryption, err)
	}

	if env.FormatVersion != FormatVersion {
		return nil, 0, fmt.Errorf("%w: unsupported format version %q", ErrDecryption, env.FormatVersion)
	}

	if env.Integrity != crypto.Fingerprint(userID) {
		return nil, 0, fmt.Errorf("%w: envelope belongs to another user", ErrDecryption)
	}

	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || payload[0] != '[' {
		return nil, 0, fmt.Errorf("%w: payload is not a list", ErrInvalidPayload)
	}

	contacts := models.ContactList{}
	if err := json.Unmarshal(payload, &contacts); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := contacts.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return contacts, env.Timestamp, nil
}
