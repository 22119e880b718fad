package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyDeriver(t *testing.T) {
	tests := []struct {
		name       string
		scheme     Scheme
		wantScheme Scheme
		wantErr    bool
	}{
		{name: "default scheme", scheme: "", wantScheme: SchemeSHA256},
		{name: "sha256", scheme: SchemeSHA256, wantScheme: SchemeSHA256},
		{name: "argon2id", scheme: SchemeArgon2id, wantScheme: SchemeArgon2id},
		{name: "unknown", scheme: "md5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewKeyDeriver(tt.scheme)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, d.Scheme())
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	d, err := NewKeyDeriver(SchemeSHA256)
	require.NoError(t, err)

	first, err := d.Derive("user-42")
	require.NoError(t, err)
	second, err := d.Derive("user-42")
	require.NoError(t, err)

	sealed, err := first.Seal([]byte("contacts"))
	require.NoError(t, err)

	opened, err := second.Open(sealed)
	require.NoError(t, err, "re-derived key must open previously sealed data")
	assert.Equal(t, []byte("contacts"), opened)
	assert.Equal(t, SchemeSHA256, second.Scheme())
}

func TestDerive_DistinctUsers(t *testing.T) {
	d, err := NewKeyDeriver(SchemeSHA256)
	require.NoError(t, err)

	k1, err := d.Derive("user-one")
	require.NoError(t, err)
	k2, err := d.Derive("user-two")
	require.NoError(t, err)

	sealed, err := k1.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = k2.Open(sealed)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestDerive_InvalidUserID(t *testing.T) {
	d, err := NewKeyDeriver(SchemeSHA256)
	require.NoError(t, err)

	for _, userID := range []string{"", "abc", "abcd"} {
		key, err := d.Derive(userID)
		assert.ErrorIs(t, err, ErrInvalidUserID, "user id %q", userID)
		assert.Nil(t, key)
	}
}

func TestDerive_SchemesAreIndependent(t *testing.T) {
	sha, err := NewKeyDeriver(SchemeSHA256)
	require.NoError(t, err)
	argon, err := NewKeyDeriver(SchemeArgon2id)
	require.NoError(t, err)

	k1, err := sha.Derive("user-42")
	require.NoError(t, err)
	k2, err := argon.Derive("user-42")
	require.NoError(t, err)
	k3, err := argon.Derive("user-42")
	require.NoError(t, err)

	sealed, err := k2.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = k1.Open(sealed)
	assert.ErrorIs(t, err, ErrAuthFailed, "switching scheme must invalidate stored data")

	opened, err := k3.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), opened)
}

func TestNewKey_WrongLength(t *testing.T) {
	key, err := newKey(make([]byte, 16), SchemeSHA256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
	assert.Nil(t, key)
}
