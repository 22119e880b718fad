package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "base64 email identifier",
			userID: "YWRhQGV4YW1wbGUuY29t",
		},
		{
			name:   "provider source id",
			userID: "103484578392019283746",
		},
		{
			name:   "exactly minimum length",
			userID: "abcde",
		},
		{
			name:   "fallback token",
			userID: "fallback_6c1b0a4e-2f0d-4a43-9b8f-1f8f3c6c2b11",
		},
		{
			name:    "empty",
			userID:  "",
			wantErr: true,
			errMsg:  "user id cannot be empty",
		},
		{
			name:    "too short",
			userID:  "abcd",
			wantErr: true,
			errMsg:  "at least 5 characters",
		},
		{
			name:    "too long",
			userID:  strings.Repeat("a", MaxUserIDLen+1),
			wantErr: true,
			errMsg:  "must not exceed",
		},
		{
			name:    "surrounding whitespace",
			userID:  " user-42 ",
			wantErr: true,
			errMsg:  "whitespace",
		},
		{
			name:    "control character",
			userID:  "user\x00-42",
			wantErr: true,
			errMsg:  "control characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserID(tt.userID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}
