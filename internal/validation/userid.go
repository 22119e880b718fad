package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MinUserIDLen минимальная длина идентификатора пользователя.
	// Более короткие значения почти наверняка являются заглушками, а не реальным аккаунтом.
	MinUserIDLen = 5
	// MaxUserIDLen максимальная длина идентификатора пользователя
	MaxUserIDLen = 512
)

// ValidateUserID проверяет, что идентификатор пользователя пригоден
// для деривации ключа и для построения ключей хранилища.
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	if strings.TrimSpace(userID) != userID {
		return fmt.Errorf("user id must not have leading or trailing whitespace")
	}

	if len(userID) < MinUserIDLen {
		return fmt.Errorf("user id must be at least %d characters long", MinUserIDLen)
	}

	if len(userID) > MaxUserIDLen {
		return fmt.Errorf("user id must not exceed %d characters", MaxUserIDLen)
	}

	for _, r := range userID {
		if unicode.IsControl(r) {
			return fmt.Errorf("user id must not contain control characters")
		}
	}

	return nil
}
