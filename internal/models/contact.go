package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidContact indicates a contact record that cannot be cached.
var ErrInvalidContact = errors.New("invalid contact")

// Contact представляет один контакт пользователя в нормализованном виде
type Contact struct {
	ID          string   `json:"id"`          // resourceName из People API
	DisplayName string   `json:"displayName"` // отображаемое имя
	Emails      []string `json:"emails"`      // все email адреса
	Phones      []string `json:"phones"`      // все номера телефонов
}

// ContactList is an ordered sequence of contacts. Server order is not preserved
// by contract; use SortByName for a stable presentation order.
type ContactList []Contact

// Validate checks that every contact carries an identifier.
func (l ContactList) Validate() error {
	for i, c := range l {
		if c.ID == "" {
			return fmt.Errorf("%w: contact at index %d has empty id", ErrInvalidContact, i)
		}
	}
	return nil
}

// Matches reports whether the contact matches a lower-cased search term
// by name, any email or any phone number.
func (c Contact) Matches(term string) bool {
	if strings.Contains(strings.ToLower(c.DisplayName), term) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e), term) {
			return true
		}
	}
	for _, p := range c.Phones {
		if strings.Contains(p, term) {
			return true
		}
	}
	return false
}

// Search возвращает контакты, подходящие под строку поиска (без учета регистра).
// Пустая строка возвращает весь список.
func (l ContactList) Search(query string) ContactList {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return l
	}

	result := make(ContactList, 0, len(l))
	for _, c := range l {
		if c.Matches(term) {
			result = append(result, c)
		}
	}
	return result
}

// SortByName returns a copy sorted by display name, ties broken by ID.
func (l ContactList) SortByName() ContactList {
	sorted := slices.Clone(l)
	slices.SortStableFunc(sorted, func(a, b Contact) int {
		if c := strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// PrimaryEmail returns the first email or an empty string.
func (c Contact) PrimaryEmail() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0]
}

// PrimaryPhone returns the first phone number or an empty string.
func (c Contact) PrimaryPhone() string {
	if len(c.Phones) == 0 {
		return ""
	}
	return c.Phones[0]
}
