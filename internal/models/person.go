package models

import (
	"strings"

	"github.com/iudanet/gcontacts/pkg/api"
)

// FromPerson нормализует запись People API в Contact.
// Возвращает false, если у записи нет имени: такие записи не показываются.
func FromPerson(p api.Person) (Contact, bool) {
	if len(p.Names) == 0 || p.ResourceName == "" {
		return Contact{}, false
	}

	name := strings.TrimSpace(p.Names[0].DisplayName)
	if name == "" {
		return Contact{}, false
	}

	c := Contact{
		ID:          p.ResourceName,
		DisplayName: name,
		Emails:      make([]string, 0, len(p.EmailAddresses)),
		Phones:      make([]string, 0, len(p.PhoneNumbers)),
	}
	for _, e := range p.EmailAddresses {
		if e.Value != "" {
			c.Emails = append(c.Emails, e.Value)
		}
	}
	for _, ph := range p.PhoneNumbers {
		if ph.Value != "" {
			c.Phones = append(c.Phones, ph.Value)
		}
	}

	return c, true
}

// FromPeople normalizes a batch of People records and reports how many
// records were dropped.
func FromPeople(people []api.Person) (ContactList, int) {
	list := make(ContactList, 0, len(people))
	skipped := 0
	for _, p := range people {
		c, ok := FromPerson(p)
		if !ok {
			skipped++
			continue
		}
		list = append(list, c)
	}
	return list, skipped
}
