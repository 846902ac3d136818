package salesforce

import (
	"fmt"
	"strings"
)

// soslReserved is the set of characters SOSL requires escaping inside a
// FIND clause. Every occurrence is escaped, not just the first.
const soslReserved = `?&|!{}[]()^~*:\"'+-`

// EscapeSOSL escapes all SOSL-reserved characters in a search term so the
// term is matched literally.
func EscapeSOSL(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if strings.ContainsRune(soslReserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EmailSearch builds the SOSL query matching Leads and Contacts whose email
// field equals the given address exactly.
func EmailSearch(email string) string {
	return fmt.Sprintf(
		"FIND {%s} IN EMAIL FIELDS RETURNING Contact(Id, OwnerId), Lead(Id, OwnerId)",
		EscapeSOSL(email),
	)
}

// DomainSearch builds the SOSL query matching Accounts and Contacts that
// reference the given email domain anywhere.
func DomainSearch(domain string) string {
	return fmt.Sprintf(
		"FIND {%s} IN ALL FIELDS RETURNING Account(Id, Name, OwnerId), Contact(Id, AccountId)",
		EscapeSOSL(domain),
	)
}
