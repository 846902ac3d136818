package pipeline

import "strings"

// SplitName splits a free-text name at its last space. The first name keeps
// the trailing space; a name with no space is all last name, matching how
// Salesforce requires LastName but not FirstName.
func SplitName(name string) (first, last string) {
	i := strings.LastIndex(name, " ")
	if i == -1 {
		return "", name
	}
	return name[:i+1], name[i+1:]
}
