// Package store implements raw-SQL persistence for the case-management
// entities, including the scoped query variants the service layer uses to
// enforce therapist visibility.
package store

import "strings"

// qualify prefixes every column in a comma-separated column list with a
// table alias, for use in joined queries.
func qualify(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
