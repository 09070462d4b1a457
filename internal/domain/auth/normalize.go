package auth

import "strings"

// normalizeEmail matches the lower(email) unique index on auth_identities.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
