// Package gravatar derives a stable avatar URL from an email address.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const Fallback = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// URL returns the gravatar for an email: 200px, PG-rated, "mystery man"
// default for addresses with no gravatar account.
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
