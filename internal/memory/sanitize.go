package memory

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// ForbiddenKeyChars are replaced with '_' in every stored key.
const ForbiddenKeyChars = "/.#[]*"

var keyReplacer = strings.NewReplacer("/", "_", ".", "_", "#", "_", "[", "_", "]", "_", "*", "_")

// Sanitize trims key and replaces every character in ForbiddenKeyChars with
// '_'. Sanitize(Sanitize(k)) == Sanitize(k) for all k.
func Sanitize(key string) string {
	return keyReplacer.Replace(strings.TrimSpace(key))
}

// GenerateKey returns a unique key for values whose key sanitized to nothing.
func GenerateKey() string {
	return "memory_" + strings.ToLower(ulid.Make().String())
}
