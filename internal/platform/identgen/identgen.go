// Package identgen issues the prefixed identifiers used across conversations,
// messages, calls and payment transactions.
package identgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns "<prefix>_<32 hex chars>". An empty prefix yields the bare
// identifier.
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
