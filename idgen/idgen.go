// Package idgen provides ID generation for tabsnap: short random
// tokens, UUIDv7 for stored records, and the creation-time artifact
// identity that namespaces each exported dashboard's local state.
package idgen

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator that produces base-36 IDs of the given
// length. Short and URL-safe; used where a UUID is too verbose.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		b := make([]byte, length)
		for i := range b {
			b[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(b)
	}
}

// UUIDv7 returns a Generator producing RFC 9562 UUID v7 strings.
// Time-sortable and globally unique; used for history row IDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the repository default: UUIDv7.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}

var artifactToken = NanoID(8)

// Artifact derives the identity token for an exported dashboard from
// its creation time plus a random suffix. The token keys the
// dashboard's localStorage state, so exports created in the same
// millisecond still get distinct namespaces.
func Artifact(now time.Time) string {
	return fmt.Sprintf("tabs-%d-%s", now.UnixMilli(), artifactToken())
}
