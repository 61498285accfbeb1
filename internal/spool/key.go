package spool

import (
	"strings"

	"github.com/spoolio/spoolio/internal/errors"
)

const (
	// GeneratedKeyLen is the length of keys produced by a Generator:
	// the lowercase hex encoding of a 256-bit HMAC-SHA256 digest.
	GeneratedKeyLen = 64

	// maxKeyLen matches NAME_MAX on the filesystems the spool targets.
	maxKeyLen = 255
)

// Key identifies one spool element; it is used verbatim as the element's
// filename inside the state subdirectories. Generated keys are lowercase
// hex and satisfy the filename constraints by construction. Keys built
// from caller-supplied strings go through KeyFromString, which enforces
// them.
type Key string

// KeyFromString validates a caller-supplied element name and returns it
// as a Key. The name must be non-empty, fit in a filesystem name, and
// contain no path separator, NUL byte, or leading dot (hidden entries are
// skipped by consumers and would make the element unclaimable).
func KeyFromString(s string) (Key, error) {
	switch {
	case s == "":
		return "", errors.NewKeyError(s, "empty key")
	case len(s) > maxKeyLen:
		return "", errors.NewKeyError(s, "key exceeds filesystem name length")
	case strings.ContainsAny(s, "/\x00"):
		return "", errors.NewKeyError(s, "key contains path separator or NUL")
	case s[0] == '.':
		return "", errors.NewKeyError(s, "key starts with a dot")
	}
	return Key(s), nil
}

// String returns the key's filename representation.
func (k Key) String() string { return string(k) }
