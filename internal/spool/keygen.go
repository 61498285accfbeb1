package spool

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	insecurerand "math/rand"
	"os"
	"sync"
	"time"
)

// Generator produces collision-resistant element keys. Each generator
// holds a 256-bit secret sampled once from the OS entropy source and a
// monotonically increasing counter; the n-th key is the lowercase hex
// encoding of HMAC-SHA256(secret, le64(n)).
//
// The scheme follows the Disque job-ID construction rather than the
// classic Maildir naming algorithm: keys within one generator never
// repeat, distinct generators hold independent secrets so cross-generator
// collisions are cryptographically negligible, and no host-identifying
// information (hostname, PID, timestamp) appears in the output.
//
// A Generator is not safe for concurrent use; each goroutine should use
// its own, or call the package-level [Generate], which maintains a pool
// of generators so that concurrent callers never share state.
type Generator struct {
	secret  [sha256.Size]byte
	counter uint64

	// Degraded is true when the OS entropy source failed and the secret
	// was seeded from the process ID and clock instead. Keys from a
	// degraded generator are still unique per generator but are
	// predictable to an attacker who can guess the seed.
	Degraded bool
}

// NewGenerator creates a Generator with a fresh secret.
func NewGenerator() *Generator {
	g := &Generator{}
	if _, err := rand.Read(g.secret[:]); err != nil {
		// Fallback path: weaker, host/time-derived seeding. Documented
		// as degraded rather than silently equivalent.
		g.Degraded = true
		r := insecurerand.New(insecurerand.NewSource(int64(os.Getpid()) ^ time.Now().UnixNano()))
		for i := range g.secret {
			g.secret[i] = byte(r.Intn(256))
		}
	}
	return g
}

// Next returns a fresh key, distinct from every key this generator has
// produced before.
func (g *Generator) Next() Key {
	var msg [8]byte
	binary.LittleEndian.PutUint64(msg[:], g.counter)
	g.counter++

	mac := hmac.New(sha256.New, g.secret[:])
	mac.Write(msg[:])
	return Key(hex.EncodeToString(mac.Sum(nil)))
}

// generators pools per-caller key generation state so that concurrent
// Generate calls never contend on a shared counter or lock.
var generators = sync.Pool{
	New: func() any { return NewGenerator() },
}

// Generate returns a fresh key using a pooled [Generator]. Safe for
// concurrent use.
func Generate() Key {
	g := generators.Get().(*Generator)
	key := g.Next()
	generators.Put(g)
	return key
}
