// Package txhash wraps the streaming cryptographic hash the lock script
// digests are built over (spec §4.3: Blake2b configured to a 32-byte
// output) and the blake160 identity derivation (spec §4.7: the leading
// 20 bytes of Blake2b-256 of a compressed public key).
package txhash

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the digest size in bytes (spec §6: 256-bit/32-byte Blake2b).
const Size = 32

// Blake160Size is the identity size in bytes (spec §6).
const Blake160Size = 20

// State is a running Blake2b-256 hash. The order of Write calls is
// semantically significant (spec §4.3): State adds no framing of its
// own, callers are responsible for length-prefixing where the spec
// requires it (§4.6).
type State struct {
	h interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

// NewState initializes a fresh Blake2b-256 state, using the host VM's
// default personalization (spec §6: "default personalization as used by
// the host VM" — i.e. none; plain Blake2b-256 with no key/salt/person).
func NewState() *State {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, and we never
		// supply one.
		panic(fmt.Sprintf("txhash: blake2b.New256: %v", err))
	}
	return &State{h: h}
}

// Update absorbs b into the running hash.
func (s *State) Update(b []byte) {
	_, _ = s.h.Write(b)
}

// Finalize returns the 32-byte digest. The State must not be reused
// afterward.
func (s *State) Finalize() [Size]byte {
	var out [Size]byte
	copy(out[:], s.h.Sum(nil))
	return out
}

// Peek returns the running digest without finalizing: unlike Finalize,
// the State remains valid for further Update calls afterward. Used by
// tooling that wants to observe the hash as it accumulates rather than
// only its final value.
func (s *State) Peek() [Size]byte {
	var out [Size]byte
	copy(out[:], s.h.Sum(nil))
	return out
}

// Sum256 hashes b in one call.
func Sum256(b []byte) [Size]byte {
	s := NewState()
	s.Update(b)
	return s.Finalize()
}

// Blake160 returns the first 20 bytes of Blake2b-256(b) — the "blake160"
// public-key identity used as the lock script's args (spec §4.7 step 5).
func Blake160(b []byte) [Blake160Size]byte {
	full := Sum256(b)
	var out [Blake160Size]byte
	copy(out[:], full[:Blake160Size])
	return out
}

// EqualBlake160 constant-time-compares two blake160 identities (spec §9:
// "should use a constant-time equality routine").
func EqualBlake160(a, b [Blake160Size]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
