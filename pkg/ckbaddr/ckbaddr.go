// Package ckbaddr renders a blake160 identity as a checksummed,
// human-displayable address. It is a standalone helper: neither the core
// nor the cmd/ tools call it (otx-sign prints the identity as hex). The
// format has the same shape as the teacher's PublicKey.ToAddress: a
// version byte, the payload, and a checksum, all base58-encoded.
// Grounded on publickey.go's ToAddress, adapted to this module's
// identity (a 20-byte blake160 hash, not a NEO hash160) and its own
// hashing primitive (Blake2b via pkg/txhash, not the teacher's
// double-SHA256 checksum).
package ckbaddr

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
)

// version is this module's address-format version byte. It has no
// on-chain meaning; it exists so a future format change can be
// distinguished from this one.
const version = 0x01

// checksumSize is the number of trailing checksum bytes appended before
// encoding, mirroring the teacher's 4-byte checksum convention.
const checksumSize = 4

// Encode renders identity (a blake160 hash, spec §4.7) as a
// version-prefixed, checksummed, base58 string.
func Encode(identity [txhash.Blake160Size]byte) string {
	payload := make([]byte, 1+txhash.Blake160Size)
	payload[0] = version
	copy(payload[1:], identity[:])

	sum := checksum(payload)
	full := append(payload, sum...)
	return base58.Encode(full)
}

// Decode reverses Encode, validating the version byte and checksum.
func Decode(addr string) ([txhash.Blake160Size]byte, error) {
	var out [txhash.Blake160Size]byte

	raw, err := base58.Decode(addr)
	if err != nil {
		return out, fmt.Errorf("ckbaddr: base58 decode: %w", err)
	}
	want := 1 + txhash.Blake160Size + checksumSize
	if len(raw) != want {
		return out, fmt.Errorf("ckbaddr: expected %d decoded bytes, got %d", want, len(raw))
	}

	payload := raw[:1+txhash.Blake160Size]
	gotSum := raw[1+txhash.Blake160Size:]
	wantSum := checksum(payload)
	for i := range wantSum {
		if gotSum[i] != wantSum[i] {
			return out, fmt.Errorf("ckbaddr: checksum mismatch")
		}
	}

	if payload[0] != version {
		return out, fmt.Errorf("ckbaddr: unsupported address version %d", payload[0])
	}
	copy(out[:], payload[1:])
	return out, nil
}

// checksum is the leading 4 bytes of Blake2b-256(payload), a Blake160-
// family checksum matching this module's single hash primitive rather
// than introducing a second hash function solely for addresses.
func checksum(payload []byte) []byte {
	sum := txhash.Sum256(payload)
	return sum[:checksumSize]
}
