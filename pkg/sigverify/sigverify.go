// Package sigverify implements the signature-recovery and identity check
// (spec §4.7, C7): recover a public key from a 65-byte compact
// recoverable ECDSA signature and a 32-byte message, hash it, and compare
// the leading 20 bytes ("blake160") against the script's args. It also
// provides the off-chain counterpart the core never needs — Sign — since
// a lock script is useless without a matching signer (SPEC_FULL.md §12
// feature 1).
package sigverify

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
)

// SignatureSize is the compact-signature-plus-recovery-id length (spec §3).
const SignatureSize = 65

// PubkeyCompressedSize is the serialized compressed public key length
// (spec §6).
const PubkeyCompressedSize = 33

// recoveryIDIndex is the byte offset of the recovery id within the
// signature (spec §4.7 step 2).
const recoveryIDIndex = 64

// Verify recovers the public key implied by (sig, message), serializes it
// compressed, blake160-hashes it, and compares against args. It returns
// the §7 result code for every failure mode named in spec §4.7.
func Verify(sig [SignatureSize]byte, message [txhash.Size]byte, args []byte) resultcode.Code {
	if len(args) != txhash.Blake160Size {
		return resultcode.ArgumentsLen
	}

	pubkey, code := recover(sig, message)
	if code != resultcode.OK {
		return code
	}

	identity := txhash.Blake160(pubkey.SerializeCompressed())
	var wantIdentity [txhash.Blake160Size]byte
	copy(wantIdentity[:], args)

	if !txhash.EqualBlake160(identity, wantIdentity) {
		return resultcode.PubkeyBlake160Hash
	}
	return resultcode.OK
}

// recover parses sig as a compact-recoverable secp256k1 signature and
// recovers the public key it was produced with (spec §4.7 steps 1-4).
func recover(sig [SignatureSize]byte, message [txhash.Size]byte) (*secp256k1.PublicKey, resultcode.Code) {
	recID := sig[recoveryIDIndex]
	if recID > 3 {
		return nil, resultcode.SecpParseSignature
	}

	// decred's RecoverCompact expects the recovery-id byte prepended to
	// (r, s), not appended as the reference C layout has it (r || s ||
	// recid). Re-pack rather than reaching into library internals.
	packed := make([]byte, SignatureSize)
	packed[0] = recID + 27 // decred's compact-signature header byte convention
	copy(packed[1:], sig[:recoveryIDIndex])

	pubkey, _, err := ecdsa.RecoverCompact(packed, message[:])
	if err != nil {
		return nil, resultcode.SecpRecoverPubkey
	}
	return pubkey, resultcode.OK
}

// Sign produces a compact-recoverable signature over message with priv,
// in the reference core's layout: 64 bytes of (r, s) followed by a single
// recovery-id byte in [0, 3]. This is the wallet-side counterpart to
// Verify; the on-chain core never signs.
func Sign(priv *secp256k1.PrivateKey, message [txhash.Size]byte) ([SignatureSize]byte, error) {
	packed := ecdsa.SignCompact(priv, message[:], false)
	if len(packed) != SignatureSize {
		return [SignatureSize]byte{}, fmt.Errorf("sigverify: unexpected compact signature length %d", len(packed))
	}
	var out [SignatureSize]byte
	copy(out[:recoveryIDIndex], packed[1:])
	out[recoveryIDIndex] = packed[0] - 27
	return out, nil
}
