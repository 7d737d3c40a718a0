// Package digest implements the group-input preamble, the coverage
// interpreter's driving loop, and the canonical group-witness folding
// (spec §4.5, §4.6 — C5's orchestration and C6). pkg/coverage owns entry
// parsing and per-entry absorption; this package owns the surrounding
// control flow: what gets hashed before the coverage array, and what
// gets hashed after it.
package digest

import (
	"github.com/ckb-ecofund/open-transaction-lock/pkg/chunkload"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/coverage"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/wirefmt"
)

// witnessBufferSize is the stack-buffer size the reference core reserves
// for a single witness (spec §5): 32 KiB. A witness this core is asked
// to fold that exceeds it fails with resultcode.WitnessSize.
const witnessBufferSize = 32 * 1024

// SignatureSize is the trailing compact-recoverable-signature length
// (spec §3).
const SignatureSize = 65

// Result is everything sigverify needs: the 32-byte message that was
// signed, and the signature bytes extracted from the witness before they
// were zeroed for hashing.
type Result struct {
	Message   [txhash.Size]byte
	Signature [SignatureSize]byte
	Entries   []coverage.Entry
}

// Build runs C5+C6 against loader: the group-input preamble, the
// coverage list, and the group/trailing witness folding, returning the
// message pkg/sigverify recovers a public key against.
func Build(loader hostvm.Loader) (Result, resultcode.Code) {
	witness, code := readWitness(loader, 0, hostvm.SourceGroupInput)
	if code != resultcode.OK {
		return Result{}, code
	}

	wargs, err := wirefmt.VerifyWitnessArgs(witness)
	if err != nil {
		return Result{}, resultcode.Encoding
	}
	lock, present, err := wargs.Lock()
	if err != nil {
		return Result{}, resultcode.Encoding
	}
	if !present {
		return Result{}, resultcode.Encoding
	}
	if len(lock) <= SignatureSize {
		return Result{}, resultcode.ArgumentsLen
	}

	h := txhash.NewState()

	if code := hashGroupInputPreamble(loader, h); code != resultcode.OK {
		return Result{}, code
	}

	entries, consumed, code := coverage.Decode(lock)
	if code != resultcode.OK {
		return Result{}, code
	}
	for _, e := range entries {
		if code := e.Absorb(loader, h); code != resultcode.OK {
			return Result{}, code
		}
	}

	sigOffset := consumed
	if len(lock) != sigOffset+SignatureSize {
		return Result{}, resultcode.ArgumentsLen
	}

	var sig [SignatureSize]byte
	copy(sig[:], lock[sigOffset:sigOffset+SignatureSize])
	for i := 0; i < SignatureSize; i++ {
		lock[sigOffset+i] = 0 // zeroes witness too: lock aliases it, see spec §4.6 step 1
	}

	absorbLengthPrefixed(h, witness)

	if code := foldGroupWitnesses(loader, h); code != resultcode.OK {
		return Result{}, code
	}
	if code := foldTrailingWitnesses(loader, h); code != resultcode.OK {
		return Result{}, code
	}

	return Result{Message: h.Finalize(), Signature: sig, Entries: entries}, resultcode.OK
}

func hashGroupInputPreamble(loader hostvm.Loader, h *txhash.State) resultcode.Code {
	for i := 0; ; i++ {
		code := chunkload.Stream(h, func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
			return loader.LoadInput(buf, offset, i, hostvm.SourceGroupInput)
		})
		if code == hostvm.OutOfBound {
			return resultcode.OK
		}
		if code != hostvm.OK {
			return resultcode.Syscall
		}
	}
}

func foldGroupWitnesses(loader hostvm.Loader, h *txhash.State) resultcode.Code {
	for g := 1; ; g++ {
		w, code := readWitness(loader, g, hostvm.SourceGroupInput)
		if code == resultcode.OutOfBound {
			return resultcode.OK
		}
		if code != resultcode.OK {
			return code
		}
		absorbLengthPrefixed(h, w)
	}
}

func foldTrailingWitnesses(loader hostvm.Loader, h *txhash.State) resultcode.Code {
	for w := loader.CountInputs(); ; w++ {
		wit, code := readWitness(loader, int(w), hostvm.SourceInput)
		if code == resultcode.OutOfBound {
			return resultcode.OK
		}
		if code != resultcode.OK {
			return code
		}
		absorbLengthPrefixed(h, wit)
	}
}

// readWitness loads one witness into an owned, mutable buffer bounded by
// witnessBufferSize, mapping overflow to the dedicated WitnessSize code
// (spec §4.6: "Each witness is capped at 32 KiB by this core").
func readWitness(loader hostvm.Loader, index int, source hostvm.Source) ([]byte, resultcode.Code) {
	buf := make([]byte, witnessBufferSize)
	chunk, code := loader.LoadWitness(buf, 0, index, source)
	if code == hostvm.OutOfBound {
		return nil, resultcode.OutOfBound
	}
	if code != hostvm.OK {
		return nil, resultcode.Syscall
	}
	if chunk.Total > witnessBufferSize {
		return nil, resultcode.WitnessSize
	}
	return chunk.Data[:chunk.Total], resultcode.OK
}

// absorbLengthPrefixed implements the wire format in spec §6: an 8-byte
// little-endian length followed by the bytes themselves.
func absorbLengthPrefixed(h *txhash.State, b []byte) {
	var lenBuf [8]byte
	n := uint64(len(b))
	for i := 0; i < 8; i++ {
		lenBuf[i] = byte(n >> (8 * i))
	}
	h.Update(lenBuf[:])
	h.Update(b)
}
