// Package chunkload implements the chunked field loader (spec §4.4, C4):
// absorb the complete serialized form of one transaction component into a
// running hash by repeatedly filling a fixed-size buffer, never
// materializing the whole component in one allocation. This is what lets
// the core stream a component larger than the 16 KiB batch size.
package chunkload

import (
	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
)

// BatchSize is the canonical single-read buffer size (spec §4.1, §5):
// 16 KiB. Contractually fixed — it must not vary with the target
// allocator.
const BatchSize = 16 * 1024

// LoadFunc is a host load bound to a specific component (index + source
// [+ field], already curried); Stream drives it with successive offsets.
type LoadFunc func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code)

// Stream absorbs the complete output of load into h, per spec §4.4's
// algorithm: read the first batch to learn the total length, absorb it,
// then keep reading/absorbing at increasing offsets until the total is
// exhausted. A zero-length component absorbs nothing.
func Stream(h *txhash.State, load LoadFunc) hostvm.Code {
	buf := make([]byte, BatchSize)

	chunk, code := load(buf, 0)
	if code != hostvm.OK {
		return code
	}
	absorbed := uint64(len(chunk.Data))
	if absorbed > chunk.Total {
		absorbed = chunk.Total
	}
	h.Update(chunk.Data[:absorbed])

	for absorbed < chunk.Total {
		chunk, code = load(buf, absorbed)
		if code != hostvm.OK {
			return code
		}
		n := uint64(len(chunk.Data))
		remaining := chunk.Total - absorbed
		if n > remaining {
			n = remaining
		}
		h.Update(chunk.Data[:n])
		absorbed += n
	}
	return hostvm.OK
}

// ReadFull performs a single bounded read, the way the reference core
// loads a script or an OutPoint field into one stack buffer rather than
// streaming it through Stream: capacity bytes are reserved, and a
// component whose total length exceeds capacity fails rather than being
// silently truncated.
//
// The reference C checks `ret != CKB_SUCCESS` (a genuine syscall
// failure) strictly before `len > capacity` (the component just doesn't
// fit) as two separate conditions; tooLong keeps those distinguishable
// here too instead of collapsing both into the same hostvm.Code. code is
// only ever hostvm.OK or whatever the underlying load reported — ReadFull
// never synthesizes a Syscall on overflow.
func ReadFull(load LoadFunc, capacity int) (data []byte, tooLong bool, code hostvm.Code) {
	buf := make([]byte, capacity)
	chunk, code := load(buf, 0)
	if code != hostvm.OK {
		return nil, false, code
	}
	if chunk.Total > uint64(capacity) {
		return nil, true, hostvm.OK
	}
	return chunk.Data[:chunk.Total], false, hostvm.OK
}
