package coverage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

func opKey(op txtypes.OutPoint) [36]byte {
	var k [36]byte
	copy(k[:], op.Encode())
	return k
}

// TestAbsorbOutpointIndexReadsTxHashTwice pins the reproduced copy-paste
// bug (see DESIGN.md): absorbing OutpointIndex must hash tx_hash twice,
// never the actual 4-byte index. A future refactor that "fixes" this
// would break signatures already produced against it.
func TestAbsorbOutpointIndexReadsTxHashTwice(t *testing.T) {
	op := txtypes.OutPoint{TxHash: [32]byte{1, 2, 3, 4, 5, 6, 7, 8}, Index: 7}
	script := txtypes.Script{HashType: 1}
	tx := txtypes.Transaction{Inputs: []txtypes.CellInput{{PreviousOutput: op}}}
	cells := map[[36]byte]txtypes.CellOutput{opKey(op): {Lock: script}}
	host, err := simhost.New(tx, cells, map[[36]byte][]byte{}, script, nil)
	require.NoError(t, err)

	got := txhash.NewState()
	code := InputOutpoint(0, OutpointIndex).Absorb(host, got)
	require.Equal(t, resultcode.OK, code)

	want := txhash.NewState()
	want.Update(op.TxHash[:])
	want.Update(op.TxHash[:])
	require.Equal(t, want.Finalize(), got.Finalize(),
		"BUG fidelity: OutpointIndex must absorb tx_hash twice, not the real index")

	// A correctly-implemented index absorb (4 little-endian bytes) would
	// not match, confirming the digest really did take the buggy path
	// rather than happening to coincide.
	correct := txhash.NewState()
	var idx [4]byte
	idx[0] = byte(op.Index)
	idx[1] = byte(op.Index >> 8)
	idx[2] = byte(op.Index >> 16)
	idx[3] = byte(op.Index >> 24)
	correct.Update(idx[:])
	require.NotEqual(t, correct.Finalize(), got.Finalize())
}

// TestAbsorbOutpointUnrecognizedBitsIgnored pins that reserved
// OutpointMask bits (anything outside TxHash/Index/Since/All) are
// accepted silently rather than rejected, matching the reference C's
// bitwise-only tests (see DESIGN.md "Unrecognized mask bits").
func TestAbsorbOutpointUnrecognizedBitsIgnored(t *testing.T) {
	op := txtypes.OutPoint{TxHash: [32]byte{9, 9, 9}, Index: 3}
	script := txtypes.Script{HashType: 1}
	tx := txtypes.Transaction{Inputs: []txtypes.CellInput{{PreviousOutput: op}}}
	cells := map[[36]byte]txtypes.CellOutput{opKey(op): {Lock: script}}
	host, err := simhost.New(tx, cells, map[[36]byte][]byte{}, script, nil)
	require.NoError(t, err)

	const reserved OutpointMask = 0x08 // not TxHash/Index/Since/All

	plain := txhash.NewState()
	code := InputOutpoint(0, OutpointTxHash).Absorb(host, plain)
	require.Equal(t, resultcode.OK, code)

	withReserved := txhash.NewState()
	code = InputOutpoint(0, OutpointTxHash|reserved).Absorb(host, withReserved)
	require.Equal(t, resultcode.OK, code)

	require.Equal(t, plain.Finalize(), withReserved.Finalize(),
		"reserved mask bits must not change what gets absorbed")
}

// TestAbsorbCellAllTakesRawCellPathNotPerFieldUnion pins the other
// documented open question: mask == 0xFF is a distinct fast path that
// hashes the raw serialized CellOutput plus its data, not a concatenation
// of the individually-hashed sub-fields (see DESIGN.md "mask == 0xFF
// whole-object shortcut").
func TestAbsorbCellAllTakesRawCellPathNotPerFieldUnion(t *testing.T) {
	lock := txtypes.Script{HashType: 1, Args: []byte{0xAA, 0xBB}}
	typ := txtypes.Script{HashType: 2, Args: []byte{0x01, 0x02, 0x03}}
	cell := txtypes.CellOutput{Capacity: 999, Lock: lock, Type: &typ}
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	op := txtypes.OutPoint{Index: 0}
	tx := txtypes.Transaction{Inputs: []txtypes.CellInput{{PreviousOutput: op}}}
	cells := map[[36]byte]txtypes.CellOutput{opKey(op): cell}
	cellData := map[[36]byte][]byte{opKey(op): data}
	host, err := simhost.New(tx, cells, cellData, lock, nil)
	require.NoError(t, err)

	got := txhash.NewState()
	code := InputCell(0, CellAll).Absorb(host, got)
	require.Equal(t, resultcode.OK, code)

	rawPath := txhash.NewState()
	rawPath.Update(cell.Encode())
	rawPath.Update(data)
	require.Equal(t, rawPath.Finalize(), got.Finalize(),
		"CellAll must hash the raw serialized cell plus data, not per-field")

	var capLE [8]byte
	for i := range capLE {
		capLE[i] = byte(cell.Capacity >> (8 * i))
	}
	perField := txhash.NewState()
	perField.Update(capLE[:])
	perField.Update(typ.CodeHash[:])
	perField.Update(typ.Args)
	perField.Update([]byte{typ.HashType})
	perField.Update(lock.CodeHash[:])
	perField.Update(lock.Args)
	perField.Update([]byte{lock.HashType})
	perField.Update(data)

	require.NotEqual(t, perField.Finalize(), got.Finalize(),
		"per-field concatenation omits molecule table framing that the raw cell path includes")
}
