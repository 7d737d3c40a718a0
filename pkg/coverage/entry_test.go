package coverage

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	entries := []Entry{
		SighashAll(),
		Output(2, CellCapacity),
		InputCellSince(0, CellAll),
		InputOutpoint(1, OutpointTxHash|OutpointSince),
		EndOfList(),
	}
	wire := Encode(entries)

	got, consumed, code := Decode(wire)
	require.Equal(t, resultcode.OK, code)
	require.Equal(t, len(wire), consumed)
	require.Equal(t, entries, got, "decoded entries should round-trip: %s", spew.Sdump(got))
}

func TestDecodeTerminatorOnly(t *testing.T) {
	wire := Encode([]Entry{EndOfList()})
	entries, consumed, code := Decode(wire)
	require.Equal(t, resultcode.OK, code)
	require.Equal(t, 3, consumed)
	require.Len(t, entries, 1)
	require.Equal(t, LabelEndOfList, entries[0].Label)
}

func TestDecodeTruncatedEntryIsInvalidLabel(t *testing.T) {
	_, _, code := Decode([]byte{0xF0, 0x00}) // two bytes, never reaches 3
	require.Equal(t, "ERROR_INVALID_LABEL", code.String())
}

func TestDecodeUnknownLabelIsInvalidLabel(t *testing.T) {
	_, _, code := Decode([]byte{0x50, 0x00, 0x00, 0xF0, 0x00, 0x00})
	require.Equal(t, "ERROR_INVALID_LABEL", code.String())
}

func TestDecodeNeverTerminatedRunsOffTheEnd(t *testing.T) {
	_, _, code := Decode([]byte{0x00, 0x00, 0x00})
	require.Equal(t, "ERROR_INVALID_LABEL", code.String())
}

func TestCellMaskAnyTypeAndLock(t *testing.T) {
	require.True(t, CellMask(CellTypeArgs).HasAnyType())
	require.False(t, CellMask(CellTypeArgs).HasAnyLock())
	require.True(t, CellMask(CellLockHashType).HasAnyLock())
}
