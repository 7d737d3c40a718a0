package txtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleScript(arg byte) Script {
	var codeHash [32]byte
	codeHash[0] = 0xAA
	return Script{CodeHash: codeHash, HashType: 1, Args: []byte{arg, arg, arg}}
}

func TestScriptRoundTrip(t *testing.T) {
	s := sampleScript(0x42)
	got, err := DecodeScript(s.Encode())
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestScriptEqual(t *testing.T) {
	a := sampleScript(1)
	b := sampleScript(1)
	c := sampleScript(2)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestOutPointRoundTrip(t *testing.T) {
	var txHash [32]byte
	txHash[1] = 0x77
	op := OutPoint{TxHash: txHash, Index: 7}
	got, err := DecodeOutPoint(op.Encode())
	require.NoError(t, err)
	require.Equal(t, op, got)
}

func TestCellInputRoundTrip(t *testing.T) {
	in := CellInput{Since: 123456, PreviousOutput: OutPoint{Index: 3}}
	got, err := DecodeCellInput(in.Encode())
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestCellOutputRoundTripNoType(t *testing.T) {
	out := CellOutput{Capacity: 1000, Lock: sampleScript(9)}
	got, err := DecodeCellOutput(out.Encode())
	require.NoError(t, err)
	require.Equal(t, out, got)
}

func TestCellOutputRoundTripWithType(t *testing.T) {
	typ := sampleScript(3)
	out := CellOutput{Capacity: 1000, Lock: sampleScript(9), Type: &typ}
	got, err := DecodeCellOutput(out.Encode())
	require.NoError(t, err)
	require.Equal(t, out, got)
}

func TestWitnessArgsRoundTrip(t *testing.T) {
	w := WitnessArgs{Lock: []byte{1, 2, 3}, HasLock: true}
	got, err := DecodeWitnessArgs(w.Encode())
	require.NoError(t, err)
	require.Equal(t, w.Lock, got.Lock)
	require.True(t, got.HasLock)
	require.False(t, got.HasInput)
	require.False(t, got.HasOutput)
}

func TestInputGroupFiltersByLockScript(t *testing.T) {
	lock := sampleScript(1)
	other := sampleScript(2)

	op0 := OutPoint{Index: 0}
	op1 := OutPoint{Index: 1}

	tx := Transaction{
		Inputs: []CellInput{
			{PreviousOutput: op0},
			{PreviousOutput: op1},
		},
	}
	cells := map[OutPoint]CellOutput{
		op0: {Lock: lock},
		op1: {Lock: other},
	}
	group := tx.InputGroup(lock, func(op OutPoint) (CellOutput, bool) {
		c, ok := cells[op]
		return c, ok
	})
	require.Equal(t, []int{0}, group)
}
