package wirefmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptRoundTrip(t *testing.T) {
	var codeHash [32]byte
	codeHash[0] = 0xAB
	raw := EncodeScript(codeHash, 1, []byte{1, 2, 3})

	view, err := VerifyScript(raw)
	require.NoError(t, err)
	require.True(t, bytes.Equal(view.CodeHash(), codeHash[:]))
	require.EqualValues(t, 1, view.HashType())

	args, err := view.Args()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, args)
}

func TestScriptRejectsTruncatedHeader(t *testing.T) {
	_, err := VerifyScript([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestScriptRejectsSizeMismatch(t *testing.T) {
	var codeHash [32]byte
	raw := EncodeScript(codeHash, 0, nil)
	raw = append(raw, 0xFF) // trailing garbage byte invalidates the size header
	_, err := VerifyScript(raw)
	require.Error(t, err)
}

func TestOutPointRoundTrip(t *testing.T) {
	var txHash [32]byte
	txHash[31] = 0x7

	raw := EncodeOutPoint(txHash, 42)
	view, err := VerifyOutPoint(raw)
	require.NoError(t, err)
	require.True(t, bytes.Equal(view.TxHash(), txHash[:]))
	require.EqualValues(t, 42, view.Index())
}

func TestOutPointRejectsWrongSize(t *testing.T) {
	_, err := VerifyOutPoint(make([]byte, 10))
	require.Error(t, err)
}

func TestWitnessArgsLockPresence(t *testing.T) {
	raw := EncodeWitnessArgs([]byte("lock-bytes"), nil, []byte("out"))
	view, err := VerifyWitnessArgs(raw)
	require.NoError(t, err)

	lock, present, err := view.Lock()
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("lock-bytes"), lock)

	_, present, err = view.InputType()
	require.NoError(t, err)
	require.False(t, present)

	out, present, err := view.OutputType()
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, []byte("out"), out)
}

func TestWitnessArgsEmptyLockIsDistinctFromAbsent(t *testing.T) {
	raw := EncodeWitnessArgs([]byte{}, nil, nil)
	view, err := VerifyWitnessArgs(raw)
	require.NoError(t, err)

	lock, present, err := view.Lock()
	require.NoError(t, err)
	require.True(t, present)
	require.Empty(t, lock)
}
