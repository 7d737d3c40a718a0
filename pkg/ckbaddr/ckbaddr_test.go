package ckbaddr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var identity [txhash.Blake160Size]byte
	for i := range identity {
		identity[i] = byte(i * 7)
	}

	addr := Encode(identity)
	got, err := Decode(addr)
	require.NoError(t, err)
	require.Equal(t, identity, got)
}

func TestDecodeRejectsCorruptedChecksum(t *testing.T) {
	var identity [txhash.Blake160Size]byte
	addr := Encode(identity)

	mutated := []byte(addr)
	mutated[len(mutated)-1]++
	_, err := Decode(string(mutated))
	require.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not-base58-!!!")
	require.Error(t, err)
}
