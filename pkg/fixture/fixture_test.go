package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: sighash-all-basic
want: OK
script:
  code_hash: "0000000000000000000000000000000000000000000000000000000000000001"
  hash_type: 1
  args: "deadbeef"
cells:
  - out_point:
      tx_hash: "0000000000000000000000000000000000000000000000000000000000000002"
      index: 0
    capacity: 1000
    lock:
      code_hash: "0000000000000000000000000000000000000000000000000000000000000001"
      hash_type: 1
      args: "deadbeef"
inputs:
  - since: 0
    previous_output:
      tx_hash: "0000000000000000000000000000000000000000000000000000000000000002"
      index: 0
witnesses:
  - "00"
`

func TestParseAssignsUUIDWhenMissing(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NotEmpty(t, f.ID)
	require.Equal(t, "sighash-all-basic", f.Name)
}

func TestResolveBuildsTxtypes(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	resolved, err := Resolve(f)
	require.NoError(t, err)
	require.Len(t, resolved.Tx.Inputs, 1)
	require.Equal(t, uint32(0), resolved.Tx.Inputs[0].PreviousOutput.Index)
	require.Len(t, resolved.Cells, 1)
	require.Equal(t, byte(1), resolved.Script.HashType)
}

func TestParseMarshalRoundTrip(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	doc, err := Marshal(f)
	require.NoError(t, err)

	got, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, f.Name, got.Name)
	require.Equal(t, f.ID, got.ID)
}
