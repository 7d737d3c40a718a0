package simhost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

func buildFixture(t *testing.T) (*Host, txtypes.Script) {
	t.Helper()

	lock := txtypes.Script{HashType: 1, Args: []byte("identity")}
	op0 := txtypes.OutPoint{Index: 0}
	op1 := txtypes.OutPoint{Index: 1}

	tx := txtypes.Transaction{
		Inputs: []txtypes.CellInput{
			{Since: 0, PreviousOutput: op0},
			{Since: 0, PreviousOutput: op1},
		},
		Outputs: []txtypes.CellOutput{
			{Capacity: 100, Lock: lock},
		},
		Witnesses: [][]byte{
			{0xDE, 0xAD},
			{0xBE, 0xEF},
		},
	}
	cells := map[[36]byte]txtypes.CellOutput{
		outpointKey(op0): {Capacity: 1000, Lock: lock},
		outpointKey(op1): {Capacity: 2000, Lock: lock},
	}
	data := map[[36]byte][]byte{
		outpointKey(op0): []byte("hello"),
	}

	h, err := New(tx, cells, data, lock, nil)
	require.NoError(t, err)
	return h, lock
}

func TestLoadWitnessByGroupIndex(t *testing.T) {
	h, _ := buildFixture(t)
	buf := make([]byte, 16)
	chunk, code := h.LoadWitness(buf, 0, 0, hostvm.SourceGroupInput)
	require.Equal(t, hostvm.OK, code)
	require.Equal(t, []byte{0xDE, 0xAD}, chunk.Data)
}

func TestLoadWitnessOutOfBound(t *testing.T) {
	h, _ := buildFixture(t)
	buf := make([]byte, 16)
	_, code := h.LoadWitness(buf, 0, 5, hostvm.SourceGroupInput)
	require.Equal(t, hostvm.OutOfBound, code)
}

func TestLoadCellDataReturnsSpentCellData(t *testing.T) {
	h, _ := buildFixture(t)
	buf := make([]byte, 16)
	chunk, code := h.LoadCellData(buf, 0, 0, hostvm.SourceGroupInput)
	require.Equal(t, hostvm.OK, code)
	require.Equal(t, []byte("hello"), chunk.Data)
}

func TestLoadCellFieldCapacity(t *testing.T) {
	h, _ := buildFixture(t)
	buf := make([]byte, 16)
	chunk, code := h.LoadCellField(buf, 0, 0, hostvm.SourceGroupInput, hostvm.CellFieldCapacity)
	require.Equal(t, hostvm.OK, code)
	require.Equal(t, uint64(8), chunk.Total)
}

func TestLoadScriptReturnsCurrentScript(t *testing.T) {
	h, lock := buildFixture(t)
	buf := make([]byte, 512)
	chunk, code := h.LoadScript(buf, 0)
	require.Equal(t, hostvm.OK, code)
	require.Equal(t, lock.Encode(), chunk.Data)
}

func TestCountInputs(t *testing.T) {
	h, _ := buildFixture(t)
	require.Equal(t, uint64(2), h.CountInputs())
}

func TestLoadTxHashIsStable(t *testing.T) {
	h, _ := buildFixture(t)
	buf := make([]byte, 32)
	a, code := h.LoadTxHash(buf, 0)
	require.Equal(t, hostvm.OK, code)
	b, code := h.LoadTxHash(buf, 0)
	require.Equal(t, hostvm.OK, code)
	require.Equal(t, a.Data, b.Data)
}
