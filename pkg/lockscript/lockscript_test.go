package lockscript

import (
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/coverage"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/digest"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/sigverify"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

func genKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	var buf [32]byte
	_, err := rand.Read(buf[:])
	require.NoError(t, err)
	return secp256k1.PrivKeyFromBytes(buf[:])
}

func outpointKey(op txtypes.OutPoint) [36]byte {
	var k [36]byte
	copy(k[:], op.Encode())
	return k
}

// signedFixture builds a one-input transaction whose lock script
// authorizes priv's identity, with a correctly signed SIGHASH_ALL
// witness.
func signedFixture(t *testing.T, priv *secp256k1.PrivateKey) (txtypes.Transaction, map[[36]byte]txtypes.CellOutput, map[[36]byte][]byte, txtypes.Script) {
	t.Helper()

	identity := txhash.Blake160(priv.PubKey().SerializeCompressed())
	script := txtypes.Script{HashType: 1, Args: identity[:]}
	op := txtypes.OutPoint{Index: 0}

	entries := []coverage.Entry{coverage.SighashAll(), coverage.EndOfList()}
	placeholderLock := append(coverage.Encode(entries), make([]byte, digest.SignatureSize)...)
	witness := txtypes.WitnessArgs{Lock: placeholderLock, HasLock: true}.Encode()

	tx := txtypes.Transaction{
		Inputs:    []txtypes.CellInput{{PreviousOutput: op}},
		Outputs:   []txtypes.CellOutput{{Capacity: 500, Lock: script}},
		Witnesses: [][]byte{witness},
	}
	cells := map[[36]byte]txtypes.CellOutput{outpointKey(op): {Capacity: 1000, Lock: script}}
	data := map[[36]byte][]byte{}

	host, err := simhost.New(tx, cells, data, script, nil)
	require.NoError(t, err)
	result, code := digest.Build(host)
	require.Equal(t, resultcode.OK, code)

	sig, err := sigverify.Sign(priv, result.Message)
	require.NoError(t, err)

	signedLock := append(coverage.Encode(entries), sig[:]...)
	tx.Witnesses[0] = txtypes.WitnessArgs{Lock: signedLock, HasLock: true}.Encode()

	return tx, cells, data, script
}

func TestVerifySucceedsForCorrectlySignedTransaction(t *testing.T) {
	priv := genKey(t)
	tx, cells, data, script := signedFixture(t, priv)

	host, err := simhost.New(tx, cells, data, script, nil)
	require.NoError(t, err)

	require.Equal(t, resultcode.OK, Verify(host))
}

func TestVerifyFailsForWrongSigner(t *testing.T) {
	priv := genKey(t)
	tx, cells, data, script := signedFixture(t, priv)

	host, err := simhost.New(tx, cells, data, script, nil)
	require.NoError(t, err)
	require.Equal(t, resultcode.OK, Verify(host), "sanity: correctly signed fixture authorizes")

	// Flip a signature bit to simulate an incorrect signer.
	wargs, err := txtypes.DecodeWitnessArgs(tx.Witnesses[0])
	require.NoError(t, err)
	wargs.Lock[len(wargs.Lock)-1] ^= 0xFF
	tx.Witnesses[0] = wargs.Encode()

	host2, err := simhost.New(tx, cells, data, script, nil)
	require.NoError(t, err)
	require.NotEqual(t, resultcode.OK, Verify(host2))
}

func TestVerifyRejectsMalformedWitness(t *testing.T) {
	identity := [txhash.Blake160Size]byte{}
	script := txtypes.Script{HashType: 1, Args: identity[:]}
	op := txtypes.OutPoint{Index: 0}

	tx := txtypes.Transaction{
		Inputs:    []txtypes.CellInput{{PreviousOutput: op}},
		Witnesses: [][]byte{{0x01, 0x02, 0x03}}, // not a valid WitnessArgs table
	}
	cells := map[[36]byte]txtypes.CellOutput{outpointKey(op): {Lock: script}}

	host, err := simhost.New(tx, cells, map[[36]byte][]byte{}, script, nil)
	require.NoError(t, err)

	require.Equal(t, resultcode.Encoding, Verify(host))
}
