// Command otx-sign is the off-chain counterpart to the lock script core
// (SPEC_FULL.md §12 feature 1): given a fixture whose witness lock field
// already carries a coverage array followed by a zero-filled signature
// placeholder, it computes the digest that array covers, signs it with a
// raw secp256k1 key, and prints the message, the signature and the
// signer's blake160 identity. It does not write the signature back into
// the witness.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/digest"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/fixture"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/sigverify"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
)

func main() {
	app := cli.NewApp()
	app.Name = "otx-sign"
	app.Usage = "sign the digest an open-transaction coverage array selects"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "fixture", Usage: "path to a fixture YAML file"},
		cli.StringFlag{Name: "key", Usage: "hex-encoded secp256k1 private key; prompted for if omitted"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	path := ctx.String("fixture")
	if path == "" {
		return cli.NewExitError("missing required --fixture", 1)
	}

	keyHex := ctx.String("key")
	if keyHex == "" {
		fmt.Fprint(os.Stderr, "private key (hex): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading key: %v", err), 1)
		}
		keyHex = string(raw)
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil || len(keyBytes) != 32 {
		return cli.NewExitError("key must be 32 bytes of hex", 1)
	}
	priv := secp256k1.PrivKeyFromBytes(keyBytes)

	doc, err := os.ReadFile(path)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading fixture: %v", err), 1)
	}
	f, err := fixture.Parse(doc)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("parsing fixture: %v", err), 1)
	}
	resolved, err := fixture.Resolve(f)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("resolving fixture: %v", err), 1)
	}

	host, err := simhost.New(resolved.Tx, resolved.Cells, resolved.CellData, resolved.Script, nil)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("building host: %v", err), 1)
	}

	result, code := digest.Build(host)
	if !code.Success() {
		return cli.NewExitError(fmt.Sprintf("building digest: %s", code), 1)
	}

	sig, err := sigverify.Sign(priv, result.Message)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("signing: %v", err), 1)
	}

	identity := txhash.Blake160(priv.PubKey().SerializeCompressed())
	fmt.Printf("message:  %s\n", hex.EncodeToString(result.Message[:]))
	fmt.Printf("signature: %s\n", hex.EncodeToString(sig[:]))
	fmt.Printf("identity:  %s\n", hex.EncodeToString(identity[:]))
	return nil
}
