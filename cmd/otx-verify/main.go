// Command otx-verify runs one transaction fixture through the lock
// script core and prints the result code, the way the teacher's own
// `cli/vm` drives the NeoVM against a script for manual inspection.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/fixture"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/lockscript"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
)

func main() {
	app := cli.NewApp()
	app.Name = "otx-verify"
	app.Usage = "run one open-transaction fixture through the lock script core"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "fixture", Usage: "path to a fixture YAML file"},
		cli.StringFlag{Name: "fixture-db", Usage: "bbolt fixture store path (alternative to --fixture)"},
		cli.StringFlag{Name: "id", Usage: "fixture ID to load from --fixture-db"},
		cli.BoolFlag{Name: "quiet", Usage: "suppress informational logging"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	f, err := loadFixture(ctx)
	if err != nil {
		return err
	}
	resolved, err := fixture.Resolve(f)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("resolving fixture: %v", err), 1)
	}

	log := zap.NewNop()
	if !ctx.Bool("quiet") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		log = l
	}
	defer log.Sync() //nolint:errcheck

	host, err := simhost.New(resolved.Tx, resolved.Cells, resolved.CellData, resolved.Script, log)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("building host: %v", err), 1)
	}

	code := lockscript.Verify(host)
	fmt.Printf("%s: %s\n", f.Name, code)

	if resolved.Want != "" && resolved.Want != code.String() {
		return cli.NewExitError(fmt.Sprintf("want %s, got %s", resolved.Want, code), 1)
	}
	if resolved.Want == "" && !code.Success() {
		return cli.NewExitError(fmt.Sprintf("verify failed: %s", code), 1)
	}
	return nil
}

// loadFixture resolves --fixture and --fixture-db/--id into a single
// fixture document, favoring whichever source the caller provided.
func loadFixture(ctx *cli.Context) (fixture.Fixture, error) {
	path := ctx.String("fixture")
	dbPath := ctx.String("fixture-db")

	switch {
	case path != "" && dbPath != "":
		return fixture.Fixture{}, cli.NewExitError("specify only one of --fixture or --fixture-db", 1)
	case path != "":
		doc, err := os.ReadFile(path)
		if err != nil {
			return fixture.Fixture{}, cli.NewExitError(fmt.Sprintf("reading fixture: %v", err), 1)
		}
		f, err := fixture.Parse(doc)
		if err != nil {
			return fixture.Fixture{}, cli.NewExitError(fmt.Sprintf("parsing fixture: %v", err), 1)
		}
		return f, nil
	case dbPath != "":
		id := ctx.String("id")
		if id == "" {
			return fixture.Fixture{}, cli.NewExitError("--fixture-db requires --id", 1)
		}
		store, err := fixture.OpenStore(dbPath)
		if err != nil {
			return fixture.Fixture{}, cli.NewExitError(fmt.Sprintf("opening fixture store: %v", err), 1)
		}
		defer store.Close()
		f, err := store.Get(id)
		if err != nil {
			return fixture.Fixture{}, cli.NewExitError(fmt.Sprintf("loading fixture %q: %v", id, err), 1)
		}
		return f, nil
	default:
		return fixture.Fixture{}, cli.NewExitError("missing required --fixture or --fixture-db", 1)
	}
}
