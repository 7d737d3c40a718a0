// Command otx-bench replays every fixture in a bbolt-backed fixture
// store through the lock script core, recording result counts and
// verify latency to Prometheus, the way the teacher's server command
// serves /metrics alongside its primary work (cli/server/metrics.go).
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/fixture"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/lockscript"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/otxmetrics"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
)

func main() {
	app := cli.NewApp()
	app.Name = "otx-bench"
	app.Usage = "replay a fixture corpus through the lock script core and serve its metrics"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "db", Value: "fixtures.db", Usage: "bbolt fixture store path"},
		cli.StringFlag{Name: "import", Usage: "directory of fixture YAML files to load into the store before running"},
		cli.StringFlag{Name: "listen", Value: ":9323", Usage: "address to serve /metrics on"},
		cli.IntFlag{Name: "rounds", Value: 1, Usage: "how many times to replay the whole store"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer log.Sync() //nolint:errcheck
	log = log.With(zap.String("module", "otx-bench"))

	store, err := fixture.OpenStore(ctx.String("db"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("opening store: %v", err), 1)
	}
	defer store.Close()

	if dir := ctx.String("import"); dir != "" {
		if err := importFixtures(store, dir, log); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	fixtures, err := store.All()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("listing fixtures: %v", err), 1)
	}
	log.Info("loaded fixtures", zap.Int("count", len(fixtures)))

	http.Handle("/metrics", promhttp.Handler())
	addr := ctx.String("listen")
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	for round := 0; round < ctx.Int("rounds"); round++ {
		for _, f := range fixtures {
			if err := runOne(f, log); err != nil {
				log.Warn("fixture run failed", zap.String("fixture", f.Name), zap.Error(err))
			}
		}
	}
	return nil
}

func importFixtures(store *fixture.Store, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading fixture dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		f, err := fixture.Parse(doc)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := store.Put(f); err != nil {
			return fmt.Errorf("storing %s: %w", path, err)
		}
		log.Debug("imported fixture", zap.String("path", path), zap.String("id", f.ID))
	}
	return nil
}

func runOne(f fixture.Fixture, log *zap.Logger) error {
	resolved, err := fixture.Resolve(f)
	if err != nil {
		return err
	}
	host, err := simhost.New(resolved.Tx, resolved.Cells, resolved.CellData, resolved.Script, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	code := lockscript.Verify(host)
	otxmetrics.ObserveLatency(time.Since(start))
	otxmetrics.ObserveResult(code.String())

	log.Debug("verified fixture", zap.String("fixture", f.Name), zap.String("result", code.String()))
	return nil
}
