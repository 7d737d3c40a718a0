// Command otx-console is an interactive readline REPL for stepping the
// coverage interpreter one entry at a time against a loaded fixture,
// grounded on the teacher's own readline-driven NeoVM debugger
// (cli/vm/cli.go).
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/coverage"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/fixture"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/lockscript"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/simhost"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

// session tracks one loaded fixture plus the interpreter's position
// within its coverage array, so "step" can absorb one entry at a time
// instead of running the whole core in a single call.
type session struct {
	resolved fixture.Resolved
	entries  []coverage.Entry
	name     string

	host  hostvm.Loader
	state *txhash.State
	pos   int
}

func (s *session) reset() error {
	host, err := simhost.New(s.resolved.Tx, s.resolved.Cells, s.resolved.CellData, s.resolved.Script, nil)
	if err != nil {
		return err
	}
	s.host = host
	s.state = txhash.NewState()
	s.pos = 0
	return nil
}

func main() {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("load"),
		readline.PcItem("entries"),
		readline.PcItem("step"),
		readline.PcItem("next"),
		readline.PcItem("verify"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "otx> ",
		AutoComplete: completer,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close() //nolint:errcheck

	var sess *session
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "load":
			if len(fields) != 2 {
				fmt.Println("usage: load <fixture.yaml>")
				continue
			}
			sess, err = loadSession(fields[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Printf("loaded %q (%d entries)\n", sess.name, len(sess.entries))
		case "entries":
			if sess == nil {
				fmt.Println("no fixture loaded")
				continue
			}
			for i, e := range sess.entries {
				marker := " "
				if i == sess.pos {
					marker = ">"
				}
				fmt.Printf("%s%3d  %s\n", marker, i, e.Label)
			}
		case "step", "next":
			if sess == nil {
				fmt.Println("no fixture loaded")
				continue
			}
			if sess.pos >= len(sess.entries) {
				fmt.Println("coverage array exhausted, use load to restart")
				continue
			}
			entry := sess.entries[sess.pos]
			if code := entry.Absorb(sess.host, sess.state); code != resultcode.OK {
				fmt.Printf("%3d  %-17s absorb failed: %s\n", sess.pos, entry.Label, code)
				continue
			}
			digest := sess.state.Peek()
			fmt.Printf("%3d  %-17s running digest %s\n", sess.pos, entry.Label, hex.EncodeToString(digest[:]))
			sess.pos++
		case "verify":
			if sess == nil {
				fmt.Println("no fixture loaded")
				continue
			}
			host, err := simhost.New(sess.resolved.Tx, sess.resolved.Cells, sess.resolved.CellData, sess.resolved.Script, nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Println(lockscript.Verify(host))
		case "exit", "quit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func loadSession(path string) (*session, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	f, err := fixture.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	resolved, err := fixture.Resolve(f)
	if err != nil {
		return nil, fmt.Errorf("resolving fixture: %w", err)
	}

	var entries []coverage.Entry
	if len(resolved.Tx.Witnesses) > 0 {
		wargs, err := txtypes.DecodeWitnessArgs(resolved.Tx.Witnesses[0])
		if err == nil && wargs.HasLock {
			entries, _, _ = coverage.Decode(wargs.Lock)
		}
	}

	sess := &session{resolved: resolved, entries: entries, name: f.Name}
	if err := sess.reset(); err != nil {
		return nil, fmt.Errorf("building host: %w", err)
	}
	return sess, nil
}
