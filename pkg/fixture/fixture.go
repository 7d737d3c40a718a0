// Package fixture is the supplemented conformance-fixture model
// (SPEC_FULL.md §12 feature 2): a YAML-described transaction plus the
// cells it spends, tagged with a stable uuid, and a bbolt-backed store
// keyed by that uuid so `otx-bench` can replay a large fixture corpus
// without re-reading the YAML files from disk on every run.
package fixture

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

// Fixture is one conformance scenario: a transaction, the cells its
// inputs reference (since a bare Transaction carries only OutPoints),
// the lock script under test, and the expected result code's symbolic
// name (checked by otx-verify, not parsed into resultcode.Code here to
// keep this package independent of that one).
type Fixture struct {
	Name      string            `yaml:"name"`
	ID        string            `yaml:"id"`
	Want      string            `yaml:"want"`
	Script    ScriptYAML        `yaml:"script"`
	Cells     []CellYAML        `yaml:"cells"`
	CellData  map[string]string `yaml:"cell_data"` // outpoint hex -> hex data
	Inputs    []InputYAML       `yaml:"inputs"`
	Outputs   []CellYAML        `yaml:"outputs"`
	Witnesses []string          `yaml:"witnesses"` // hex-encoded
}

// ScriptYAML is the YAML projection of txtypes.Script.
type ScriptYAML struct {
	CodeHash string `yaml:"code_hash"` // hex, 32 bytes
	HashType byte   `yaml:"hash_type"`
	Args     string `yaml:"args"` // hex
}

// OutPointYAML is the YAML projection of txtypes.OutPoint.
type OutPointYAML struct {
	TxHash string `yaml:"tx_hash"` // hex, 32 bytes
	Index  uint32 `yaml:"index"`
}

// InputYAML is the YAML projection of txtypes.CellInput.
type InputYAML struct {
	Since          uint64       `yaml:"since"`
	PreviousOutput OutPointYAML `yaml:"previous_output"`
}

// CellYAML is the YAML projection of txtypes.CellOutput, keyed by the
// outpoint it lives at for inputs (ignored for outputs).
type CellYAML struct {
	OutPoint OutPointYAML `yaml:"out_point"`
	Capacity uint64       `yaml:"capacity"`
	Lock     ScriptYAML   `yaml:"lock"`
	Type     *ScriptYAML  `yaml:"type,omitempty"`
}

// Parse decodes a YAML document into a Fixture, assigning a fresh uuid
// if ID is empty.
func Parse(doc []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(doc, &f); err != nil {
		return Fixture{}, fmt.Errorf("fixture: parsing yaml: %w", err)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return f, nil
}

// Marshal renders f back to YAML, the inverse of Parse.
func Marshal(f Fixture) ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("fixture: marshaling yaml: %w", err)
	}
	return out, nil
}

func decodeHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("fixture: expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("fixture: invalid hex: %w", err)
	}
	return out, nil
}

// toOutPoint converts the YAML projection to a txtypes.OutPoint.
func (o OutPointYAML) toOutPoint() (txtypes.OutPoint, error) {
	txHash, err := decodeHex32(o.TxHash)
	if err != nil {
		return txtypes.OutPoint{}, fmt.Errorf("fixture: out_point.tx_hash: %w", err)
	}
	return txtypes.OutPoint{TxHash: txHash, Index: o.Index}, nil
}

// toScript converts the YAML projection to a txtypes.Script.
func (s ScriptYAML) toScript() (txtypes.Script, error) {
	codeHash, err := decodeHex32(s.CodeHash)
	if err != nil {
		return txtypes.Script{}, fmt.Errorf("fixture: script.code_hash: %w", err)
	}
	args, err := decodeHex(s.Args)
	if err != nil {
		return txtypes.Script{}, fmt.Errorf("fixture: script.args: %w", err)
	}
	return txtypes.Script{CodeHash: codeHash, HashType: s.HashType, Args: args}, nil
}

// Resolved is a Fixture materialized into the txtypes shapes and raw
// bytes pkg/simhost needs to build a Host.
type Resolved struct {
	Tx       txtypes.Transaction
	Script   txtypes.Script
	Cells    map[[36]byte]txtypes.CellOutput
	CellData map[[36]byte][]byte
	Want     string
}

// Resolve decodes every hex/YAML field of f into the concrete types
// pkg/simhost.New requires.
func Resolve(f Fixture) (Resolved, error) {
	script, err := f.Script.toScript()
	if err != nil {
		return Resolved{}, err
	}

	cells := make(map[[36]byte]txtypes.CellOutput, len(f.Cells))
	for _, c := range f.Cells {
		op, err := c.OutPoint.toOutPoint()
		if err != nil {
			return Resolved{}, err
		}
		lock, err := c.Lock.toScript()
		if err != nil {
			return Resolved{}, err
		}
		cell := txtypes.CellOutput{Capacity: c.Capacity, Lock: lock}
		if c.Type != nil {
			typ, err := c.Type.toScript()
			if err != nil {
				return Resolved{}, err
			}
			cell.Type = &typ
		}
		cells[outpointKey(op)] = cell
	}

	cellData := make(map[[36]byte][]byte, len(f.CellData))
	for opHex, dataHex := range f.CellData {
		opBytes, err := decodeHex(opHex)
		if err != nil || len(opBytes) != 36 {
			return Resolved{}, fmt.Errorf("fixture: cell_data key %q: expected 36-byte hex outpoint", opHex)
		}
		var key [36]byte
		copy(key[:], opBytes)
		data, err := decodeHex(dataHex)
		if err != nil {
			return Resolved{}, fmt.Errorf("fixture: cell_data value: %w", err)
		}
		cellData[key] = data
	}

	inputs := make([]txtypes.CellInput, len(f.Inputs))
	for i, in := range f.Inputs {
		op, err := in.PreviousOutput.toOutPoint()
		if err != nil {
			return Resolved{}, err
		}
		inputs[i] = txtypes.CellInput{Since: in.Since, PreviousOutput: op}
	}

	outputs := make([]txtypes.CellOutput, len(f.Outputs))
	for i, o := range f.Outputs {
		lock, err := o.Lock.toScript()
		if err != nil {
			return Resolved{}, err
		}
		cell := txtypes.CellOutput{Capacity: o.Capacity, Lock: lock}
		if o.Type != nil {
			typ, err := o.Type.toScript()
			if err != nil {
				return Resolved{}, err
			}
			cell.Type = &typ
		}
		outputs[i] = cell
	}

	witnesses := make([][]byte, len(f.Witnesses))
	for i, w := range f.Witnesses {
		b, err := decodeHex(w)
		if err != nil {
			return Resolved{}, fmt.Errorf("fixture: witnesses[%d]: %w", i, err)
		}
		witnesses[i] = b
	}

	return Resolved{
		Tx: txtypes.Transaction{
			Inputs:    inputs,
			Outputs:   outputs,
			Witnesses: witnesses,
		},
		Script:   script,
		Cells:    cells,
		CellData: cellData,
		Want:     f.Want,
	}, nil
}

func outpointKey(op txtypes.OutPoint) [36]byte {
	var k [36]byte
	copy(k[:], op.Encode())
	return k
}
