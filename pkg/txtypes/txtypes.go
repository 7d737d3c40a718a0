// Package txtypes is the Go-native transaction data model the reference
// core's host adapter is ultimately backed by (spec §3's data model,
// materialized): Script, OutPoint, CellInput, CellOutput, WitnessArgs,
// and the Transaction that holds them. Each type except Transaction has
// an Encode method and a matching DecodeX function that delegate to
// pkg/wirefmt for the molecule framing, the way
// the teacher's transaction package wraps a binary reader/writer around
// each field (Input.go, Output.go, Witness.go).
package txtypes

import (
	"fmt"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/wirefmt"
)

// Script mirrors wirefmt.ScriptView's shape as an owned value.
type Script struct {
	CodeHash [32]byte
	HashType byte
	Args     []byte
}

// Encode serializes s as a molecule Script table.
func (s Script) Encode() []byte {
	return wirefmt.EncodeScript(s.CodeHash, s.HashType, s.Args)
}

// DecodeScript parses raw as a molecule Script table into an owned Script.
func DecodeScript(raw []byte) (Script, error) {
	view, err := wirefmt.VerifyScript(raw)
	if err != nil {
		return Script{}, err
	}
	args, err := view.Args()
	if err != nil {
		return Script{}, err
	}
	var s Script
	copy(s.CodeHash[:], view.CodeHash())
	s.HashType = view.HashType()
	s.Args = append([]byte(nil), args...)
	return s, nil
}

// Equal reports whether two scripts are field-for-field identical, the
// comparison the reference core performs to find a transaction's input
// group (spec §4.1: "inputs whose lock script equals the one currently
// executing").
func (s Script) Equal(other Script) bool {
	return s.CodeHash == other.CodeHash && s.HashType == other.HashType && string(s.Args) == string(other.Args)
}

// OutPoint mirrors wirefmt.OutPointView's shape as an owned value.
type OutPoint struct {
	TxHash [32]byte
	Index  uint32
}

// Encode serializes o as a molecule OutPoint struct.
func (o OutPoint) Encode() []byte {
	return wirefmt.EncodeOutPoint(o.TxHash, o.Index)
}

// DecodeOutPoint parses raw as a molecule OutPoint struct.
func DecodeOutPoint(raw []byte) (OutPoint, error) {
	view, err := wirefmt.VerifyOutPoint(raw)
	if err != nil {
		return OutPoint{}, err
	}
	var o OutPoint
	copy(o.TxHash[:], view.TxHash())
	o.Index = view.Index()
	return o, nil
}

// CellInput is a transaction input: a since value guarding relative/
// absolute timelocks, and the previous output it spends.
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

// Encode serializes i as the molecule CellInput struct: an 8-byte
// little-endian since followed by the OutPoint struct.
func (i CellInput) Encode() []byte {
	out := make([]byte, 8+36)
	for b := 0; b < 8; b++ {
		out[b] = byte(i.Since >> (8 * b))
	}
	copy(out[8:], i.PreviousOutput.Encode())
	return out
}

// DecodeCellInput parses raw as a molecule CellInput struct.
func DecodeCellInput(raw []byte) (CellInput, error) {
	if len(raw) != 8+36 {
		return CellInput{}, fmt.Errorf("txtypes: CellInput: expected 44 bytes, got %d", len(raw))
	}
	var since uint64
	for b := 0; b < 8; b++ {
		since |= uint64(raw[b]) << (8 * b)
	}
	op, err := DecodeOutPoint(raw[8:])
	if err != nil {
		return CellInput{}, err
	}
	return CellInput{Since: since, PreviousOutput: op}, nil
}

// CellOutput is a transaction output: its capacity, lock script, and
// optional type script.
type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// Encode serializes c as the molecule CellOutput table: (capacity: u64,
// lock: Script, type: ScriptOpt).
func (c CellOutput) Encode() []byte {
	var capBuf [8]byte
	for b := 0; b < 8; b++ {
		capBuf[b] = byte(c.Capacity >> (8 * b))
	}
	typeField := []byte{}
	if c.Type != nil {
		typeField = c.Type.Encode()
	}
	return wirefmt.BuildTable([][]byte{capBuf[:], c.Lock.Encode(), typeField})
}

// DecodeCellOutput parses raw as a molecule CellOutput table.
func DecodeCellOutput(raw []byte) (CellOutput, error) {
	t, err := wirefmt.VerifyTable(raw)
	if err != nil {
		return CellOutput{}, fmt.Errorf("txtypes: CellOutput: %w", err)
	}
	if t.FieldCount() != 3 {
		return CellOutput{}, fmt.Errorf("txtypes: CellOutput: expected 3 fields, got %d", t.FieldCount())
	}
	capField := t.Field(0)
	if len(capField) != 8 {
		return CellOutput{}, fmt.Errorf("txtypes: CellOutput.capacity: expected 8 bytes, got %d", len(capField))
	}
	var capacity uint64
	for b := 0; b < 8; b++ {
		capacity |= uint64(capField[b]) << (8 * b)
	}
	lock, err := DecodeScript(t.Field(1))
	if err != nil {
		return CellOutput{}, err
	}
	var typ *Script
	if tf := t.Field(2); len(tf) > 0 {
		s, err := DecodeScript(tf)
		if err != nil {
			return CellOutput{}, err
		}
		typ = &s
	}
	return CellOutput{Capacity: capacity, Lock: lock, Type: typ}, nil
}

// WitnessArgs mirrors wirefmt.WitnessArgsView's shape as an owned value.
type WitnessArgs struct {
	Lock       []byte
	HasLock    bool
	InputType  []byte
	HasInput   bool
	OutputType []byte
	HasOutput  bool
}

// Encode serializes w as a molecule WitnessArgs table.
func (w WitnessArgs) Encode() []byte {
	var lock, inputType, outputType []byte
	if w.HasLock {
		lock = w.Lock
	}
	if w.HasInput {
		inputType = w.InputType
	}
	if w.HasOutput {
		outputType = w.OutputType
	}
	return wirefmt.EncodeWitnessArgs(lock, inputType, outputType)
}

// DecodeWitnessArgs parses raw as a molecule WitnessArgs table.
func DecodeWitnessArgs(raw []byte) (WitnessArgs, error) {
	view, err := wirefmt.VerifyWitnessArgs(raw)
	if err != nil {
		return WitnessArgs{}, err
	}
	var w WitnessArgs
	w.Lock, w.HasLock, err = view.Lock()
	if err != nil {
		return WitnessArgs{}, err
	}
	w.InputType, w.HasInput, err = view.InputType()
	if err != nil {
		return WitnessArgs{}, err
	}
	w.OutputType, w.HasOutput, err = view.OutputType()
	if err != nil {
		return WitnessArgs{}, err
	}
	return w, nil
}

// Transaction is the full transaction an open transaction lock script
// authorizes a fragment of: a header-less collection of cell inputs,
// cell outputs, their paired output data, and witnesses, plus the
// OutPoint cell_deps the C reference core never reads but a Transaction
// value needs to round-trip.
type Transaction struct {
	Version     uint32
	CellDeps    []OutPoint
	HeaderDeps  [][32]byte
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

// InputGroup returns the indices, in global input order, of every input
// whose previous output's lock script equals lock — the "current script
// group" the reference core's SourceGroupInput addresses (spec §4.1).
// resolve is supplied by the caller because resolving an OutPoint to the
// CellOutput it references requires following it into the cells it
// spent, which a bare Transaction value does not carry.
func (tx Transaction) InputGroup(lock Script, resolve func(OutPoint) (CellOutput, bool)) []int {
	var group []int
	for i, in := range tx.Inputs {
		cell, ok := resolve(in.PreviousOutput)
		if !ok {
			continue
		}
		if cell.Lock.Equal(lock) {
			group = append(group, i)
		}
	}
	return group
}
