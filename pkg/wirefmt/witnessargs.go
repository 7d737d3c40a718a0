package wirefmt

import "fmt"

// WitnessArgsView is a shallow projection over a serialized WitnessArgs
// table: (lock: BytesOpt, input_type: BytesOpt, output_type: BytesOpt).
// The core (spec §3) reads only Lock from the first group witness.
type WitnessArgsView struct {
	table *Table
}

// VerifyWitnessArgs shallow-verifies raw as a WitnessArgs table.
func VerifyWitnessArgs(raw []byte) (*WitnessArgsView, error) {
	t, err := VerifyTable(raw)
	if err != nil {
		return nil, fmt.Errorf("wirefmt: WitnessArgs: %w", err)
	}
	if t.FieldCount() != 3 {
		return nil, fmt.Errorf("wirefmt: WitnessArgs: expected 3 fields, got %d", t.FieldCount())
	}
	return &WitnessArgsView{table: t}, nil
}

// Lock returns the decoded lock field and whether it was present. The
// core's C2 reader requires it present; see spec §4.2.
func (w *WitnessArgsView) Lock() (b []byte, present bool, err error) {
	return DecodeBytesOpt(w.table.Field(0))
}

// InputType returns the decoded input_type field.
func (w *WitnessArgsView) InputType() (b []byte, present bool, err error) {
	return DecodeBytesOpt(w.table.Field(1))
}

// OutputType returns the decoded output_type field.
func (w *WitnessArgsView) OutputType() (b []byte, present bool, err error) {
	return DecodeBytesOpt(w.table.Field(2))
}

// EncodeWitnessArgs builds a WitnessArgs table. Any of lock/inputType/
// outputType may be nil to encode as absent.
func EncodeWitnessArgs(lock, inputType, outputType []byte) []byte {
	return BuildTable([][]byte{
		EncodeBytesOpt(lock, lock != nil),
		EncodeBytesOpt(inputType, inputType != nil),
		EncodeBytesOpt(outputType, outputType != nil),
	})
}
