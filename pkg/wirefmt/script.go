package wirefmt

import "fmt"

// ScriptView is a shallow, verified projection over a serialized Script
// table: (code_hash: Byte32, hash_type: byte, args: Bytes). Field order
// matches spec §3 and is load-bearing for §4.5's "declaration order"
// absorption rule.
type ScriptView struct {
	table *Table
}

// VerifyScript shallow-verifies raw as a Script table.
func VerifyScript(raw []byte) (*ScriptView, error) {
	t, err := VerifyTable(raw)
	if err != nil {
		return nil, fmt.Errorf("wirefmt: Script: %w", err)
	}
	if t.FieldCount() != 3 {
		return nil, fmt.Errorf("wirefmt: Script: expected 3 fields, got %d", t.FieldCount())
	}
	if len(t.Field(0)) != 32 {
		return nil, fmt.Errorf("wirefmt: Script.code_hash: expected 32 bytes, got %d", len(t.Field(0)))
	}
	if len(t.Field(1)) != 1 {
		return nil, fmt.Errorf("wirefmt: Script.hash_type: expected 1 byte, got %d", len(t.Field(1)))
	}
	return &ScriptView{table: t}, nil
}

// CodeHash returns the 32-byte code_hash field, aliasing the input buffer.
func (s *ScriptView) CodeHash() []byte { return s.table.Field(0) }

// HashType returns the 1-byte hash_type field.
func (s *ScriptView) HashType() byte { return s.table.Field(1)[0] }

// Args returns the decoded args Bytes field.
func (s *ScriptView) Args() ([]byte, error) {
	return DecodeBytes(s.table.Field(2))
}

// RawArgs returns the still-framed args field (molecule Bytes encoding,
// length prefix included), for callers that only need to absorb it.
func (s *ScriptView) RawArgs() []byte { return s.table.Field(2) }

// EncodeScript builds a Script table from its three fields.
func EncodeScript(codeHash [32]byte, hashType byte, args []byte) []byte {
	return BuildTable([][]byte{
		codeHash[:],
		{hashType},
		EncodeBytes(args),
	})
}
