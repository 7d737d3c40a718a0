// Package wirefmt implements shallow, non-copying projections over the
// three molecule-encoded structures the open transaction lock script
// touches: WitnessArgs, Script, and OutPoint (spec §4.2). It is
// deliberately not a general molecule codec — CKB's molecule schema has
// no third-party Go implementation in this module's dependency corpus, so
// this package hand-rolls exactly the subset the core needs and nothing
// more, the same way the reference C core links against a single-header
// molecule reader rather than a general serialization framework.
package wirefmt

import (
	"encoding/binary"
	"fmt"
)

// Table is a shallow view over a molecule dynamic-size table. It never
// copies the backing buffer; every Field slice aliases raw.
type Table struct {
	raw     []byte
	offsets []uint32
}

// VerifyTable performs the molecule table verification rule: the leading
// 4-byte little-endian total size must equal len(raw); the field-offset
// header must be internally consistent (non-decreasing, in bounds). It
// does not verify field contents — callers project individual fields and
// verify those lazily, matching the "shallow" rule in spec §4.2.
func VerifyTable(raw []byte) (*Table, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("wirefmt: table too short: %d bytes", len(raw))
	}
	total := binary.LittleEndian.Uint32(raw[0:4])
	if int(total) != len(raw) {
		return nil, fmt.Errorf("wirefmt: table size header %d does not match buffer length %d", total, len(raw))
	}
	if len(raw) == 4 {
		return &Table{raw: raw}, nil
	}
	if len(raw) < 8 {
		return nil, fmt.Errorf("wirefmt: table header truncated")
	}
	firstOffset := binary.LittleEndian.Uint32(raw[4:8])
	if firstOffset < 8 || firstOffset%4 != 0 {
		return nil, fmt.Errorf("wirefmt: invalid first field offset %d", firstOffset)
	}
	fieldCount := (firstOffset - 4) / 4
	headerEnd := 4 + 4*fieldCount
	if headerEnd > uint32(len(raw)) {
		return nil, fmt.Errorf("wirefmt: offset table overruns buffer")
	}
	offsets := make([]uint32, fieldCount)
	for i := uint32(0); i < fieldCount; i++ {
		off := binary.LittleEndian.Uint32(raw[4+4*i : 8+4*i])
		if off > uint32(len(raw)) {
			return nil, fmt.Errorf("wirefmt: field %d offset %d exceeds buffer of %d bytes", i, off, len(raw))
		}
		if i > 0 && off < offsets[i-1] {
			return nil, fmt.Errorf("wirefmt: field %d offset %d is out of order", i, off)
		}
		offsets[i] = off
	}
	return &Table{raw: raw, offsets: offsets}, nil
}

// FieldCount returns the number of fields the table header declares.
func (t *Table) FieldCount() int { return len(t.offsets) }

// Field returns the raw bytes of field i, aliasing the backing buffer.
func (t *Table) Field(i int) []byte {
	start := t.offsets[i]
	end := uint32(len(t.raw))
	if i+1 < len(t.offsets) {
		end = t.offsets[i+1]
	}
	return t.raw[start:end]
}

// BuildTable assembles a molecule table from already-encoded field byte
// strings, writing the canonical total-size-then-offsets header. This is
// the signer/fixture-building counterpart to VerifyTable.
func BuildTable(fields [][]byte) []byte {
	headerLen := 4 + 4*len(fields)
	total := headerLen
	for _, f := range fields {
		total += len(f)
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(total))
	offset := headerLen
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[4+4*i:8+4*i], uint32(offset))
		copy(buf[offset:], f)
		offset += len(f)
	}
	return buf
}

// EncodeBytes wraps a byte string in molecule's `Bytes` framing: a 4-byte
// little-endian length followed by the raw bytes.
func EncodeBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}

// DecodeBytes reverses EncodeBytes, validating the embedded length
// against the slice it was handed.
func DecodeBytes(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("wirefmt: Bytes header truncated")
	}
	n := binary.LittleEndian.Uint32(raw[0:4])
	if int(n) != len(raw)-4 {
		return nil, fmt.Errorf("wirefmt: Bytes length %d does not match payload of %d bytes", n, len(raw)-4)
	}
	return raw[4:], nil
}

// EncodeBytesOpt encodes an Option<Bytes>: the full Bytes framing when
// present, zero bytes when absent. Because EncodeBytes never produces a
// zero-length result, the two cases are unambiguous on decode.
func EncodeBytesOpt(b []byte, present bool) []byte {
	if !present {
		return nil
	}
	return EncodeBytes(b)
}

// DecodeBytesOpt reverses EncodeBytesOpt.
func DecodeBytesOpt(raw []byte) (b []byte, present bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	b, err = DecodeBytes(raw)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
