package wirefmt

import (
	"encoding/binary"
	"fmt"
)

// outPointSize is OutPoint's fixed molecule struct size: a 32-byte
// tx_hash followed by a 4-byte little-endian index. Unlike Script and
// WitnessArgs, OutPoint is a molecule *struct*: no size header, no
// offset table, just the concatenated fixed-size fields.
const outPointSize = 32 + 4

// OutPointView is a shallow projection over a serialized OutPoint struct.
type OutPointView struct {
	raw []byte
}

// VerifyOutPoint shallow-verifies raw as an OutPoint struct: its only
// rule is the fixed size.
func VerifyOutPoint(raw []byte) (*OutPointView, error) {
	if len(raw) != outPointSize {
		return nil, fmt.Errorf("wirefmt: OutPoint: expected %d bytes, got %d", outPointSize, len(raw))
	}
	return &OutPointView{raw: raw}, nil
}

// TxHash returns the 32-byte tx_hash field.
func (o *OutPointView) TxHash() []byte { return o.raw[0:32] }

// IndexBytes returns the raw 4-byte little-endian index field.
func (o *OutPointView) IndexBytes() []byte { return o.raw[32:36] }

// Index returns the decoded index field.
func (o *OutPointView) Index() uint32 { return binary.LittleEndian.Uint32(o.raw[32:36]) }

// EncodeOutPoint builds an OutPoint struct.
func EncodeOutPoint(txHash [32]byte, index uint32) []byte {
	buf := make([]byte, outPointSize)
	copy(buf[0:32], txHash[:])
	binary.LittleEndian.PutUint32(buf[32:36], index)
	return buf
}
