package coverage

// Encode serializes entries back to the 3-byte-per-entry wire form (spec
// §3). This is the write side the reference C core never needed (it only
// verifies); wallet tooling composing a coverage array needs it, and the
// tests build arrays through this function rather than poking bytes by
// hand. `cmd/otx-sign` does not call it: it signs a witness that already
// carries its coverage array.
//
// Encode does not require the last entry to be EndOfList — callers that
// forget it will simply produce a coverage array Decode rejects, which is
// the same failure mode a hand-rolled wallet would hit.
func Encode(entries []Entry) []byte {
	out := make([]byte, 0, 3*len(entries))
	for _, e := range entries {
		var b0, b1, b2 byte
		b0 = byte(e.Label)<<4 | byte(e.Index>>8&0x0F)
		b1 = byte(e.Index & 0xFF)
		switch e.Label {
		case LabelOutput, LabelInputCell, LabelInputCellSince:
			b2 = byte(e.CellMask)
		case LabelInputOutpoint:
			b2 = byte(e.OutpointMask)
		default:
			b2 = 0
		}
		out = append(out, b0, b1, b2)
	}
	return out
}
