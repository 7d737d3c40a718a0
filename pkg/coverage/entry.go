// Package coverage implements the coverage interpreter (spec §4.5, C5):
// parsing the 3-bytes-per-entry coverage array out of the witness lock
// field, and absorbing the transaction fragments each entry selects into
// the running digest. Per spec §9's design note, parsing is a single pure
// step (Decode) producing a tagged sum type (Entry), and each variant
// carries its own absorb policy — wire parsing and digest policy are
// independently testable.
package coverage

import (
	"fmt"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/chunkload"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/resultcode"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/wirefmt"
)

// Label is the 4-bit entry tag (spec §3).
type Label byte

const (
	LabelSighashAll     Label = 0x0
	LabelOutput         Label = 0x1
	LabelInputCell      Label = 0x2
	LabelInputCellSince Label = 0x3
	LabelInputOutpoint  Label = 0x4
	LabelEndOfList      Label = 0xF
)

// String renders a Label the way otx-console lists a decoded coverage
// array.
func (l Label) String() string {
	switch l {
	case LabelSighashAll:
		return "SIGHASH_ALL"
	case LabelOutput:
		return "OUTPUT"
	case LabelInputCell:
		return "INPUT_CELL"
	case LabelInputCellSince:
		return "INPUT_CELL_SINCE"
	case LabelInputOutpoint:
		return "INPUT_OUTPOINT"
	case LabelEndOfList:
		return "END_OF_LIST"
	default:
		return fmt.Sprintf("label(0x%x)", byte(l))
	}
}

// Fixed stack-buffer sizes the interpreter loads components into, per
// spec §5. These are contractual, not tunable.
const (
	scriptBufferSize = 32 * 1024
	inputBufferSize  = 4 * 1024
)

// Entry is one decoded coverage-array item. Exactly one of the typed
// variants below is the effective payload; Absorb dispatches on Label.
type Entry struct {
	Label        Label
	Index        uint16 // 12-bit component index (spec §3)
	CellMask     CellMask
	OutpointMask OutpointMask
}

// SighashAll builds a LabelSighashAll entry.
func SighashAll() Entry { return Entry{Label: LabelSighashAll} }

// Output builds a LabelOutput entry.
func Output(index uint16, mask CellMask) Entry {
	return Entry{Label: LabelOutput, Index: index, CellMask: mask}
}

// InputCell builds a LabelInputCell entry.
func InputCell(index uint16, mask CellMask) Entry {
	return Entry{Label: LabelInputCell, Index: index, CellMask: mask}
}

// InputCellSince builds a LabelInputCellSince entry.
func InputCellSince(index uint16, mask CellMask) Entry {
	return Entry{Label: LabelInputCellSince, Index: index, CellMask: mask}
}

// InputOutpoint builds a LabelInputOutpoint entry.
func InputOutpoint(index uint16, mask OutpointMask) Entry {
	return Entry{Label: LabelInputOutpoint, Index: index, OutpointMask: mask}
}

// EndOfList builds the terminator entry.
func EndOfList() Entry { return Entry{Label: LabelEndOfList} }

// Decode parses the coverage array prefix of lock: a sequence of 3-byte
// entries terminated by LabelEndOfList. It returns the decoded entries
// (terminator included), the number of bytes consumed (always 3*len
// (entries)), and a result code. Decode does not validate the overall
// lock length against the trailing signature — that is the caller's
// job (spec §4.5 step 4), since Decode alone cannot know where the
// coverage array was supposed to end.
func Decode(lock []byte) (entries []Entry, consumed int, code resultcode.Code) {
	c := 0
	for {
		if c+3 > len(lock) {
			return nil, 0, resultcode.InvalidLabel
		}
		b0, b1, b2 := lock[c], lock[c+1], lock[c+2]
		c += 3

		label := Label(b0 >> 4)
		index := (uint16(b0&0x0F) << 8) | uint16(b1)
		mask := b2

		var e Entry
		switch label {
		case LabelSighashAll:
			e = SighashAll()
		case LabelOutput:
			e = Output(index, CellMask(mask))
		case LabelInputCell:
			e = InputCell(index, CellMask(mask))
		case LabelInputCellSince:
			e = InputCellSince(index, CellMask(mask))
		case LabelInputOutpoint:
			e = InputOutpoint(index, OutpointMask(mask))
		case LabelEndOfList:
			e = EndOfList()
		default:
			return nil, 0, resultcode.InvalidLabel
		}
		entries = append(entries, e)
		if label == LabelEndOfList {
			return entries, c, resultcode.OK
		}
	}
}

// Absorb feeds the transaction fragments e selects into h, via loader,
// per spec §4.5 step 3. The mask bits are honored in the fixed order the
// spec requires; sub-field order within a loaded Script is fixed too
// (code_hash, args, hash_type).
//
// Unrecognized mask bits are accepted silently (see DESIGN.md: the
// reference implementation does this, and bug-for-bug compatibility
// with deployed wallets matters more here than defensive strictness).
func (e Entry) Absorb(loader hostvm.Loader, h *txhash.State) resultcode.Code {
	switch e.Label {
	case LabelSighashAll:
		return absorbSighashAll(loader, h)
	case LabelOutput:
		return absorbCell(loader, h, hostvm.SourceOutput, int(e.Index), e.CellMask, false)
	case LabelInputCell:
		return absorbCell(loader, h, hostvm.SourceInput, int(e.Index), e.CellMask, false)
	case LabelInputCellSince:
		return absorbCell(loader, h, hostvm.SourceInput, int(e.Index), e.CellMask, true)
	case LabelInputOutpoint:
		return absorbOutpoint(loader, h, int(e.Index), e.OutpointMask)
	case LabelEndOfList:
		return resultcode.OK
	default:
		return resultcode.InvalidLabel
	}
}

func absorbSighashAll(loader hostvm.Loader, h *txhash.State) resultcode.Code {
	buf := make([]byte, txhash.Size)
	chunk, code := loader.LoadTxHash(buf, 0)
	if code != hostvm.OK {
		return mapCode(code)
	}
	if chunk.Total != txhash.Size || len(chunk.Data) != txhash.Size {
		return resultcode.Syscall
	}
	h.Update(chunk.Data)
	return resultcode.OK
}

func absorbCell(loader hostvm.Loader, h *txhash.State, source hostvm.Source, index int, mask CellMask, withSince bool) resultcode.Code {
	if mask == CellAll {
		if code := chunkload.Stream(h, func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
			return loader.LoadCell(buf, offset, index, source)
		}); code != hostvm.OK {
			return mapCode(code)
		}
		if code := chunkload.Stream(h, func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
			return loader.LoadCellData(buf, offset, index, source)
		}); code != hostvm.OK {
			return mapCode(code)
		}
	} else {
		if mask&CellCapacity != 0 {
			buf := make([]byte, 8)
			chunk, code := loader.LoadCellField(buf, 0, index, source, hostvm.CellFieldCapacity)
			if code != hostvm.OK {
				return mapCode(code)
			}
			if chunk.Total != 8 || len(chunk.Data) != 8 {
				return resultcode.Syscall
			}
			h.Update(chunk.Data)
		}
		if mask.HasAnyType() {
			if rc := absorbScriptField(loader, h, index, source, hostvm.CellFieldType, mask.typeMaskToLockMask()); rc != resultcode.OK {
				return rc
			}
		}
		if mask.HasAnyLock() {
			if rc := absorbScriptField(loader, h, index, source, hostvm.CellFieldLock, mask); rc != resultcode.OK {
				return rc
			}
		}
		if mask&CellData != 0 {
			if code := chunkload.Stream(h, func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
				return loader.LoadCellData(buf, offset, index, source)
			}); code != hostvm.OK {
				return mapCode(code)
			}
		}
	}

	if withSince {
		buf := make([]byte, 8)
		chunk, code := loader.LoadInputField(buf, 0, index, hostvm.SourceInput, hostvm.InputFieldSince)
		if code != hostvm.OK {
			return mapCode(code)
		}
		if chunk.Total != 8 || len(chunk.Data) != 8 {
			return resultcode.Syscall
		}
		h.Update(chunk.Data)
	}
	return resultcode.OK
}

// absorbScriptField loads one Script field (type or lock) of the cell at
// index/source, then absorbs the selected sub-fields in declaration
// order: code_hash, args, hash_type (spec §4.5 step 2/3). lockMask's
// bits are always the CellLock* bit positions, even when absorbing the
// type script — the caller translates type.* bits beforehand.
func absorbScriptField(loader hostvm.Loader, h *txhash.State, index int, source hostvm.Source, field hostvm.CellField, lockMask CellMask) resultcode.Code {
	raw, tooLong, code := chunkload.ReadFull(func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
		return loader.LoadCellField(buf, offset, index, source, field)
	}, scriptBufferSize)
	if code != hostvm.OK {
		return mapCode(code)
	}
	// The reference implementation's checked load wrapper itself fails
	// when the script exceeds the stack buffer here; that is the same
	// class of failure as any other non-success load, not the dedicated
	// ERROR_SCRIPT_TOO_LONG path (that only applies to the executing
	// script's own args, loaded by pkg/lockscript).
	if tooLong {
		return resultcode.Syscall
	}
	view, err := wirefmt.VerifyScript(raw)
	if err != nil {
		return resultcode.Encoding
	}
	if lockMask&CellLockCodeHash != 0 {
		h.Update(view.CodeHash())
	}
	if lockMask&CellLockArgs != 0 {
		h.Update(view.RawArgs())
	}
	if lockMask&CellLockHashType != 0 {
		h.Update([]byte{view.HashType()})
	}
	return resultcode.OK
}

func absorbOutpoint(loader hostvm.Loader, h *txhash.State, index int, mask OutpointMask) resultcode.Code {
	if mask == OutpointAll {
		if code := chunkload.Stream(h, func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
			return loader.LoadInput(buf, offset, index, hostvm.SourceInput)
		}); code != hostvm.OK {
			return mapCode(code)
		}
		return resultcode.OK
	}

	if mask&OutpointSince != 0 {
		buf := make([]byte, 8)
		chunk, code := loader.LoadInputField(buf, 0, index, hostvm.SourceInput, hostvm.InputFieldSince)
		if code != hostvm.OK {
			return mapCode(code)
		}
		if chunk.Total != 8 || len(chunk.Data) != 8 {
			return resultcode.Syscall
		}
		h.Update(chunk.Data)
	}

	raw, tooLong, code := chunkload.ReadFull(func(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
		return loader.LoadInputField(buf, offset, index, hostvm.SourceInput, hostvm.InputFieldOutPoint)
	}, inputBufferSize)
	if code != hostvm.OK {
		return mapCode(code)
	}
	if tooLong {
		return resultcode.Syscall
	}
	view, err := wirefmt.VerifyOutPoint(raw)
	if err != nil {
		return resultcode.Encoding
	}
	if mask&OutpointTxHash != 0 {
		h.Update(view.TxHash())
	}
	if mask&OutpointIndex != 0 {
		// BUG (reproduced on purpose, see DESIGN.md "open questions"):
		// the reference implementation re-reads tx_hash here instead of
		// the outpoint index, a copy-paste bug in the original C. This
		// port matches it byte-for-byte so signatures produced against
		// the reference core still verify here.
		h.Update(view.TxHash())
	}
	return resultcode.OK
}

func mapCode(c hostvm.Code) resultcode.Code {
	switch c {
	case hostvm.OutOfBound:
		return resultcode.OutOfBound
	default:
		return resultcode.Syscall
	}
}
