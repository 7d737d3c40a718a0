// Package hostvm declares the host adapter the lock script core is
// driven by (spec §4.1): typed, minimal wrappers over the loaders a CKB-VM
// host exposes for witnesses, cells, inputs, outpoints, the current
// script, and the canonical transaction hash. This package is an
// interface only — production code backs it with real syscalls; tests,
// `otx-verify`, and `otx-bench` back it with pkg/simhost.
package hostvm

import "fmt"

// Source selects which half of the transaction an indexed load addresses.
type Source int

const (
	// SourceInput addresses global input-index space.
	SourceInput Source = iota
	// SourceGroupInput addresses group-relative input-index space — the
	// inputs whose lock script equals the one currently executing.
	SourceGroupInput
	// SourceOutput addresses output-index space.
	SourceOutput
	// SourceGroupOutput addresses the (rarely used) group-relative
	// output space; included for adapter completeness, unused by the
	// lock script core itself.
	SourceGroupOutput
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceGroupInput:
		return "group_input"
	case SourceOutput:
		return "output"
	case SourceGroupOutput:
		return "group_output"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// CellField selects one fixed-size or structured field of a CellOutput
// for a partial load.
type CellField int

const (
	CellFieldCapacity CellField = iota
	CellFieldType
	CellFieldLock
	CellFieldDataHash
)

// InputField selects one field of a CellInput for a partial load.
type InputField int

const (
	InputFieldSince InputField = iota
	InputFieldOutPoint
)

// Code is the host adapter's result status. Only OutOfBound and Syscall
// are ever distinguished by the core (spec §4.1); everything else maps
// to Syscall at the call site.
type Code int

const (
	// OK: the load succeeded, Chunk carries (part of) the payload.
	OK Code = iota
	// OutOfBound: the addressed index exceeds the collection.
	OutOfBound
	// Syscall: any other host-adapter failure.
	Syscall
)

// Chunk is one (possibly partial) read of a transaction component, per
// the offset-based chunked read contract in spec §4.1.
type Chunk struct {
	// Data holds up to len(buffer) bytes starting at the requested
	// offset.
	Data []byte
	// Total is the full length of the underlying component, independent
	// of how much of it this call returned.
	Total uint64
}

// Loader is the abstract host adapter consumed by the lock script core
// (spec §4.1). Every method is a single synchronous call; none may block
// or be retried with side effects (spec §5).
type Loader interface {
	// LoadWitness reads up to len(buf) bytes of the witness at index,
	// starting at offset, from source.
	LoadWitness(buf []byte, offset uint64, index int, source Source) (Chunk, Code)
	// LoadCell reads up to len(buf) bytes of the fully serialized
	// CellOutput at index, starting at offset, from source.
	LoadCell(buf []byte, offset uint64, index int, source Source) (Chunk, Code)
	// LoadCellData reads up to len(buf) bytes of the raw output data at
	// index, starting at offset, from source.
	LoadCellData(buf []byte, offset uint64, index int, source Source) (Chunk, Code)
	// LoadCellField reads up to len(buf) bytes of one field of the cell
	// at index, starting at offset, from source.
	LoadCellField(buf []byte, offset uint64, index int, source Source, field CellField) (Chunk, Code)
	// LoadInput reads up to len(buf) bytes of the fully serialized
	// CellInput at index, starting at offset, from source.
	LoadInput(buf []byte, offset uint64, index int, source Source) (Chunk, Code)
	// LoadInputField reads up to len(buf) bytes of one field of the
	// input at index, starting at offset, from source.
	LoadInputField(buf []byte, offset uint64, index int, source Source, field InputField) (Chunk, Code)
	// LoadTxHash reads the 32-byte canonical transaction hash.
	LoadTxHash(buf []byte, offset uint64) (Chunk, Code)
	// LoadScript reads up to len(buf) bytes of the currently executing
	// lock script, starting at offset.
	LoadScript(buf []byte, offset uint64) (Chunk, Code)
	// CountInputs returns the number of inputs in the transaction (spec
	// §4.6 step 4: where the "not covered by any input" witness range
	// begins).
	CountInputs() uint64
}
