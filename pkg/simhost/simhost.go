// Package simhost is the reference in-memory hostvm.Loader (SPEC_FULL.md
// §11): it answers every load against a fully materialized
// txtypes.Transaction plus the set of cells its inputs spend, the way a
// real CKB-VM host answers them against the chain state — but backed by
// a map instead of a running node. otx-verify, otx-bench, and every core
// package's tests drive the lock script core through this adapter.
//
// Encoded field bytes are cached behind an LRU (github.com/hashicorp/
// golang-lru), mirroring how the teacher keeps a bounded decode/lookup
// cache in front of repeated work rather than re-deriving it on every
// call; zap logs witness loads at debug level the way the teacher's dbft
// logger tags every line with its module.
package simhost

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/ckb-ecofund/open-transaction-lock/pkg/hostvm"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txhash"
	"github.com/ckb-ecofund/open-transaction-lock/pkg/txtypes"
)

// cacheSize bounds the encoded-field LRU; a transaction big enough to
// evict entries simply re-encodes them, it never errors.
const cacheSize = 256

// Host is the in-memory hostvm.Loader. Zero value is not usable; build
// one with New.
type Host struct {
	tx     txtypes.Transaction
	cells  map[[36]byte]txtypes.CellOutput // keyed by encoded OutPoint
	data   map[[36]byte][]byte
	script txtypes.Script // the lock script under test, addressed by GroupInput
	group  []int          // indices into tx.Inputs whose lock equals script

	cache *lru.Cache
	log   *zap.Logger
}

// New builds a Host. cells/data are keyed by the OutPoint each input
// references; script is the lock script whose group this Host resolves
// for SourceGroupInput loads.
func New(tx txtypes.Transaction, cells map[[36]byte]txtypes.CellOutput, data map[[36]byte][]byte, script txtypes.Script, log *zap.Logger) (*Host, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("simhost: building cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{tx: tx, cells: cells, data: data, script: script, cache: cache, log: log.With(zap.String("module", "simhost"))}
	h.group = tx.InputGroup(script, h.resolve)
	return h, nil
}

func outpointKey(op txtypes.OutPoint) [36]byte {
	var k [36]byte
	copy(k[:], op.Encode())
	return k
}

func (h *Host) resolve(op txtypes.OutPoint) (txtypes.CellOutput, bool) {
	c, ok := h.cells[outpointKey(op)]
	return c, ok
}

func (h *Host) cachedEncode(key string, encode func() []byte) []byte {
	if v, ok := h.cache.Get(key); ok {
		return v.([]byte)
	}
	b := encode()
	h.cache.Add(key, b)
	return b
}

// resolveIndex translates a Source-relative index into a global input
// index, or reports it out of range.
func (h *Host) resolveIndex(index int, source hostvm.Source) (int, bool) {
	switch source {
	case hostvm.SourceGroupInput:
		if index < 0 || index >= len(h.group) {
			return 0, false
		}
		return h.group[index], true
	case hostvm.SourceInput:
		if index < 0 || index >= len(h.tx.Inputs) {
			return 0, false
		}
		return index, true
	default:
		return 0, false
	}
}

func chunkOf(buf []byte, offset uint64, full []byte) (hostvm.Chunk, hostvm.Code) {
	total := uint64(len(full))
	if offset > total {
		offset = total
	}
	n := copy(buf, full[offset:])
	return hostvm.Chunk{Data: buf[:n], Total: total}, hostvm.OK
}

// LoadWitness implements hostvm.Loader.
func (h *Host) LoadWitness(buf []byte, offset uint64, index int, source hostvm.Source) (hostvm.Chunk, hostvm.Code) {
	global, ok := h.resolveIndex(index, source)
	if !ok {
		h.log.Debug("witness out of bound", zap.Int("index", index), zap.Stringer("source", source))
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	if global >= len(h.tx.Witnesses) {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	h.log.Debug("load witness", zap.Int("index", global))
	return chunkOf(buf, offset, h.tx.Witnesses[global])
}

// LoadCell implements hostvm.Loader.
func (h *Host) LoadCell(buf []byte, offset uint64, index int, source hostvm.Source) (hostvm.Chunk, hostvm.Code) {
	cell, ok := h.cellAt(index, source)
	if !ok {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	key := fmt.Sprintf("cell:%d:%d", source, index)
	return chunkOf(buf, offset, h.cachedEncode(key, cell.Encode))
}

// LoadCellData implements hostvm.Loader.
func (h *Host) LoadCellData(buf []byte, offset uint64, index int, source hostvm.Source) (hostvm.Chunk, hostvm.Code) {
	if source == hostvm.SourceOutput || source == hostvm.SourceGroupOutput {
		if index < 0 || index >= len(h.tx.Outputs) {
			return hostvm.Chunk{}, hostvm.OutOfBound
		}
		var data []byte
		if index < len(h.tx.OutputsData) {
			data = h.tx.OutputsData[index]
		}
		return chunkOf(buf, offset, data)
	}
	global, ok := h.resolveIndex(index, source)
	if !ok {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	op := h.tx.Inputs[global].PreviousOutput
	data, ok := h.data[outpointKey(op)]
	if !ok {
		data = nil
	}
	return chunkOf(buf, offset, data)
}

// LoadCellField implements hostvm.Loader.
func (h *Host) LoadCellField(buf []byte, offset uint64, index int, source hostvm.Source, field hostvm.CellField) (hostvm.Chunk, hostvm.Code) {
	cell, ok := h.cellAt(index, source)
	if !ok {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	var b []byte
	switch field {
	case hostvm.CellFieldCapacity:
		var c [8]byte
		for i := 0; i < 8; i++ {
			c[i] = byte(cell.Capacity >> (8 * i))
		}
		b = c[:]
	case hostvm.CellFieldLock:
		b = cell.Lock.Encode()
	case hostvm.CellFieldType:
		if cell.Type != nil {
			b = cell.Type.Encode()
		}
	case hostvm.CellFieldDataHash:
		op := h.cellOutpoint(index, source)
		d := h.data[outpointKey(op)]
		sum := txhash.Sum256(d)
		b = sum[:]
	}
	return chunkOf(buf, offset, b)
}

func (h *Host) cellOutpoint(index int, source hostvm.Source) txtypes.OutPoint {
	global, _ := h.resolveIndex(index, source)
	return h.tx.Inputs[global].PreviousOutput
}

func (h *Host) cellAt(index int, source hostvm.Source) (txtypes.CellOutput, bool) {
	if source == hostvm.SourceOutput || source == hostvm.SourceGroupOutput {
		if index < 0 || index >= len(h.tx.Outputs) {
			return txtypes.CellOutput{}, false
		}
		return h.tx.Outputs[index], true
	}
	global, ok := h.resolveIndex(index, source)
	if !ok {
		return txtypes.CellOutput{}, false
	}
	return h.resolve(h.tx.Inputs[global].PreviousOutput)
}

// LoadInput implements hostvm.Loader.
func (h *Host) LoadInput(buf []byte, offset uint64, index int, source hostvm.Source) (hostvm.Chunk, hostvm.Code) {
	global, ok := h.resolveIndex(index, source)
	if !ok {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	key := fmt.Sprintf("input:%d", global)
	in := h.tx.Inputs[global]
	return chunkOf(buf, offset, h.cachedEncode(key, in.Encode))
}

// LoadInputField implements hostvm.Loader.
func (h *Host) LoadInputField(buf []byte, offset uint64, index int, source hostvm.Source, field hostvm.InputField) (hostvm.Chunk, hostvm.Code) {
	global, ok := h.resolveIndex(index, source)
	if !ok {
		return hostvm.Chunk{}, hostvm.OutOfBound
	}
	in := h.tx.Inputs[global]
	var b []byte
	switch field {
	case hostvm.InputFieldSince:
		var s [8]byte
		for i := 0; i < 8; i++ {
			s[i] = byte(in.Since >> (8 * i))
		}
		b = s[:]
	case hostvm.InputFieldOutPoint:
		b = in.PreviousOutput.Encode()
	}
	return chunkOf(buf, offset, b)
}

// LoadTxHash implements hostvm.Loader.
func (h *Host) LoadTxHash(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
	sum := h.cachedEncode("txhash", func() []byte {
		s := txhash.Sum256(h.encodedTransactionSkeleton())
		return s[:]
	})
	return chunkOf(buf, offset, sum)
}

// encodedTransactionSkeleton is a deterministic byte representation of
// the transaction, used only to derive a stable simulated tx hash; the
// reference core never inspects its structure.
func (h *Host) encodedTransactionSkeleton() []byte {
	var out []byte
	for _, in := range h.tx.Inputs {
		out = append(out, in.Encode()...)
	}
	for _, o := range h.tx.Outputs {
		out = append(out, o.Encode()...)
	}
	return out
}

// LoadScript implements hostvm.Loader.
func (h *Host) LoadScript(buf []byte, offset uint64) (hostvm.Chunk, hostvm.Code) {
	return chunkOf(buf, offset, h.cachedEncode("script", h.script.Encode))
}

// CountInputs implements hostvm.Loader.
func (h *Host) CountInputs() uint64 { return uint64(len(h.tx.Inputs)) }
