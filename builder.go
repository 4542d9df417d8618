package sppfcpg

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/unicode/norm"
)

// BuilderOption tunes a Builder at construction time, the idiomatic Go
// substitute for a configuration layer this module otherwise has no need
// of (no CLI, no config file; see DESIGN.md).
type BuilderOption func(*Builder)

// WithCapacityHint preallocates the Builder's backing buffer, avoiding
// reallocation churn for callers who know roughly how large the finished
// image will be.
func WithCapacityHint(bytes int) BuilderOption {
	return func(b *Builder) {
		if bytes > len(b.buf) {
			grown := make([]byte, len(b.buf), bytes)
			copy(grown, b.buf)
			b.buf = grown
		}
	}
}

// WithFlags sets the header flags to write at Build, overriding the
// default of FlagFullyParsed alone.
func WithFlags(flags Flags) BuilderOption {
	return func(b *Builder) { b.flags = flags; b.flagsSet = true }
}

// Builder incrementally assembles an image (spec §4.7): a growable byte
// vector, a running write offset, and a string intern map. It is not safe
// for concurrent use by multiple goroutines; each instance belongs to one
// logical writer until Build returns (spec §5 "single-writer building").
type Builder struct {
	buf       []byte
	interned  map[string]Offset
	built     bool
	flags     Flags
	flagsSet  bool
	nodeCount uint32
	edgeCount uint32
}

// NewBuilder constructs a Builder with header-size bytes of zeros reserved
// at the front (back-patched at Build).
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		buf:      make([]byte, headerSize),
		interned: make(map[string]Offset),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) checkWritable() error {
	if b.built {
		return newErr(BuilderStateError, "builder was already finalized by Build")
	}
	return nil
}

func (b *Builder) offset() Offset { return Offset(len(b.buf)) }

func (b *Builder) appendUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) appendUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) appendOffset(o Offset) { b.appendUint32(uint32(o)) }

// WriteValue appends a ValueHeader plus payload for v encoded per kind and
// returns the value's offset. Unknown kinds, and values whose Go type does
// not match kind, fail with InvalidArgument. A KindBytes payload is written
// as-is.
func (b *Builder) WriteValue(kind ValueKind, v any) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	if !kind.valid() {
		return 0, newErr(InvalidArgument, "unknown value kind %d", kind)
	}
	var payload []byte
	switch kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return 0, newErr(InvalidArgument, "KindString requires a string, got %T", v)
		}
		payload = []byte(s)
	case KindI32:
		n, ok := v.(int32)
		if !ok {
			return 0, newErr(InvalidArgument, "KindI32 requires an int32, got %T", v)
		}
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, uint32(n))
	case KindU32:
		n, ok := v.(uint32)
		if !ok {
			return 0, newErr(InvalidArgument, "KindU32 requires a uint32, got %T", v)
		}
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, n)
	case KindI64:
		n, ok := v.(int64)
		if !ok {
			return 0, newErr(InvalidArgument, "KindI64 requires an int64, got %T", v)
		}
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, uint64(n))
	case KindU64:
		n, ok := v.(uint64)
		if !ok {
			return 0, newErr(InvalidArgument, "KindU64 requires a uint64, got %T", v)
		}
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, n)
	case KindF32:
		f, ok := v.(float32)
		if !ok {
			return 0, newErr(InvalidArgument, "KindF32 requires a float32, got %T", v)
		}
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, math.Float32bits(f))
	case KindF64:
		f, ok := v.(float64)
		if !ok {
			return 0, newErr(InvalidArgument, "KindF64 requires a float64, got %T", v)
		}
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, math.Float64bits(f))
	case KindBool:
		bv, ok := v.(bool)
		if !ok {
			return 0, newErr(InvalidArgument, "KindBool requires a bool, got %T", v)
		}
		payload = []byte{0}
		if bv {
			payload[0] = 1
		}
	case KindBytes:
		raw, ok := v.([]byte)
		if !ok {
			return 0, newErr(InvalidArgument, "KindBytes requires a []byte, got %T", v)
		}
		payload = raw
	}
	off := b.offset()
	b.appendUint16(uint16(kind))
	b.appendUint16(0)
	b.appendUint32(uint32(len(payload)))
	b.buf = append(b.buf, payload...)
	return off, nil
}

// InternString returns the offset of s's null-terminated UTF-8 encoding,
// appending it once; subsequent calls with an equivalent string (after NFC
// normalization) return the previously recorded offset. Normalizing before
// the dedup lookup means two Unicode spellings of the same text (e.g. a
// precomposed vs. combining-accent form) intern to a single pool entry.
func (b *Builder) InternString(s string) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	normalized := norm.NFC.String(s)
	if off, ok := b.interned[normalized]; ok {
		return off, nil
	}
	off := b.offset()
	b.buf = append(b.buf, normalized...)
	b.buf = append(b.buf, 0)
	b.interned[normalized] = off
	return off, nil
}

// WriteList appends a 32-bit count followed by the concatenated offsets
// and returns the list's offset. An empty or nil elems yields the sentinel
// absent offset 0 rather than an empty-but-present list, matching the
// builder-side half of testable property 9.
func (b *Builder) WriteList(elems []Offset) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	if len(elems) == 0 {
		return noOffset, nil
	}
	off := b.offset()
	b.appendUint32(uint32(len(elems)))
	for _, e := range elems {
		b.appendOffset(e)
	}
	return off, nil
}

// PropertyDescriptor is one key/value pair supplied to WritePropertyList,
// WriteSymbolNode, or WriteCpgEdge.
type PropertyDescriptor struct {
	Key   string
	Kind  ValueKind
	Value any
}

// WritePropertyList interns each key, writes each value, and appends the
// resulting 8-byte Property records as a list; returns the list's offset
// (absent if props is empty).
func (b *Builder) WritePropertyList(props []PropertyDescriptor) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	if len(props) == 0 {
		return noOffset, nil
	}
	keyOffs := make([]Offset, len(props))
	valOffs := make([]Offset, len(props))
	for i, p := range props {
		ko, err := b.InternString(p.Key)
		if err != nil {
			return 0, err
		}
		vo, err := b.WriteValue(p.Kind, p.Value)
		if err != nil {
			return 0, err
		}
		keyOffs[i] = ko
		valOffs[i] = vo
	}
	off := b.offset()
	b.appendUint32(uint32(len(props)))
	for i := range props {
		b.appendOffset(keyOffs[i])
		b.appendOffset(valOffs[i])
	}
	return off, nil
}

// WriteCpgEdge writes properties then a CpgEdge record (spec §4.7 step 6)
// and returns its offset.
func (b *Builder) WriteCpgEdge(kind EdgeKind, target Offset, props []PropertyDescriptor) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	if !kind.valid() {
		return 0, newErr(InvalidArgument, "unknown edge kind %d", kind)
	}
	propsOff, err := b.WritePropertyList(props)
	if err != nil {
		return 0, err
	}
	off := b.offset()
	b.appendUint16(uint16(kind))
	b.appendUint16(0)
	b.appendOffset(target)
	b.appendOffset(propsOff)
	b.edgeCount++
	return off, nil
}

// WritePackedNode first writes the child-offset list and the edge list at
// their current positions, then appends a PackedNode record at the
// resulting (post-list) offset, which is what this method returns (spec
// §4.7 step 4, "parent offset is the post-list position").
func (b *Builder) WritePackedNode(ruleID uint16, children []Offset, edges []Offset) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	childOff, err := b.WriteList(children)
	if err != nil {
		return 0, err
	}
	edgeOff, err := b.WriteList(edges)
	if err != nil {
		return 0, err
	}
	off := b.offset()
	b.appendUint16(ruleID)
	b.appendUint16(0)
	b.appendOffset(childOff)
	b.appendOffset(edgeOff)
	return off, nil
}

// WriteSymbolNode writes the packed-offsets list and the properties list
// first, then appends a SymbolNode record (spec §4.7 step 5), returning
// its offset.
func (b *Builder) WriteSymbolNode(symbolID, nodeType uint16, start, length uint32, packedOffsets []Offset, props []PropertyDescriptor) (Offset, error) {
	if err := b.checkWritable(); err != nil {
		return 0, err
	}
	packedOff, err := b.WriteList(packedOffsets)
	if err != nil {
		return 0, err
	}
	propsOff, err := b.WritePropertyList(props)
	if err != nil {
		return 0, err
	}
	off := b.offset()
	b.appendUint16(symbolID)
	b.appendUint16(nodeType)
	b.appendUint32(start)
	b.appendUint32(length)
	b.appendOffset(packedOff)
	b.appendOffset(propsOff)
	b.nodeCount++
	return off, nil
}

// Build appends source text, optionally a serialized interval index,
// constructs the 32-byte header, back-patches bytes [0,32), and returns
// the finished image (spec §4.7 step 7). It may be called at most once.
func (b *Builder) Build(rootOffset Offset, sourceText string, intervalIndex []IntervalEntry) ([]byte, error) {
	if err := b.checkWritable(); err != nil {
		return nil, err
	}
	sourceOff := b.offset()
	b.buf = append(b.buf, sourceText...)

	var intervalOff Offset
	if len(intervalIndex) > 0 {
		intervalOff = b.offset()
		b.buf = append(b.buf, SerializeIntervalIndex(intervalIndex)...)
	}

	flags := b.flags
	if !b.flagsSet {
		flags = FlagFullyParsed
	}

	binary.LittleEndian.PutUint32(b.buf[headerMagicOffset:], Magic)
	binary.LittleEndian.PutUint16(b.buf[headerVersionOffset:], FormatVersion)
	binary.LittleEndian.PutUint16(b.buf[headerFlagsOffset:], uint16(flags))
	binary.LittleEndian.PutUint32(b.buf[headerRootOffset:], uint32(rootOffset))
	binary.LittleEndian.PutUint32(b.buf[headerNodeCountOffset:], b.nodeCount)
	binary.LittleEndian.PutUint32(b.buf[headerEdgeCountOffset:], b.edgeCount)
	binary.LittleEndian.PutUint32(b.buf[headerSourceLenOffset:], uint32(len(sourceText)))
	binary.LittleEndian.PutUint32(b.buf[headerSourceOffOffset:], uint32(sourceOff))
	binary.LittleEndian.PutUint32(b.buf[headerIntervalOffOffset:], uint32(intervalOff))

	b.built = true
	return b.buf, nil
}
