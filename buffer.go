package sppfcpg

import (
	"encoding/binary"
	"sync/atomic"
)

// Buffer is a borrow-only, read-only view over a complete image (spec
// §4.2). It never copies the image and never mutates it; any number of
// goroutines may share one Buffer without synchronization (spec §5).
//
// A Buffer owns its bytes when constructed from a plain []byte (Open), and
// borrows them (non-owning) when constructed over a memory-mapped file
// (OpenFromFile); either way the contract below is identical.
type Buffer struct {
	data     []byte
	disposed atomic.Bool
}

// OpenBuffer validates magic and minimum length and returns a Buffer over
// data. data is retained, not copied: callers must not mutate it
// afterward. Most callers want Graph's Open/OpenFromFile instead; OpenBuffer
// is the lower-level primitive spec'd in §4.2 for callers that want Buffer
// access without a Graph façade around it.
func OpenBuffer(data []byte) (*Buffer, error) {
	if len(data) < headerSize {
		return nil, newErr(Truncated, "image is %d bytes, header requires %d", len(data), headerSize)
	}
	magic := binary.LittleEndian.Uint32(data[headerMagicOffset:])
	if magic != Magic {
		return nil, newErr(BadMagic, "image magic %#08x does not match %#08x", magic, Magic)
	}
	version := binary.LittleEndian.Uint16(data[headerVersionOffset:])
	if version != FormatVersion {
		return nil, newErr(UnsupportedVersion, "image version %d is not supported (want %d)", version, FormatVersion)
	}
	return &Buffer{data: data}, nil
}

// Len returns the total image length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the raw image. The returned slice aliases the Buffer's
// storage; callers must not mutate it or retain it past the Buffer's
// lifetime.
func (b *Buffer) Bytes() []byte { return b.data }

// dispose marks the Buffer as no longer backed by live storage. Called by
// Graph.Close for every Graph's Buffer, before any file mapping is
// unmapped. Subsequent Slice and ReadCString calls (and the accessor reads
// built on them) return UseAfterFree (spec §7).
func (b *Buffer) dispose() { b.disposed.Store(true) }

func (b *Buffer) checkAlive() error {
	if b.disposed.Load() {
		return newErr(UseAfterFree, "buffer was disposed")
	}
	return nil
}

// Header decodes and returns a copy of the 32-byte header.
func (b *Buffer) Header() Header {
	d := b.data
	return Header{
		Magic:               binary.LittleEndian.Uint32(d[headerMagicOffset:]),
		Version:             binary.LittleEndian.Uint16(d[headerVersionOffset:]),
		Flags:               Flags(binary.LittleEndian.Uint16(d[headerFlagsOffset:])),
		Root:                Offset(binary.LittleEndian.Uint32(d[headerRootOffset:])),
		NodeCount:           binary.LittleEndian.Uint32(d[headerNodeCountOffset:]),
		EdgeCount:           binary.LittleEndian.Uint32(d[headerEdgeCountOffset:]),
		SourceLen:           binary.LittleEndian.Uint32(d[headerSourceLenOffset:]),
		SourceOffset:        Offset(binary.LittleEndian.Uint32(d[headerSourceOffOffset:])),
		IntervalIndexOffset: Offset(binary.LittleEndian.Uint32(d[headerIntervalOffOffset:])),
	}
}

// Slice returns a borrow of exactly length bytes starting at offset.
func (b *Buffer) Slice(offset Offset, length uint32) ([]byte, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	start := int(offset)
	end := start + int(length)
	if start < 0 || length > uint32(len(b.data)) || end > len(b.data) || end < start {
		return nil, newErr(OutOfRange, "slice [%d:%d] outside image of length %d", start, end, len(b.data))
	}
	return b.data[start:end], nil
}

// ReadCString borrows the bytes from offset up to (exclusive of) the first
// zero byte found within the image.
func (b *Buffer) ReadCString(offset Offset) ([]byte, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	start := int(offset)
	if start < 0 || start > len(b.data) {
		return nil, newErr(OutOfRange, "cstring offset %d outside image of length %d", start, len(b.data))
	}
	for i := start; i < len(b.data); i++ {
		if b.data[i] == 0 {
			return b.data[start:i], nil
		}
	}
	return nil, newErr(Unterminated, "no terminating zero byte found from offset %d", start)
}

// ListCount reads the leading 32-bit element count of a list region.
func (b *Buffer) ListCount(offset Offset) (uint32, error) {
	if offset.IsAbsent() {
		return 0, nil
	}
	raw, err := b.Slice(offset, listCountSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// ListSpan borrows the count*elementSize bytes immediately following a
// list's leading count field.
func (b *Buffer) ListSpan(offset Offset, elementSize uint32) ([]byte, uint32, error) {
	if offset.IsAbsent() {
		return nil, 0, nil
	}
	count, err := b.ListCount(offset)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}
	span, err := b.Slice(offset+Offset(listCountSize), count*elementSize)
	if err != nil {
		return nil, 0, err
	}
	return span, count, nil
}

// readFixed copies n bytes at offset, failing with OutOfRange if they
// don't fit. Used by the record accessors to obtain a stable small slice
// before decoding individual fields.
func (b *Buffer) readFixed(offset Offset, n uint32) ([]byte, error) {
	return b.Slice(offset, n)
}
