package sppfcpg

import (
	"encoding/binary"
	"sort"
)

// IntervalEntry is one (start, end, node) triple of the interval index
// (spec §3, §4.6). Start and end are inclusive byte offsets into the
// source text; NodeOffset identifies the symbol node that span belongs to.
type IntervalEntry struct {
	Start      uint32
	End        uint32
	NodeOffset Offset
}

// IntervalIndex is a borrow-scoped, sorted-by-Start view over the image's
// optional interval index section (spec §4.6). A Graph with no interval
// index behaves as if IntervalIndex had zero entries.
type IntervalIndex struct {
	buf     *Buffer
	span    []byte
	count   uint32
}

func readIntervalIndex(buf *Buffer, offset Offset) (IntervalIndex, error) {
	if offset.IsAbsent() {
		return IntervalIndex{}, nil
	}
	span, count, err := buf.ListSpan(offset, intervalEntrySize)
	if err != nil {
		return IntervalIndex{}, err
	}
	return IntervalIndex{buf: buf, span: span, count: count}, nil
}

// Count returns the number of entries in the index.
func (idx IntervalIndex) Count() uint32 { return idx.count }

// At returns the entry at index i in sorted (start-ascending,
// insertion-order-tiebroken) order, as written by the builder.
func (idx IntervalIndex) At(i uint32) (IntervalEntry, error) {
	if i >= idx.count {
		return IntervalEntry{}, newErr(OutOfRange, "index %d out of range for %d interval entries", i, idx.count)
	}
	rec := idx.span[i*intervalEntrySize:]
	return IntervalEntry{
		Start:      binary.LittleEndian.Uint32(rec[intervalStartOffset:]),
		End:        binary.LittleEndian.Uint32(rec[intervalEndOffset:]),
		NodeOffset: Offset(binary.LittleEndian.Uint32(rec[intervalTargetOffset:])),
	}, nil
}

// FindAt returns, in ascending-start order, every entry whose closed
// interval [Start, End] contains point (spec §4.6). It is a linear scan
// from the first entry; since the index is sorted by Start, the scan stops
// at the first entry whose Start is past point, which returns the same
// result set as a full linear scan.
func (idx IntervalIndex) FindAt(point uint32) ([]IntervalEntry, error) {
	var out []IntervalEntry
	for i := uint32(0); i < idx.count; i++ {
		e, err := idx.At(i)
		if err != nil {
			return nil, err
		}
		if e.Start > point {
			break
		}
		if point <= e.End {
			out = append(out, e)
		}
	}
	return out, nil
}

// SerializeIntervalIndex encodes entries (which need not be pre-sorted) as
// the leading-count plus fixed-record section the spec describes, sorting
// by Start ascending with ties broken by original slice order (stable
// sort), matching builder emission order.
func SerializeIntervalIndex(entries []IntervalEntry) []byte {
	sorted := make([]IntervalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]byte, listCountSize+len(sorted)*intervalEntrySize)
	binary.LittleEndian.PutUint32(out, uint32(len(sorted)))
	for i, e := range sorted {
		rec := out[listCountSize+i*intervalEntrySize:]
		binary.LittleEndian.PutUint32(rec[intervalStartOffset:], e.Start)
		binary.LittleEndian.PutUint32(rec[intervalEndOffset:], e.End)
		binary.LittleEndian.PutUint32(rec[intervalTargetOffset:], uint32(e.NodeOffset))
	}
	return out
}

// DeserializeIntervalIndex validates and decodes a standalone interval
// index section previously produced by SerializeIntervalIndex, independent
// of any enclosing image. It is used by tests exercising round-trip
// property 7 without needing a full Buffer.
func DeserializeIntervalIndex(data []byte) ([]IntervalEntry, error) {
	if len(data) < listCountSize {
		return nil, newErr(Truncated, "interval index section is %d bytes, need at least %d", len(data), listCountSize)
	}
	count := binary.LittleEndian.Uint32(data)
	want := listCountSize + int(count)*intervalEntrySize
	if len(data) < want {
		return nil, newErr(Truncated, "interval index declares %d entries (%d bytes) but section is %d bytes", count, want, len(data))
	}
	out := make([]IntervalEntry, count)
	for i := uint32(0); i < count; i++ {
		rec := data[listCountSize+int(i)*intervalEntrySize:]
		out[i] = IntervalEntry{
			Start:      binary.LittleEndian.Uint32(rec[intervalStartOffset:]),
			End:        binary.LittleEndian.Uint32(rec[intervalEndOffset:]),
			NodeOffset: Offset(binary.LittleEndian.Uint32(rec[intervalTargetOffset:])),
		}
	}
	return out, nil
}
