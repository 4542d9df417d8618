package sppfcpg

import "encoding/binary"

// CpgEdge is a borrow-scoped accessor for a single code-property-graph edge
// (spec §3, §4.5): a typed, directed relation from the packed node it is
// stored under to a target symbol node, carrying its own property list.
type CpgEdge struct {
	buf    *Buffer
	offset Offset

	kind      EdgeKind
	target    Offset
	propsList Offset
}

func readCpgEdge(buf *Buffer, offset Offset) (CpgEdge, error) {
	rec, err := buf.readFixed(offset, cpgEdgeSize)
	if err != nil {
		return CpgEdge{}, err
	}
	kind := EdgeKind(binary.LittleEndian.Uint16(rec[edgeKindOffset:]))
	if !kind.valid() {
		return CpgEdge{}, newErr(InvalidArgument, "edge at %s has unknown kind %d", offset, kind)
	}
	return CpgEdge{
		buf:       buf,
		offset:    offset,
		kind:      kind,
		target:    Offset(binary.LittleEndian.Uint32(rec[edgeTargetOffset:])),
		propsList: Offset(binary.LittleEndian.Uint32(rec[edgePropsListOffset:])),
	}, nil
}

// Offset returns the byte offset of this edge's record.
func (e CpgEdge) Offset() Offset { return e.offset }

// Kind returns the edge's relation type.
func (e CpgEdge) Kind() EdgeKind { return e.kind }

// Target dereferences and decodes the symbol node this edge points to.
func (e CpgEdge) Target() (SymbolNode, error) {
	return readSymbolNode(e.buf, e.target)
}

// Properties returns this edge's property collection.
func (e CpgEdge) Properties() (PropertyCollection, error) {
	list, err := readPropertyList(e.buf, e.propsList)
	if err != nil {
		return PropertyCollection{}, err
	}
	return PropertyCollection{list: list}, nil
}

// CpgEdgeCollection is a borrow-scoped, iterable view over a packed node's
// CPG-edge list.
type CpgEdgeCollection struct {
	buf  *Buffer
	list offsetList
}

// Count returns the number of edges.
func (c CpgEdgeCollection) Count() uint32 { return c.list.Count() }

// At returns the edge at index i, in emission order.
func (c CpgEdgeCollection) At(i uint32) (CpgEdge, error) {
	off, err := c.list.At(i)
	if err != nil {
		return CpgEdge{}, err
	}
	return readCpgEdge(c.buf, off)
}

// KindsPresent scans the collection once and returns a presence bitmap of
// the distinct EdgeKind values it contains, so callers can test membership
// with a single bit test instead of a full linear scan.
func (c CpgEdgeCollection) KindsPresent() (kindPresence, error) {
	var p kindPresence
	for i := uint32(0); i < c.list.Count(); i++ {
		e, err := c.At(i)
		if err != nil {
			return p, err
		}
		p.set(byte(e.kind))
	}
	return p, nil
}

// DistinctKindCount reports how many distinct EdgeKind values occur in the
// collection (0 to 5), a cheap diagnostic derived from the same presence
// bitmap KindsPresent builds rather than a second scan.
func (c CpgEdgeCollection) DistinctKindCount() (byte, error) {
	present, err := c.KindsPresent()
	if err != nil {
		return 0, err
	}
	return present.totalBitCount(), nil
}

// OfKind returns the subsequence of edges whose Kind() equals kind,
// preserving their relative emission order. This allocates; callers on a
// hot path should iterate At() directly and filter themselves.
func (c CpgEdgeCollection) OfKind(kind EdgeKind) ([]CpgEdge, error) {
	present, err := c.KindsPresent()
	if err != nil {
		return nil, err
	}
	if !present.get(byte(kind)) {
		return nil, nil
	}
	out := make([]CpgEdge, 0, c.list.Count())
	for i := uint32(0); i < c.list.Count(); i++ {
		e, err := c.At(i)
		if err != nil {
			return nil, err
		}
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}
