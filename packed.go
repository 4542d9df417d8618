package sppfcpg

import "encoding/binary"

// PackedNode is a borrow-scoped accessor for a packed node (spec §3, §4.5):
// one concrete derivation (grammar rule application) of its owning symbol
// node, fanning out to child symbol nodes and to CPG edges anchored on this
// derivation.
type PackedNode struct {
	buf    *Buffer
	offset Offset

	ruleID    uint16
	childList Offset
	edgeList  Offset
}

func readPackedNode(buf *Buffer, offset Offset) (PackedNode, error) {
	rec, err := buf.readFixed(offset, packedNodeSize)
	if err != nil {
		return PackedNode{}, err
	}
	return PackedNode{
		buf:       buf,
		offset:    offset,
		ruleID:    binary.LittleEndian.Uint16(rec[packedRuleIDOffset:]),
		childList: Offset(binary.LittleEndian.Uint32(rec[packedChildListOffset:])),
		edgeList:  Offset(binary.LittleEndian.Uint32(rec[packedEdgesListOffset:])),
	}, nil
}

// Offset returns the byte offset of this packed node's record.
func (p PackedNode) Offset() Offset { return p.offset }

// RuleID returns the opaque grammar rule id this derivation applied.
func (p PackedNode) RuleID() uint16 { return p.ruleID }

// Children returns the ordered collection of child symbol nodes produced by
// this derivation.
func (p PackedNode) Children() (SymbolNodeCollection, error) {
	list, err := readOffsetList(p.buf, p.childList)
	if err != nil {
		return SymbolNodeCollection{}, err
	}
	return SymbolNodeCollection{buf: p.buf, list: list}, nil
}

// Edges returns the collection of CPG edges anchored on this derivation.
func (p PackedNode) Edges() (CpgEdgeCollection, error) {
	list, err := readOffsetList(p.buf, p.edgeList)
	if err != nil {
		return CpgEdgeCollection{}, err
	}
	return CpgEdgeCollection{buf: p.buf, list: list}, nil
}

// SymbolNodeCollection is a borrow-scoped, iterable view over a packed
// node's ordered child list.
type SymbolNodeCollection struct {
	buf  *Buffer
	list offsetList
}

// Count returns the number of children.
func (c SymbolNodeCollection) Count() uint32 { return c.list.Count() }

// At returns the child symbol node at index i, in derivation order.
func (c SymbolNodeCollection) At(i uint32) (SymbolNode, error) {
	off, err := c.list.At(i)
	if err != nil {
		return SymbolNode{}, err
	}
	return readSymbolNode(c.buf, off)
}

// TryAt returns the child symbol node at index i and true, or ok=false
// without error if that slot holds the sentinel offset 0. A rebuilt image
// produced by Editor can contain such tombstoned slots where a child was
// deleted (spec §4.9, "deleted nodes are replaced by sentinel offset 0 in
// their parents' child lists"); ordinary builder output never does.
func (c SymbolNodeCollection) TryAt(i uint32) (SymbolNode, bool, error) {
	off, err := c.list.At(i)
	if err != nil {
		return SymbolNode{}, false, err
	}
	if off.IsAbsent() {
		return SymbolNode{}, false, nil
	}
	n, err := readSymbolNode(c.buf, off)
	return n, err == nil, err
}
