package sppfcpg

import "encoding/binary"

// SymbolNode is a borrow-scoped accessor for a symbol node (spec §3, §4.5):
// the SPPF "parent" for a grammar symbol instance, spanning a range of the
// source text and fanning out to zero or more packed nodes (alternative
// derivations).
type SymbolNode struct {
	buf    *Buffer
	offset Offset

	symbolID    uint16
	nodeType    uint16
	sourceStart uint32
	sourceLen   uint32
	packedList  Offset
	propsList   Offset
}

// Root returns the accessor for the symbol node at the image's root offset.
func Root(buf *Buffer) (SymbolNode, error) {
	return readSymbolNode(buf, buf.Header().Root)
}

func readSymbolNode(buf *Buffer, offset Offset) (SymbolNode, error) {
	rec, err := buf.readFixed(offset, symbolNodeSize)
	if err != nil {
		return SymbolNode{}, err
	}
	return SymbolNode{
		buf:         buf,
		offset:      offset,
		symbolID:    binary.LittleEndian.Uint16(rec[symbolSymbolIDOffset:]),
		nodeType:    binary.LittleEndian.Uint16(rec[symbolNodeTypeOffset:]),
		sourceStart: binary.LittleEndian.Uint32(rec[symbolSourceStartOffset:]),
		sourceLen:   binary.LittleEndian.Uint32(rec[symbolSourceLenOffset:]),
		packedList:  Offset(binary.LittleEndian.Uint32(rec[symbolPackedListOffset:])),
		propsList:   Offset(binary.LittleEndian.Uint32(rec[symbolPropsListOffset:])),
	}, nil
}

// Offset returns the byte offset of this symbol node's record.
func (n SymbolNode) Offset() Offset { return n.offset }

// SymbolID returns the opaque grammar symbol id.
func (n SymbolNode) SymbolID() uint16 { return n.symbolID }

// NodeType returns the semantic node-type tag.
func (n SymbolNode) NodeType() uint16 { return n.nodeType }

// SourceStart returns the first byte offset of this node's source span.
func (n SymbolNode) SourceStart() uint32 { return n.sourceStart }

// SourceLength returns the length in bytes of this node's source span.
func (n SymbolNode) SourceLength() uint32 { return n.sourceLen }

// SourceEnd returns SourceStart()+SourceLength().
func (n SymbolNode) SourceEnd() uint32 { return n.sourceStart + n.sourceLen }

// IsAmbiguous reports whether this symbol has two or more packed-node
// derivations (spec testable property 10).
func (n SymbolNode) IsAmbiguous() (bool, error) {
	count, err := n.buf.ListCount(n.packedList)
	if err != nil {
		return false, err
	}
	return count > 1, nil
}

// PackedNodes returns the collection of derivations of this symbol. An
// absent list and a present-but-empty list are indistinguishable: both
// yield a zero-count collection (spec testable property 9).
func (n SymbolNode) PackedNodes() (PackedNodeCollection, error) {
	list, err := readOffsetList(n.buf, n.packedList)
	if err != nil {
		return PackedNodeCollection{}, err
	}
	return PackedNodeCollection{buf: n.buf, list: list}, nil
}

// Properties returns this node's property collection.
func (n SymbolNode) Properties() (PropertyCollection, error) {
	list, err := readPropertyList(n.buf, n.propsList)
	if err != nil {
		return PropertyCollection{}, err
	}
	return PropertyCollection{list: list}, nil
}

// TryProperty is a convenience that reads Properties() and performs the
// linear-scan lookup in one call.
func (n SymbolNode) TryProperty(key string) (Value, bool, error) {
	props, err := n.Properties()
	if err != nil {
		return Value{}, false, err
	}
	return props.TryProperty(key)
}

// SourceText borrows the span of the original source text covered by this
// node, from the image's source-text section.
func (n SymbolNode) SourceText() (string, error) {
	hdr := n.buf.Header()
	if uint64(n.sourceStart)+uint64(n.sourceLen) > uint64(hdr.SourceLen) {
		return "", newErr(OutOfRange, "node span [%d,%d) exceeds source length %d", n.sourceStart, n.sourceStart+n.sourceLen, hdr.SourceLen)
	}
	raw, err := n.buf.Slice(hdr.SourceOffset+Offset(n.sourceStart), n.sourceLen)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// PackedNodeCollection is a borrow-scoped, iterable view over a symbol
// node's packed-node (derivation) list.
type PackedNodeCollection struct {
	buf  *Buffer
	list offsetList
}

// Count returns the number of derivations.
func (c PackedNodeCollection) Count() uint32 { return c.list.Count() }

// At returns the derivation at index i, dereferencing its stored offset and
// decoding the PackedNode record there.
func (c PackedNodeCollection) At(i uint32) (PackedNode, error) {
	off, err := c.list.At(i)
	if err != nil {
		return PackedNode{}, err
	}
	return readPackedNode(c.buf, off)
}
