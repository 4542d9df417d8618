package sppfcpg

import "encoding/binary"

// offsetList is a borrow of a list region whose elements are raw 4-byte
// little-endian Offsets (spec §4.5 "collection semantics"). It backs the
// packed-node list on a SymbolNode, the child list on a PackedNode, and the
// CPG-edge list on a PackedNode: in each case the owning record stores
// *where to find* the referenced records, not the records themselves.
type offsetList struct {
	buf   *Buffer
	span  []byte
	count uint32
}

func readOffsetList(buf *Buffer, listOffset Offset) (offsetList, error) {
	span, count, err := buf.ListSpan(listOffset, 4)
	if err != nil {
		return offsetList{}, err
	}
	return offsetList{buf: buf, span: span, count: count}, nil
}

// Count returns the number of elements in the list (0 for an absent or
// empty list; spec testable property 9 requires these to be
// indistinguishable to readers).
func (l offsetList) Count() uint32 { return l.count }

// At returns the offset stored at index i, bounds-checked.
func (l offsetList) At(i uint32) (Offset, error) {
	if i >= l.count {
		return 0, newErr(OutOfRange, "index %d out of range for list of %d elements", i, l.count)
	}
	return Offset(binary.LittleEndian.Uint32(l.span[i*4:])), nil
}

// propertyList is a borrow of a list region of inline 8-byte Property
// records (key offset + value offset), as opposed to offsetList's indirect
// references.
type propertyList struct {
	buf   *Buffer
	span  []byte
	count uint32
}

func readPropertyList(buf *Buffer, listOffset Offset) (propertyList, error) {
	span, count, err := buf.ListSpan(listOffset, propertySize)
	if err != nil {
		return propertyList{}, err
	}
	return propertyList{buf: buf, span: span, count: count}, nil
}

// Count returns the number of properties in the list.
func (l propertyList) Count() uint32 { return l.count }

// At returns the Property accessor at index i, bounds-checked.
func (l propertyList) At(i uint32) (Property, error) {
	if i >= l.count {
		return Property{}, newErr(OutOfRange, "index %d out of range for %d properties", i, l.count)
	}
	rec := l.span[i*propertySize:]
	return Property{
		buf:         l.buf,
		keyOffset:   Offset(binary.LittleEndian.Uint32(rec[propertyKeyOffset:])),
		valueOffset: Offset(binary.LittleEndian.Uint32(rec[propertyValueOffset:])),
	}, nil
}

// find performs the linear, emission-order scan required by spec §4.5
// ("try_property") and §5 ("Property lookup performs a linear scan in
// emission order and returns the first match").
func (l propertyList) find(key string) (Value, bool, error) {
	for i := uint32(0); i < l.count; i++ {
		p, err := l.At(i)
		if err != nil {
			return Value{}, false, err
		}
		k, err := p.Key()
		if err != nil {
			return Value{}, false, err
		}
		if k == key {
			v, err := p.Value()
			if err != nil {
				return Value{}, false, err
			}
			return v, true, nil
		}
	}
	return Value{}, false, nil
}
