package sppfcpg

// Property is a borrow-scoped accessor for a single key/value pair (spec
// §3, §4.5). The key is an interned string; the value is a tagged variant
// read on demand.
type Property struct {
	buf         *Buffer
	keyOffset   Offset
	valueOffset Offset
}

// Key returns the property's interned key string.
func (p Property) Key() (string, error) {
	raw, err := p.buf.ReadCString(p.keyOffset)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Value returns the property's tagged variant value.
func (p Property) Value() (Value, error) {
	return readValue(p.buf, p.valueOffset)
}

// PropertyCollection is a borrow-scoped, iterable view over a node's or
// edge's property list (spec §4.5 "collection semantics").
type PropertyCollection struct {
	list propertyList
}

// Count returns the number of properties.
func (c PropertyCollection) Count() uint32 { return c.list.Count() }

// At returns the property at index i in builder-emission order.
func (c PropertyCollection) At(i uint32) (Property, error) { return c.list.At(i) }

// TryProperty performs the linear scan required by spec §4.5 and returns
// the value for the first property whose key equals key, or ok=false if
// none matches. A TypeMismatch from a subsequent typed read is the
// caller's concern, not this method's (see Value's As*/TryAs* split).
func (c PropertyCollection) TryProperty(key string) (Value, bool, error) {
	return c.list.find(key)
}

// All returns every property in the collection, in emission order. This
// allocates (unlike At/TryProperty); it exists for convenience callers that
// want to range over properties without manual index bookkeeping.
func (c PropertyCollection) All() ([]Property, error) {
	out := make([]Property, 0, c.list.Count())
	for i := uint32(0); i < c.list.Count(); i++ {
		p, err := c.list.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
