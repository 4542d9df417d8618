package sppfcpg

import (
	set3 "github.com/TomTonic/Set3"
)

// NodeDescriptor carries the wholesale field set for a newly inserted or
// replaced symbol node (spec §4.9 "Insert node", "Replace node").
type NodeDescriptor struct {
	SymbolID   uint16
	NodeType   uint16
	Start      uint32
	Length     uint32
	Properties []PropertyDescriptor
}

// clone returns a deep copy so callers cannot mutate an Editor's queued
// state by mutating a descriptor after scheduling it — the same
// clone-on-the-way-in discipline the teacher applies to Key values.
func (d NodeDescriptor) clone() NodeDescriptor {
	out := d
	if d.Properties != nil {
		out.Properties = append([]PropertyDescriptor(nil), d.Properties...)
		for i, p := range out.Properties {
			if raw, ok := p.Value.([]byte); ok {
				out.Properties[i].Value = append([]byte(nil), raw...)
			}
		}
	}
	return out
}

type symbolNodeEdit struct {
	replaced     bool
	replacement  NodeDescriptor
	moved        bool
	moveStart    uint32
	moveLength   uint32
	propUpdates  []PropertyDescriptor
	propRemovals []string
}

// Editor builds a new image from a source Graph plus a queue of operations
// keyed by offsets in the source image (spec §4.9). It is not safe for
// concurrent use (spec §5 "single-writer building"), mirroring Builder.
type Editor struct {
	source *Graph

	deleted *set3.Set3[Offset]
	edits   map[Offset]*symbolNodeEdit
	inserts map[Offset][]NodeDescriptor // keyed by parent symbol-node offset; noOffset means top-level
}

// NewEditor constructs an Editor over source. source must remain open
// (not Closed) until Build returns.
func NewEditor(source *Graph) *Editor {
	return &Editor{
		source:  source,
		deleted: set3.Empty[Offset](),
		edits:   make(map[Offset]*symbolNodeEdit),
		inserts: make(map[Offset][]NodeDescriptor),
	}
}

func (e *Editor) editFor(target Offset) *symbolNodeEdit {
	edit, ok := e.edits[target]
	if !ok {
		edit = &symbolNodeEdit{}
		e.edits[target] = edit
	}
	return edit
}

// ReplaceNode schedules target's scalar fields and properties to be
// overwritten wholesale with desc when the rebuild reaches it (spec §4.9
// "Replace node").
func (e *Editor) ReplaceNode(target Offset, desc NodeDescriptor) {
	edit := e.editFor(target)
	edit.replaced = true
	edit.replacement = desc.clone()
}

// MoveNode schedules target's source_start/source_length to be overwritten,
// leaving every other field untouched (spec §4.9 "Move node").
func (e *Editor) MoveNode(target Offset, start, length uint32) {
	edit := e.editFor(target)
	edit.moved = true
	edit.moveStart = start
	edit.moveLength = length
}

// UpdateProperty schedules a single property on target to be overwritten
// (or added, if absent) with prop's value (spec §4.9 "Update property").
func (e *Editor) UpdateProperty(target Offset, prop PropertyDescriptor) {
	edit := e.editFor(target)
	edit.propUpdates = append(edit.propUpdates, prop)
}

// RemoveProperty schedules the property named key on target to be dropped
// (spec §4.9 "Remove property").
func (e *Editor) RemoveProperty(target Offset, key string) {
	edit := e.editFor(target)
	edit.propRemovals = append(edit.propRemovals, key)
}

// DeleteNode schedules the node at target (a symbol node, packed node, or
// CPG edge offset in the source image) to be omitted from the rebuilt
// image. Symbol nodes omitted from a child list leave the sentinel offset
// 0 in their place (spec §4.9 "Delete node"); packed nodes and edges
// omitted from their enclosing list are simply dropped, shrinking it.
func (e *Editor) DeleteNode(target Offset) {
	e.deleted.Add(target)
}

// InsertNode schedules desc to be appended as a new child of parent once
// the rebuild reaches it. parent may be the sentinel offset 0, meaning a
// top-level addition not attached under any existing node; Build reports
// the new offsets of such top-level inserts separately so the caller can
// wire them in as needed (spec §4.9 leaves top-level attachment
// unspecified beyond "scheduled to be appended").
func (e *Editor) InsertNode(parent Offset, desc NodeDescriptor) {
	e.inserts[parent] = append(e.inserts[parent], desc.clone())
}

func valueToDescriptor(v Value) (ValueKind, any, error) {
	switch v.Kind() {
	case KindString:
		s, err := v.AsString()
		return KindString, s, err
	case KindI32:
		n, err := v.AsI32()
		return KindI32, n, err
	case KindU32:
		n, err := v.AsU32()
		return KindU32, n, err
	case KindI64:
		n, err := v.AsI64()
		return KindI64, n, err
	case KindU64:
		n, err := v.AsU64()
		return KindU64, n, err
	case KindF32:
		n, err := v.AsF32()
		return KindF32, n, err
	case KindF64:
		n, err := v.AsF64()
		return KindF64, n, err
	case KindBool:
		n, err := v.AsBool()
		return KindBool, n, err
	case KindBytes:
		n, err := v.AsBytes()
		return KindBytes, n, err
	default:
		return 0, nil, newErr(InvalidArgument, "unknown value kind %d", v.Kind())
	}
}

func propertiesOf(props PropertyCollection) ([]PropertyDescriptor, error) {
	all, err := props.All()
	if err != nil {
		return nil, err
	}
	out := make([]PropertyDescriptor, 0, len(all))
	for _, p := range all {
		key, err := p.Key()
		if err != nil {
			return nil, err
		}
		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		kind, val, err := valueToDescriptor(v)
		if err != nil {
			return nil, err
		}
		out = append(out, PropertyDescriptor{Key: key, Kind: kind, Value: val})
	}
	return out, nil
}

func applyPropertyEdit(base []PropertyDescriptor, updates []PropertyDescriptor, removals []string) []PropertyDescriptor {
	if len(updates) == 0 && len(removals) == 0 {
		return base
	}
	out := append([]PropertyDescriptor(nil), base...)
	for _, rm := range removals {
		filtered := out[:0]
		for _, p := range out {
			if p.Key != rm {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	for _, upd := range updates {
		replacedExisting := false
		for i, p := range out {
			if p.Key == upd.Key {
				out[i] = upd
				replacedExisting = true
				break
			}
		}
		if !replacedExisting {
			out = append(out, upd)
		}
	}
	return out
}

// rebuilder carries the per-Build working state: the destination Builder
// and the old-offset-to-new-offset remap. The remap is internal (spec
// §4.9 "that mapping is internal") and also serves as the visited set for
// the depth-first walk, so a symbol node reachable from two parents (a
// shared sub-derivation) is emitted once and referenced twice.
type rebuilder struct {
	e       *Editor
	dst     *Builder
	remap   map[Offset]Offset
	inserted map[Offset][]Offset // new offsets of inserts queued against each old parent offset
}

// Build performs the deep depth-first rebuild described in spec §4.9 and
// returns the new image together with the new offsets of any
// top-level inserts (those queued with parent offset 0).
func (e *Editor) Build() ([]byte, []Offset, error) {
	srcBuf := e.source.Buffer()
	hdr := srcBuf.Header()

	rb := &rebuilder{
		e:        e,
		dst:      NewBuilder(),
		remap:    make(map[Offset]Offset),
		inserted: make(map[Offset][]Offset),
	}

	newRoot, err := rb.rebuildSymbolNode(srcBuf, hdr.Root)
	if err != nil {
		return nil, nil, err
	}

	// Top-level inserts (spec §4.9: parent = the sentinel meaning "top-level
	// addition") are queued under noOffset, which rebuildSymbolNode treats as
	// "absent" and returns from immediately — so they are never reached by
	// walking the source graph from its root. Write them directly here
	// instead of relying on the per-parent insert loop inside
	// rebuildSymbolNode/rebuildPackedNode.
	for _, ins := range rb.e.inserts[noOffset] {
		childOff, err := rb.dst.WriteSymbolNode(ins.SymbolID, ins.NodeType, ins.Start, ins.Length, nil, ins.Properties)
		if err != nil {
			return nil, nil, err
		}
		rb.inserted[noOffset] = append(rb.inserted[noOffset], childOff)
	}

	raw, err := srcBuf.Slice(hdr.SourceOffset, hdr.SourceLen)
	if err != nil {
		return nil, nil, err
	}

	var intervalEntries []IntervalEntry
	if !hdr.IntervalIndexOffset.IsAbsent() {
		idx, err := readIntervalIndex(srcBuf, hdr.IntervalIndexOffset)
		if err != nil {
			return nil, nil, err
		}
		for i := uint32(0); i < idx.Count(); i++ {
			entry, err := idx.At(i)
			if err != nil {
				return nil, nil, err
			}
			if remapped, ok := rb.remap[entry.NodeOffset]; ok && !remapped.IsAbsent() {
				entry.NodeOffset = remapped
				intervalEntries = append(intervalEntries, entry)
			}
		}
	}

	image, err := rb.dst.Build(newRoot, string(raw), intervalEntries)
	if err != nil {
		return nil, nil, err
	}
	return image, rb.inserted[noOffset], nil
}

func (rb *rebuilder) rebuildSymbolNode(srcBuf *Buffer, oldOff Offset) (Offset, error) {
	if oldOff.IsAbsent() {
		return noOffset, nil
	}
	if newOff, ok := rb.remap[oldOff]; ok {
		return newOff, nil
	}
	if rb.e.deleted.Contains(oldOff) {
		rb.remap[oldOff] = noOffset
		return noOffset, nil
	}

	node, err := readSymbolNode(srcBuf, oldOff)
	if err != nil {
		return 0, err
	}
	props, err := node.Properties()
	if err != nil {
		return 0, err
	}
	descriptors, err := propertiesOf(props)
	if err != nil {
		return 0, err
	}

	symbolID, nodeType, start, length := node.SymbolID(), node.NodeType(), node.SourceStart(), node.SourceLength()

	if edit, ok := rb.e.edits[oldOff]; ok {
		if edit.replaced {
			symbolID = edit.replacement.SymbolID
			nodeType = edit.replacement.NodeType
			start = edit.replacement.Start
			length = edit.replacement.Length
			descriptors = append([]PropertyDescriptor(nil), edit.replacement.Properties...)
		}
		if edit.moved {
			start = edit.moveStart
			length = edit.moveLength
		}
		descriptors = applyPropertyEdit(descriptors, edit.propUpdates, edit.propRemovals)
	}

	packedColl, err := node.PackedNodes()
	if err != nil {
		return 0, err
	}
	var newPacked []Offset
	for i := uint32(0); i < packedColl.Count(); i++ {
		pn, err := packedColl.At(i)
		if err != nil {
			return 0, err
		}
		newOff, err := rb.rebuildPackedNode(srcBuf, pn.Offset())
		if err != nil {
			return 0, err
		}
		if !newOff.IsAbsent() {
			newPacked = append(newPacked, newOff)
		}
	}

	for _, ins := range rb.e.inserts[oldOff] {
		childOff, err := rb.dst.WriteSymbolNode(ins.SymbolID, ins.NodeType, ins.Start, ins.Length, nil, ins.Properties)
		if err != nil {
			return 0, err
		}
		ruleID := uint16(0)
		packedOff, err := rb.dst.WritePackedNode(ruleID, []Offset{childOff}, nil)
		if err != nil {
			return 0, err
		}
		newPacked = append(newPacked, packedOff)
		rb.inserted[oldOff] = append(rb.inserted[oldOff], childOff)
	}

	newOff, err := rb.dst.WriteSymbolNode(symbolID, nodeType, start, length, newPacked, descriptors)
	if err != nil {
		return 0, err
	}
	rb.remap[oldOff] = newOff
	return newOff, nil
}

func (rb *rebuilder) rebuildPackedNode(srcBuf *Buffer, oldOff Offset) (Offset, error) {
	if oldOff.IsAbsent() {
		return noOffset, nil
	}
	if newOff, ok := rb.remap[oldOff]; ok {
		return newOff, nil
	}
	if rb.e.deleted.Contains(oldOff) {
		rb.remap[oldOff] = noOffset
		return noOffset, nil
	}

	pn, err := readPackedNode(srcBuf, oldOff)
	if err != nil {
		return 0, err
	}

	children, err := pn.Children()
	if err != nil {
		return 0, err
	}
	newChildren := make([]Offset, 0, children.Count())
	for i := uint32(0); i < children.Count(); i++ {
		child, ok, err := children.TryAt(i)
		if err != nil {
			return 0, err
		}
		if !ok {
			newChildren = append(newChildren, noOffset)
			continue
		}
		newChildOff, err := rb.rebuildSymbolNode(srcBuf, child.Offset())
		if err != nil {
			return 0, err
		}
		newChildren = append(newChildren, newChildOff)
	}

	edges, err := pn.Edges()
	if err != nil {
		return 0, err
	}
	var newEdges []Offset
	for i := uint32(0); i < edges.Count(); i++ {
		edge, err := edges.At(i)
		if err != nil {
			return 0, err
		}
		newEdgeOff, err := rb.rebuildEdge(srcBuf, edge.Offset())
		if err != nil {
			return 0, err
		}
		if !newEdgeOff.IsAbsent() {
			newEdges = append(newEdges, newEdgeOff)
		}
	}

	newOff, err := rb.dst.WritePackedNode(pn.RuleID(), newChildren, newEdges)
	if err != nil {
		return 0, err
	}
	rb.remap[oldOff] = newOff
	return newOff, nil
}

func (rb *rebuilder) rebuildEdge(srcBuf *Buffer, oldOff Offset) (Offset, error) {
	if oldOff.IsAbsent() {
		return noOffset, nil
	}
	if newOff, ok := rb.remap[oldOff]; ok {
		return newOff, nil
	}
	if rb.e.deleted.Contains(oldOff) {
		rb.remap[oldOff] = noOffset
		return noOffset, nil
	}

	edge, err := readCpgEdge(srcBuf, oldOff)
	if err != nil {
		return 0, err
	}
	target, err := edge.Target()
	if err != nil {
		return 0, err
	}
	newTarget, err := rb.rebuildSymbolNode(srcBuf, target.Offset())
	if err != nil {
		return 0, err
	}
	props, err := edge.Properties()
	if err != nil {
		return 0, err
	}
	descriptors, err := propertiesOf(props)
	if err != nil {
		return 0, err
	}

	newOff, err := rb.dst.WriteCpgEdge(edge.Kind(), newTarget, descriptors)
	if err != nil {
		return 0, err
	}
	rb.remap[oldOff] = newOff
	return newOff, nil
}
