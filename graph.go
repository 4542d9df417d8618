package sppfcpg

// Stats summarizes image-level facts exposed by a Graph (spec §4.8).
type Stats struct {
	NodeCount  uint32
	EdgeCount  uint32
	SourceLen  uint32
	ImageBytes int
}

// Graph is the façade over an opened image (spec §4.8): it owns a Buffer,
// optionally a file mapping backing it, and a bounded lookup cache for
// find_nodes_at. A Graph must be Closed exactly once when no longer
// needed; Close releases the mapping (if any) and disposes the Buffer so
// later accessor use yields UseAfterFree rather than reading a dangling
// mapping.
type Graph struct {
	buf     *Buffer
	mapping *mapping
	cache   *nodeAtCache
	index   IntervalIndex
}

// Open constructs a Graph over data without copying it (spec §4.8 "From
// owned bytes"). Callers must not mutate data afterward.
func Open(data []byte) (*Graph, error) {
	buf, err := OpenBuffer(data)
	if err != nil {
		return nil, err
	}
	return newGraph(buf, nil)
}

// OpenFromFile memory-maps path read-only and constructs a Graph over the
// mapping (spec §4.8 "From a file path via read-only memory mapping"). The
// mapping is held for the Graph's lifetime and released on Close.
func OpenFromFile(path string) (*Graph, error) {
	m, err := openMapping(path)
	if err != nil {
		return nil, err
	}
	buf, err := OpenBuffer(m.Bytes())
	if err != nil {
		m.Close()
		return nil, err
	}
	return newGraph(buf, m)
}

func newGraph(buf *Buffer, m *mapping) (*Graph, error) {
	hdr := buf.Header()
	idx, err := readIntervalIndex(buf, hdr.IntervalIndexOffset)
	if err != nil {
		return nil, err
	}
	return &Graph{buf: buf, mapping: m, cache: newNodeAtCache(), index: idx}, nil
}

// Header returns a copy of the image's header.
func (g *Graph) Header() Header { return g.buf.Header() }

// Root returns the accessor for the root symbol node.
func (g *Graph) Root() (SymbolNode, error) { return readSymbolNode(g.buf, g.buf.Header().Root) }

// Stats reports the image's node count, edge count, source length, and
// total byte length.
func (g *Graph) Stats() Stats {
	hdr := g.buf.Header()
	return Stats{
		NodeCount:  hdr.NodeCount,
		EdgeCount:  hdr.EdgeCount,
		SourceLen:  hdr.SourceLen,
		ImageBytes: g.buf.Len(),
	}
}

// FindNodesAt returns the offsets of every symbol node whose interval
// contains point, delegating to the interval index (empty when no index
// is present), in ascending-start order (spec §4.8, §8 property 8).
// Results are cached by point; the cache is purely an implementation
// optimization and does not change the returned set (spec §4.8).
func (g *Graph) FindNodesAt(point uint32) ([]Offset, error) {
	if cached, ok := g.cache.get(point); ok {
		return cached, nil
	}
	entries, err := g.index.FindAt(point)
	if err != nil {
		return nil, err
	}
	out := make([]Offset, len(entries))
	for i, e := range entries {
		out[i] = e.NodeOffset
	}
	g.cache.put(point, out)
	return out, nil
}

// ProcessNodesAt invokes visit for each node offset whose interval
// contains point, in ascending-start order (spec §4.8 "process_nodes_at"),
// calling visit directly off the interval index on a cache miss rather than
// materializing a SymbolNode slice first. It stops and returns visit's
// error immediately if visit returns a non-nil error.
func (g *Graph) ProcessNodesAt(point uint32, visit func(SymbolNode) error) error {
	if cached, ok := g.cache.get(point); ok {
		for _, off := range cached {
			n, err := readSymbolNode(g.buf, off)
			if err != nil {
				return err
			}
			if err := visit(n); err != nil {
				return err
			}
		}
		return nil
	}
	entries, err := g.index.FindAt(point)
	if err != nil {
		return err
	}
	found := make([]Offset, len(entries))
	for i, e := range entries {
		found[i] = e.NodeOffset
		n, err := readSymbolNode(g.buf, e.NodeOffset)
		if err != nil {
			return err
		}
		if err := visit(n); err != nil {
			return err
		}
	}
	g.cache.put(point, found)
	return nil
}

// Buffer exposes the underlying Buffer for callers that need direct
// accessor construction (e.g. the Editor reading a source graph).
func (g *Graph) Buffer() *Buffer { return g.buf }

// Close releases any backing file mapping and disposes the underlying
// Buffer; subsequent accessor use against this Graph's Buffer returns
// UseAfterFree.
func (g *Graph) Close() error {
	g.cache.clear()
	g.buf.dispose()
	if g.mapping != nil {
		return g.mapping.Close()
	}
	return nil
}
