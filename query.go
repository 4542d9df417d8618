package sppfcpg

import (
	"strconv"
	"strings"
)

// Query recognizes two predicates against a Graph's root node — "symbolId:
// <u16>" and "nodeType: <u16>" — and returns the root's offset when the
// predicate matches, or an empty result otherwise. Any other query string
// yields the root offset as a default (spec §4.10). This shim is
// illustrative only; it is not a general graph query language (explicit
// Non-goal).
func Query(g *Graph, q string) ([]Offset, error) {
	root, err := g.Root()
	if err != nil {
		return nil, err
	}

	key, rawVal, ok := splitPredicate(q)
	if !ok || (key != "symbolId" && key != "nodeType") {
		return []Offset{root.Offset()}, nil
	}

	want, err := strconv.ParseUint(rawVal, 10, 16)
	if err != nil {
		return nil, newErr(InvalidArgument, "predicate value %q is not a u16", rawVal)
	}

	switch key {
	case "symbolId":
		if root.SymbolID() == uint16(want) {
			return []Offset{root.Offset()}, nil
		}
		return nil, nil
	case "nodeType":
		if root.NodeType() == uint16(want) {
			return []Offset{root.Offset()}, nil
		}
		return nil, nil
	default:
		return []Offset{root.Offset()}, nil
	}
}

func splitPredicate(q string) (key, value string, ok bool) {
	idx := strings.IndexByte(q, ':')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(q[:idx])
	value = strings.TrimSpace(q[idx+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
