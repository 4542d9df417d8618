package sppfcpg

import (
	"errors"
	"testing"
)

func TestBuildTwiceFails(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(0, "", nil); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(0, "", nil); !errors.Is(err, BuilderStateError) {
		t.Fatalf("second Build: expected BuilderStateError, got %v", err)
	}
}

func TestWriteAfterBuildFails(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(0, "", nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := b.InternString("x"); !errors.Is(err, BuilderStateError) {
		t.Fatalf("InternString after Build: expected BuilderStateError, got %v", err)
	}
	if _, err := b.WriteValue(KindI32, int32(1)); !errors.Is(err, BuilderStateError) {
		t.Fatalf("WriteValue after Build: expected BuilderStateError, got %v", err)
	}
}

func TestInternStringDedupesAndNormalizes(t *testing.T) {
	b := NewBuilder()
	off1, err := b.InternString("café")
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	// "café" with a combining acute accent (e + U+0301) NFC-normalizes to
	// the same precomposed form as "café" above, so this must intern to
	// the same offset rather than appending a second copy.
	off2, err := b.InternString("café")
	if err != nil {
		t.Fatalf("InternString (combining): %v", err)
	}
	if off1 != off2 {
		t.Fatalf("InternString did not dedupe NFC-equivalent strings: %v != %v", off1, off2)
	}

	off3, err := b.InternString("other")
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	if off3 == off1 {
		t.Fatalf("distinct strings must not share an offset")
	}
}

func TestNodeAndEdgeCountsAreTrue(t *testing.T) {
	b := NewBuilder()
	leaf1, err := b.WriteSymbolNode(1, 1, 0, 1, nil, nil)
	if err != nil {
		t.Fatalf("WriteSymbolNode(leaf1): %v", err)
	}
	leaf2, err := b.WriteSymbolNode(2, 1, 1, 1, nil, nil)
	if err != nil {
		t.Fatalf("WriteSymbolNode(leaf2): %v", err)
	}
	edge, err := b.WriteCpgEdge(AstChild, leaf2, nil)
	if err != nil {
		t.Fatalf("WriteCpgEdge: %v", err)
	}
	packed, err := b.WritePackedNode(1, []Offset{leaf1, leaf2}, []Offset{edge})
	if err != nil {
		t.Fatalf("WritePackedNode: %v", err)
	}
	root, err := b.WriteSymbolNode(3, 1, 0, 2, []Offset{packed}, nil)
	if err != nil {
		t.Fatalf("WriteSymbolNode(root): %v", err)
	}
	image, err := b.Build(root, "ab", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g, err := Open(image)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer g.Close()
	stats := g.Stats()
	// 3 symbol nodes were written (leaf1, leaf2, root); the spec's design
	// notes (§9) require the true count, not a hardcoded 1.
	if stats.NodeCount != 3 {
		t.Fatalf("NodeCount = %d, want 3", stats.NodeCount)
	}
	if stats.EdgeCount != 1 {
		t.Fatalf("EdgeCount = %d, want 1", stats.EdgeCount)
	}
}

func TestWriteValueInvalidArgument(t *testing.T) {
	b := NewBuilder()
	if _, err := b.WriteValue(KindI32, "not an int"); !errors.Is(err, InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if _, err := b.WriteValue(ValueKind(99), 1); !errors.Is(err, InvalidArgument) {
		t.Fatalf("expected InvalidArgument for unknown kind, got %v", err)
	}
}
