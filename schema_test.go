package sppfcpg

import "testing"

func TestEdgeKindString(t *testing.T) {
	cases := map[EdgeKind]string{
		AstChild:    "AST_CHILD",
		ControlFlow: "CONTROL_FLOW",
		DataFlow:    "DATA_FLOW",
		Calls:       "CALLS",
		TypeRelation: "TYPE",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("EdgeKind(%d).String() = %q, want %q", k, got, want)
		}
		if !k.valid() {
			t.Fatalf("EdgeKind(%d) should be valid", k)
		}
	}
	if EdgeKind(0).valid() {
		t.Fatalf("EdgeKind(0) should be invalid")
	}
	if EdgeKind(6).valid() {
		t.Fatalf("EdgeKind(6) should be invalid")
	}
}

func TestValueKindString(t *testing.T) {
	cases := map[ValueKind]string{
		KindString: "STRING",
		KindI32:    "I32",
		KindU32:    "U32",
		KindI64:    "I64",
		KindU64:    "U64",
		KindF32:    "F32",
		KindF64:    "F64",
		KindBool:   "BOOL",
		KindBytes:  "BYTES",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("ValueKind(%d).String() = %q, want %q", k, got, want)
		}
		if !k.valid() {
			t.Fatalf("ValueKind(%d) should be valid", k)
		}
	}
	if ValueKind(0).valid() {
		t.Fatalf("ValueKind(0) should be invalid")
	}
	if ValueKind(10).valid() {
		t.Fatalf("ValueKind(10) should be invalid")
	}
}

func TestFlagsHas(t *testing.T) {
	f := FlagFullyParsed | FlagHasTypeInformation
	if !f.Has(FlagFullyParsed) {
		t.Fatalf("expected FlagFullyParsed set")
	}
	if f.Has(FlagHasSyntaxErrors) {
		t.Fatalf("did not expect FlagHasSyntaxErrors set")
	}
}

func TestOffsetString(t *testing.T) {
	if noOffset.String() != "@absent" {
		t.Fatalf("noOffset.String() = %q, want @absent", noOffset.String())
	}
	if Offset(0x20).String() != "@00000020" {
		t.Fatalf("Offset(0x20).String() = %q, want @00000020", Offset(0x20).String())
	}
}
