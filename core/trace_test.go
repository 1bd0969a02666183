package sexp

import "testing"

func traceField(t *testing.T, x Expr, key string) (Expr, bool) {
	t.Helper()
	for _, pair := range x.List {
		if len(pair.List) != 2 {
			t.Fatalf("malformed pair %s", pair)
		}
		if pair.List[0].IsSymbol(key) {
			return pair.List[1], true
		}
	}
	return Expr{}, false
}

func TestTraceToExpr(t *testing.T) {
	tr := &Trace{
		ID:        "t1",
		Input:     "(+ 1 2)",
		Result:    "3",
		Timestamp: "2026-02-27T20:00:00Z",
	}
	x := tr.ToExpr()
	if x.Kind != ExprList {
		t.Fatalf("expected List, got %s", x.KindName())
	}
	if v, _ := traceField(t, x, "input"); !Equal(v, StringVal("(+ 1 2)")) {
		t.Fatalf("input mismatch: %s", v)
	}
	if v, _ := traceField(t, x, "result"); !Equal(v, StringVal("3")) {
		t.Fatalf("result mismatch: %s", v)
	}
	if _, ok := traceField(t, x, "error"); ok {
		t.Fatal("successful trace should have no error field")
	}
}

func TestTraceToExprError(t *testing.T) {
	tr := &Trace{ID: "t2", Input: "x", Error: "unbound symbol: x", Kind: "UnboundSymbol"}
	x := tr.ToExpr()
	if v, _ := traceField(t, x, "kind"); !Equal(v, StringVal("UnboundSymbol")) {
		t.Fatalf("kind mismatch: %s", v)
	}
	if _, ok := traceField(t, x, "result"); ok {
		t.Fatal("failed trace should have no result field")
	}
}

func TestTraceToMap(t *testing.T) {
	ok := (&Trace{ID: "a", Input: "1", Result: "1"}).ToMap()
	if ok["result"] != "1" || ok["id"] != "a" {
		t.Fatalf("unexpected map %v", ok)
	}
	if _, has := ok["error"]; has {
		t.Fatal("unexpected error key")
	}
	bad := (&Trace{ID: "b", Input: "x", Error: "boom", Kind: "UnboundSymbol"}).ToMap()
	if bad["error"] != "boom" || bad["kind"] != "UnboundSymbol" {
		t.Fatalf("unexpected map %v", bad)
	}
}
