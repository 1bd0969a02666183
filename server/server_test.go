package server

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	sexp "github.com/rphilander/sexp/core"
)

func quietSession() *sexp.Session {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return sexp.NewSession(sexp.WithLogger(logrus.NewEntry(l)))
}

func mustOK(t *testing.T, resp map[string]any) {
	t.Helper()
	if resp["ok"] != true {
		t.Fatalf("expected ok, got %v", resp)
	}
}

func TestHandleEval(t *testing.T) {
	s := newServer(quietSession())
	resp := s.handleRequest(map[string]any{"id": "1", "op": "eval", "expr": "(cdr (quote (1 2 3)))"})
	mustOK(t, resp)
	if resp["id"] != "1" {
		t.Fatalf("id not echoed: %v", resp)
	}
	val := resp["value"].(map[string]any)
	if val["result"] != "(2 3)" || val["type"] != "List" {
		t.Fatalf("unexpected value %v", val)
	}
}

func TestHandleEvalError(t *testing.T) {
	s := newServer(quietSession())
	resp := s.handleRequest(map[string]any{"id": "2", "op": "eval", "expr": "(car (quote ()))"})
	if resp["ok"] != false || resp["kind"] != "EmptyListAccess" {
		t.Fatalf("expected EmptyListAccess failure, got %v", resp)
	}
	resp = s.handleRequest(map[string]any{"id": "3", "op": "eval"})
	if resp["ok"] != false {
		t.Fatalf("missing expr should fail, got %v", resp)
	}
	if _, has := resp["kind"]; has {
		t.Fatalf("request errors carry no kind: %v", resp)
	}
}

func TestHandleDefineDeleteBindings(t *testing.T) {
	s := newServer(quietSession())
	mustOK(t, s.handleRequest(map[string]any{"op": "define", "name": "xs", "expr": "(quote (a b))"}))

	resp := s.handleRequest(map[string]any{"op": "bindings"})
	mustOK(t, resp)
	list := resp["value"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["source"] != "(quote (a b))" {
		t.Fatalf("unexpected bindings %v", list)
	}

	resp = s.handleRequest(map[string]any{"op": "eval", "expr": "(car xs)"})
	mustOK(t, resp)
	if resp["value"].(map[string]any)["result"] != "a" {
		t.Fatalf("unexpected result %v", resp)
	}

	mustOK(t, s.handleRequest(map[string]any{"op": "delete", "name": "xs"}))
	if resp := s.handleRequest(map[string]any{"op": "delete", "name": "xs"}); resp["ok"] != false {
		t.Fatalf("second delete should fail, got %v", resp)
	}
	if resp := s.handleRequest(map[string]any{"op": "define", "expr": "1"}); resp["ok"] != false {
		t.Fatalf("define without name should fail, got %v", resp)
	}
	resp = s.handleRequest(map[string]any{"op": "define", "name": "a b", "expr": "1"})
	if resp["ok"] != false || resp["kind"] != "TypeMismatch" {
		t.Fatalf("expected TypeMismatch for a bad name, got %v", resp)
	}
}

func TestHandleTracesAndClear(t *testing.T) {
	s := newServer(quietSession())
	s.handleRequest(map[string]any{"op": "eval", "expr": "(not true)"})
	s.handleRequest(map[string]any{"op": "eval", "expr": "nope"})

	resp := s.handleRequest(map[string]any{"op": "traces"})
	mustOK(t, resp)
	traces := resp["value"].([]any)
	if len(traces) != 2 {
		t.Fatalf("expected 2 traces, got %v", traces)
	}
	if traces[1].(map[string]any)["kind"] != "UnboundSymbol" {
		t.Fatalf("unexpected trace %v", traces[1])
	}

	mustOK(t, s.handleRequest(map[string]any{"op": "clear"}))
	resp = s.handleRequest(map[string]any{"op": "traces"})
	if len(resp["value"].([]any)) != 0 {
		t.Fatalf("clear should drop traces, got %v", resp)
	}
}

func TestHandleManualAndUnknown(t *testing.T) {
	s := newServer(quietSession())
	resp := s.handleRequest(map[string]any{})
	mustOK(t, resp)
	builtins := resp["value"].(map[string]any)["builtins"].([]any)
	found := false
	for _, b := range builtins {
		if b == "cons" {
			found = true
		}
	}
	if !found {
		t.Fatalf("manual should list builtins, got %v", builtins)
	}

	resp = s.handleRequest(map[string]any{"op": "frobnicate"})
	if resp["ok"] != false || !strings.Contains(resp["error"].(string), "frobnicate") {
		t.Fatalf("expected unknown op error, got %v", resp)
	}
}

// --- Wire ---

func TestWireRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, map[string]any{"id": "r1", "op": "eval", "expr": "(and)"}); err != nil {
		t.Fatal(err)
	}
	msg, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg["expr"] != "(and)" || msg["id"] != "r1" {
		t.Fatalf("unexpected message %v", msg)
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestWireRejectsOversizedAndTruncated(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(MaxFrameSize+1))
	if _, err := ReadFrame(&buf); err == nil || err == io.EOF {
		t.Fatalf("expected size error, got %v", err)
	}

	buf.Reset()
	binary.Write(&buf, binary.BigEndian, uint32(10))
	buf.WriteString("{}")
	if _, err := ReadFrame(&buf); err == nil || err == io.EOF {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestWireFrameLayout(t *testing.T) {
	var w countingWriter
	if err := WriteFrame(&w, map[string]any{"ok": true}); err != nil {
		t.Fatal(err)
	}
	if w.writes != 1 {
		t.Fatalf("expected a single write, got %d", w.writes)
	}
	frame := w.Bytes()
	if n := binary.BigEndian.Uint32(frame[:4]); int(n) != len(frame)-4 || string(frame[4:]) != `{"ok":true}` {
		t.Fatalf("unexpected frame %q", frame)
	}

	// a peer hanging up inside the header is not a clean close
	if _, err := ReadFrame(bytes.NewReader([]byte{0, 0})); err == nil || err == io.EOF {
		t.Fatalf("expected header error, got %v", err)
	}
	if err := WriteFrame(io.Discard, map[string]any{"bad": func() {}}); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestNextIDUnique(t *testing.T) {
	a, b := NextID(), NextID()
	if a == b || !strings.HasPrefix(a, "r") {
		t.Fatalf("unexpected ids %s %s", a, b)
	}
}

// --- Socket ---

func TestServeOverSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "s.sock")
	s, err := New(quietSession(), sock)
	if err != nil {
		t.Fatal(err)
	}
	go s.Run()
	defer s.Shutdown()

	conn, err := net.Dial("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	for _, step := range []struct{ expr, want string }{
		{"(define sq (lambda (n) (* n n)))", "sq"},
		{"(sq 12)", "144"},
	} {
		if err := WriteFrame(conn, map[string]any{"id": NextID(), "op": "eval", "expr": step.expr}); err != nil {
			t.Fatal(err)
		}
		resp, err := ReadFrame(conn)
		if err != nil {
			t.Fatal(err)
		}
		mustOK(t, resp)
		if got := resp["value"].(map[string]any)["result"]; got != step.want {
			t.Fatalf("%s: expected %s, got %v", step.expr, step.want, got)
		}
	}
}
