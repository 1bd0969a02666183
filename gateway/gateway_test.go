package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	sexp "github.com/rphilander/sexp/core"
	"github.com/rphilander/sexp/server"
)

type fakeDaemon struct {
	got  map[string]any
	resp map[string]any
	err  error
}

func (f *fakeDaemon) Call(msg map[string]any) (map[string]any, error) {
	f.got = msg
	return f.resp, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("bad JSON reply %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestForwardsOp(t *testing.T) {
	d := &fakeDaemon{resp: map[string]any{"ok": true, "value": "x"}}
	rec, out := do(t, Handler(d), "POST", "/define", `{"name": "x", "expr": "1", "id": "spoofed"}`)
	if rec.Code != http.StatusOK || out["value"] != "x" {
		t.Fatalf("unexpected reply %d %v", rec.Code, out)
	}
	if d.got["op"] != "define" || d.got["name"] != "x" || d.got["expr"] != "1" {
		t.Fatalf("unexpected message %v", d.got)
	}
	if _, has := d.got["id"]; has {
		t.Fatal("client ids should not be forwarded")
	}
}

func TestStatusCodes(t *testing.T) {
	for _, tc := range []struct {
		resp map[string]any
		err  error
		want int
	}{
		{map[string]any{"ok": false, "error": "car: empty list", "kind": "EmptyListAccess"}, nil, http.StatusUnprocessableEntity},
		{map[string]any{"ok": false, "error": "eval: missing 'expr' string"}, nil, http.StatusBadRequest},
		{nil, errors.New("broken pipe"), http.StatusBadGateway},
	} {
		d := &fakeDaemon{resp: tc.resp, err: tc.err}
		rec, _ := do(t, Handler(d), "POST", "/eval", `{"expr": "(car (quote ()))"}`)
		if rec.Code != tc.want {
			t.Errorf("expected %d, got %d", tc.want, rec.Code)
		}
	}
}

func TestRejectsBadRequests(t *testing.T) {
	d := &fakeDaemon{resp: map[string]any{"ok": true}}
	h := Handler(d)
	if rec, _ := do(t, h, "POST", "/eval", "(not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rec.Code)
	}
	if rec, _ := do(t, h, "POST", "/eval", "null"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for null body, got %d", rec.Code)
	}
	if rec, _ := do(t, h, "GET", "/eval", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec, _ := do(t, h, "GET", "/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAgainstDaemon(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	sess := sexp.NewSession(sexp.WithLogger(logrus.NewEntry(l)))

	sock := filepath.Join(t.TempDir(), "d.sock")
	srv, err := server.New(sess, sock)
	if err != nil {
		t.Fatal(err)
	}
	go srv.Run()
	defer srv.Shutdown()

	client, err := server.Dial(sock)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	h := Handler(client)

	if rec, _ := do(t, h, "POST", "/eval", `{"expr": "(define xs (quote (1 2 3)))"}`); rec.Code != http.StatusOK {
		t.Fatalf("define failed: %d %s", rec.Code, rec.Body.String())
	}
	rec, out := do(t, h, "POST", "/eval", `{"expr": "(cdr xs)"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("eval failed: %d %s", rec.Code, rec.Body.String())
	}
	if v := out["value"].(map[string]any); v["result"] != "(2 3)" {
		t.Fatalf("unexpected value %v", v)
	}
	rec, out = do(t, h, "GET", "/bindings", "")
	if rec.Code != http.StatusOK || len(out["value"].([]any)) != 1 {
		t.Fatalf("unexpected bindings %d %v", rec.Code, out)
	}
	rec, out = do(t, h, "POST", "/eval", `{"expr": "(car (quote ()))"}`)
	if rec.Code != http.StatusUnprocessableEntity || out["kind"] != "EmptyListAccess" {
		t.Fatalf("unexpected error reply %d %v", rec.Code, out)
	}
}
