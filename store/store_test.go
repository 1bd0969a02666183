package store

import (
	"path/filepath"
	"testing"

	sexp "github.com/rphilander/sexp/core"
)

func openTest(t *testing.T, path, session string) *Store {
	t.Helper()
	s, err := Open(path, session)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendLoad(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "j.db"), "s1")
	for _, d := range []sexp.Definition{{Name: "a", Source: "1"}, {Name: "b", Source: "(+ a 1)"}, {Name: "a", Source: "2"}} {
		if err := s.Append(d.Name, d.Source); err != nil {
			t.Fatal(err)
		}
	}
	defs, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 3 || defs[0].Source != "1" || defs[2].Source != "2" {
		t.Fatalf("unexpected definitions %v", defs)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "j.db"), "s1")
	s.Append("a", "1")
	s.Append("b", "2")
	s.Append("a", "3")
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	defs, _ := s.Load()
	if len(defs) != 1 || defs[0].Name != "b" {
		t.Fatalf("expected only b, got %v", defs)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if defs, _ := s.Load(); len(defs) != 0 {
		t.Fatalf("expected empty journal, got %v", defs)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.db")
	one := openTest(t, path, "one")
	two := openTest(t, path, "two")
	one.Append("x", "1")
	two.Append("x", "2")
	two.Append("y", "3")

	if err := one.Clear(); err != nil {
		t.Fatal(err)
	}
	defs, _ := two.Load()
	if len(defs) != 2 {
		t.Fatalf("clearing one session touched another: %v", defs)
	}

	infos, err := one.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].ID != "two" || infos[0].Definitions != 2 || infos[0].LastWrite == "" {
		t.Fatalf("unexpected sessions %+v", infos)
	}
}

func TestOpenRequiresSession(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "j.db"), ""); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestReplayIntoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.db")
	st := openTest(t, path, "s1")
	sess := sexp.NewSession(sexp.WithJournal(st))
	if _, err := sess.Eval("(define inc (lambda (n) (+ n 1))) (define two (inc 1))"); err != nil {
		t.Fatal(err)
	}

	// a fresh session over the same journal sees the same definitions
	defs, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	restored := sexp.NewSession(sexp.WithJournal(st))
	if n := restored.Replay(defs); n != 2 {
		t.Fatalf("expected 2 replayed definitions, got %d", n)
	}
	v, err := restored.Eval("two")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "2" {
		t.Fatalf("expected 2, got %s", v)
	}
	if defs, _ := st.Load(); len(defs) != 2 {
		t.Fatalf("replay wrote to the journal: %v", defs)
	}
}
