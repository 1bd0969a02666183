package sexp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reader turns source text into expressions.
type Reader func(src string) ([]Expr, error)

// Journal persists global definitions so a session can be rebuilt.
type Journal interface {
	Append(name, source string) error
	Remove(name string) error
	Clear() error
}

// Definition is a global binding in printed form.
type Definition struct {
	Name   string
	Source string
}

// Session is a global frame plus everything needed to drive it from text:
// a reader, a trace ring and an optional journal. Like the evaluator it is
// owned by a single goroutine.
type Session struct {
	ID        string
	ev        *Evaluator
	read      Reader
	journal   Journal
	log       *logrus.Entry
	traces    []Trace
	maxTraces int
	replaying bool
}

type Option func(*Session)

func WithID(id string) Option           { return func(s *Session) { s.ID = id } }
func WithReader(r Reader) Option        { return func(s *Session) { s.read = r } }
func WithJournal(j Journal) Option      { return func(s *Session) { s.journal = j } }
func WithLogger(l *logrus.Entry) Option { return func(s *Session) { s.log = l } }
func WithMaxDepth(n int) Option         { return func(s *Session) { s.ev.MaxDepth = n } }
func WithMaxTraces(n int) Option        { return func(s *Session) { s.maxTraces = n } }

func NewSession(opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		ev:        NewEvaluator(nil),
		read:      ParseAll,
		maxTraces: 1000,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "session", "session": s.ID})
	s.ev.OnDefine = s.onDefine
	s.ev.Builtins["traces"] = s.builtinTraces
	return s
}

func (s *Session) Env() *Env { return s.ev.Global }

func (s *Session) Evaluator() *Evaluator { return s.ev }

// Eval reads every expression in src and reduces them in order, returning
// the last result. Each expression leaves a trace.
func (s *Session) Eval(src string) (Expr, error) {
	exprs, err := s.read(src)
	if err != nil {
		s.appendTrace(src, Expr{}, err)
		return Expr{}, err
	}
	if len(exprs) == 0 {
		err := syntaxError("empty input")
		s.appendTrace(src, Expr{}, err)
		return Expr{}, err
	}
	var result Expr
	for _, x := range exprs {
		result, err = s.Simplify(x)
		if err != nil {
			return Expr{}, err
		}
	}
	return result, nil
}

// Simplify reduces an already parsed expression in the session's frame.
func (s *Session) Simplify(x Expr) (Expr, error) {
	v, err := s.ev.Simplify(x)
	s.appendTrace(x.String(), v, err)
	if err != nil {
		s.log.WithFields(logrus.Fields{"input": x.String(), "kind": KindOf(err).String()}).WithError(err).Debug("eval failed")
		return Expr{}, err
	}
	s.log.WithFields(logrus.Fields{"input": x.String(), "result": v.String()}).Debug("eval")
	return v, nil
}

// Define binds name to src without evaluating it, exactly like a top-level
// (define name src). name must read back as that same symbol.
func (s *Session) Define(name, src string) error {
	if x, err := Parse(name); err != nil || !x.IsSymbol(name) {
		return &EvalError{Kind: TypeMismatch, Op: "define", Msg: fmt.Sprintf("%q is not a symbol name", name)}
	}
	exprs, err := s.read(src)
	if err != nil {
		return err
	}
	if len(exprs) != 1 {
		return syntaxError("define %s: expected 1 expression, got %d", name, len(exprs))
	}
	_, err = s.ev.Simplify(ListVal(SymbolVal("define"), SymbolVal(name), exprs[0]))
	return err
}

// Delete removes a global binding.
func (s *Session) Delete(name string) bool {
	if !s.ev.Global.Delete(name) {
		return false
	}
	if s.journal != nil {
		if err := s.journal.Remove(name); err != nil {
			s.log.WithError(err).WithField("name", name).Warn("journal remove failed")
		}
	}
	return true
}

// Bindings lists the global definitions in printed form, sorted by name.
func (s *Session) Bindings() []Definition {
	names := s.ev.Global.Names()
	defs := make([]Definition, 0, len(names))
	for _, n := range names {
		b, _ := s.ev.Global.binding(n)
		defs = append(defs, Definition{Name: n, Source: b.Expr.String()})
	}
	return defs
}

// Traces returns the retained traces, oldest first.
func (s *Session) Traces() []Trace {
	out := make([]Trace, len(s.traces))
	copy(out, s.traces)
	return out
}

// Clear drops every global binding and trace, and empties the journal.
func (s *Session) Clear() error {
	s.ev.Global = NewEnv()
	s.traces = nil
	if s.journal != nil {
		return s.journal.Clear()
	}
	return nil
}

// Replay rebinds journaled definitions without journaling them again.
// Entries that no longer parse are skipped. It returns how many were bound.
func (s *Session) Replay(defs []Definition) int {
	s.replaying = true
	defer func() { s.replaying = false }()
	n := 0
	for _, d := range defs {
		x, err := Parse(d.Source)
		if err != nil {
			s.log.WithError(err).WithField("name", d.Name).Warn("skipping journal entry")
			continue
		}
		s.ev.Global.Bind(d.Name, x)
		n++
	}
	s.log.WithField("count", n).Info("replayed definitions")
	return n
}

func (s *Session) onDefine(name string, x Expr) {
	if s.replaying || s.journal == nil {
		return
	}
	if err := s.journal.Append(name, x.String()); err != nil {
		s.log.WithError(err).WithField("name", name).Warn("journal append failed")
	}
}

func (s *Session) appendTrace(input string, result Expr, err error) {
	if s.maxTraces <= 0 {
		return
	}
	t := Trace{
		ID:        uuid.NewString(),
		Input:     input,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		t.Error = err.Error()
		if k := KindOf(err); k != 0 {
			t.Kind = k.String()
		}
	} else {
		t.Result = result.String()
	}
	s.traces = append(s.traces, t)
	if len(s.traces) > s.maxTraces {
		s.traces = s.traces[len(s.traces)-s.maxTraces:]
	}
}

// builtinTraces: (traces) or (traces n) returns the most recent traces.
func (s *Session) builtinTraces(args []Expr) (Expr, error) {
	if len(args) > 1 {
		return Expr{}, arityError("traces", "0 or 1 args", len(args))
	}
	ts := s.traces
	if len(args) == 1 {
		if args[0].Kind != ExprInt {
			return Expr{}, typeError("traces", "Int", args[0])
		}
		n := args[0].Int
		if n < 0 {
			return Expr{}, &EvalError{Kind: TypeMismatch, Op: "traces", Msg: fmt.Sprintf("expected non-negative Int, got %d", n)}
		}
		if n < int64(len(ts)) {
			ts = ts[len(ts)-int(n):]
		}
	}
	elems := make([]Expr, len(ts))
	for i := range ts {
		elems[i] = ts[i].ToExpr()
	}
	return ListVal(elems...), nil
}
