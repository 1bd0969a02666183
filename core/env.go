package sexp

import "sort"

// Binding is what a name maps to. Unless Reduced is set, Expr has not been
// evaluated yet and is reduced in Env on every use.
type Binding struct {
	Expr    Expr
	Env     *Env
	Reduced bool
}

// Env is one frame of bindings. Lookups that miss fall through to the
// parent; writes always land in this frame.
type Env struct {
	vars   map[string]Binding
	parent *Env
}

func NewEnv() *Env {
	return &Env{vars: make(map[string]Binding)}
}

// NewChild returns an empty frame whose parent is e.
func (e *Env) NewChild() *Env {
	return &Env{vars: make(map[string]Binding), parent: e}
}

func (e *Env) Parent() *Env { return e.parent }

// Bind stores x unevaluated. It is reduced in e each time the name is used.
func (e *Env) Bind(name string, x Expr) {
	e.vars[name] = Binding{Expr: x, Env: e}
}

// BindValue stores an already reduced x.
func (e *Env) BindValue(name string, x Expr) {
	e.vars[name] = Binding{Expr: x, Reduced: true}
}

func (e *Env) binding(name string) (Binding, bool) {
	for f := e; f != nil; f = f.parent {
		if b, ok := f.vars[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Lookup returns the expression bound to name, searching outward.
func (e *Env) Lookup(name string) (Expr, error) {
	b, ok := e.binding(name)
	if !ok {
		return Expr{}, unboundError(name)
	}
	return b.Expr, nil
}

func (e *Env) Defined(name string) bool {
	_, ok := e.binding(name)
	return ok
}

// Delete removes name from this frame only.
func (e *Env) Delete(name string) bool {
	if _, ok := e.vars[name]; !ok {
		return false
	}
	delete(e.vars, name)
	return true
}

// Names lists the names bound in this frame, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for k := range e.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *Env) Len() int { return len(e.vars) }

// Simplify reduces x in e with the default builtins.
func (e *Env) Simplify(x Expr) (Expr, error) {
	return Simplify(x, e)
}
