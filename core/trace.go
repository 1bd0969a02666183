package sexp

// Trace captures one top-level evaluation: what went in, what came out.
type Trace struct {
	ID        string
	Input     string
	Result    string // printed result; empty on error
	Error     string // non-empty on error
	Kind      string // error kind name, empty on success
	Timestamp string // RFC 3339
}

// ToExpr converts a Trace to a list of (key value) pairs.
func (t *Trace) ToExpr() Expr {
	pair := func(k string, v Expr) Expr { return ListVal(SymbolVal(k), v) }
	fields := []Expr{
		pair("id", StringVal(t.ID)),
		pair("input", StringVal(t.Input)),
		pair("timestamp", StringVal(t.Timestamp)),
	}
	if t.Error != "" {
		fields = append(fields, pair("error", StringVal(t.Error)), pair("kind", StringVal(t.Kind)))
	} else {
		fields = append(fields, pair("result", StringVal(t.Result)))
	}
	return ListVal(fields...)
}

// ToMap converts a Trace to a JSON-friendly map.
func (t *Trace) ToMap() map[string]any {
	m := map[string]any{
		"id":        t.ID,
		"input":     t.Input,
		"timestamp": t.Timestamp,
	}
	if t.Error != "" {
		m["error"] = t.Error
		m["kind"] = t.Kind
	} else {
		m["result"] = t.Result
	}
	return m
}
