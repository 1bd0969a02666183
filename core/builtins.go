package sexp

// DefaultBuiltins returns the numeric and list builtins.
func DefaultBuiltins() map[string]Builtin {
	return map[string]Builtin{
		// Arithmetic
		"+":   builtinAdd,
		"-":   builtinSub,
		"*":   builtinMul,
		"/":   builtinDiv,
		"mod": builtinMod,
		// Comparison
		"=":  builtinNumEq,
		"<":  comparison("<", func(c int) bool { return c < 0 }),
		">":  comparison(">", func(c int) bool { return c > 0 }),
		"<=": comparison("<=", func(c int) bool { return c <= 0 }),
		">=": comparison(">=", func(c int) bool { return c >= 0 }),
		// List
		"list":  builtinList,
		"cons":  builtinCons,
		"null?": builtinNull,
		"atom?": builtinAtom,
		"eq?":   builtinEq,
	}
}

func builtinList(args []Expr) (Expr, error) {
	elems := make([]Expr, len(args))
	copy(elems, args)
	return ListVal(elems...), nil
}

func builtinCons(args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("cons", "2 args", len(args))
	}
	if args[1].Kind != ExprList {
		return Expr{}, typeError("cons", "List as second arg", args[1])
	}
	elems := make([]Expr, len(args[1].List)+1)
	elems[0] = args[0]
	copy(elems[1:], args[1].List)
	return ListVal(elems...), nil
}

func builtinNull(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("null?", "1 arg", len(args))
	}
	return BoolVal(args[0].IsEmptyList()), nil
}

func builtinAtom(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("atom?", "1 arg", len(args))
	}
	return BoolVal(args[0].IsAtom()), nil
}

func builtinEq(args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("eq?", "2 args", len(args))
	}
	return BoolVal(Equal(args[0], args[1])), nil
}
