package sexp

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

type parser struct {
	input []rune
	pos   int
}

// Parse reads exactly one expression from input.
func Parse(input string) (Expr, error) {
	p := &parser{input: []rune(input)}
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return Expr{}, syntaxError("empty input")
	}
	x, err := p.parseExpr()
	if err != nil {
		return Expr{}, err
	}
	p.skipWhitespace()
	if p.pos < len(p.input) {
		return Expr{}, syntaxError("unexpected input after expression at position %d", p.pos)
	}
	return x, nil
}

// ParseAll reads every expression in input, in order.
func ParseAll(input string) ([]Expr, error) {
	p := &parser{input: []rune(input)}
	var exprs []Expr
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return exprs, nil
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, x)
	}
}

func (p *parser) parseExpr() (Expr, error) {
	if p.pos >= len(p.input) {
		return Expr{}, syntaxError("unexpected end of input")
	}
	switch ch := p.input[p.pos]; ch {
	case '\'':
		return p.parseQuote()
	case '(':
		return p.parseList()
	case ')':
		return Expr{}, syntaxError("unexpected ')' at position %d", p.pos)
	case '"':
		return p.parseString()
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseQuote() (Expr, error) {
	p.pos++ // skip '\''
	p.skipWhitespace()
	inner, err := p.parseExpr()
	if err != nil {
		return Expr{}, err
	}
	return ListVal(SymbolVal("quote"), inner), nil
}

func (p *parser) parseList() (Expr, error) {
	start := p.pos
	p.pos++ // skip '('
	elems := []Expr{}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return Expr{}, syntaxError("unclosed list opened at position %d", start)
		}
		if p.input[p.pos] == ')' {
			p.pos++
			return ListVal(elems...), nil
		}
		x, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		elems = append(elems, x)
	}
}

// parseString accepts every escape strconv.Quote produces, so printed
// strings read back unchanged.
func (p *parser) parseString() (Expr, error) {
	open := p.pos
	p.pos++ // skip opening '"'
	for p.pos < len(p.input) && p.input[p.pos] != '"' {
		if p.input[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.input) {
		return Expr{}, syntaxError("unclosed string opened at position %d", open)
	}
	raw := string(p.input[open+1 : p.pos])
	p.pos++ // skip closing '"'

	var buf strings.Builder
	for raw != "" {
		r, multibyte, tail, err := strconv.UnquoteChar(raw, '"')
		if err != nil {
			return Expr{}, syntaxError("bad escape sequence in string opened at position %d", open)
		}
		if multibyte {
			buf.WriteRune(r)
		} else {
			buf.WriteByte(byte(r))
		}
		raw = tail
	}
	return StringVal(buf.String()), nil
}

func (p *parser) parseAtom() (Expr, error) {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	token := string(p.input[start:p.pos])
	if token == "" {
		return Expr{}, syntaxError("unexpected character: %c", p.input[start])
	}

	switch token {
	case "true":
		return BoolVal(true), nil
	case "false":
		return BoolVal(false), nil
	}
	i, err := strconv.ParseInt(token, 10, 64)
	if err == nil {
		return IntVal(i), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return Expr{}, syntaxError("integer literal out of range: %s", token)
	}
	if looksNumeric(token) {
		f, err := strconv.ParseFloat(token, 64)
		if err == nil {
			return FloatVal(f), nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return Expr{}, syntaxError("float literal out of range: %s", token)
		}
	}
	return SymbolVal(token), nil
}

// looksNumeric keeps symbols such as inf, nan or infinity from reading as
// floats.
func looksNumeric(token string) bool {
	t := strings.TrimLeft(token, "+-")
	return t != "" && (unicode.IsDigit(rune(t[0])) || t[0] == '.')
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == ';' {
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if !unicode.IsSpace(ch) {
			break
		}
		p.pos++
	}
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' || ch == '\''
}
