package odata

import (
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

var comparisons = map[string]queryir.Operator{
	"eq": queryir.OpEqualTo,
	"ne": queryir.OpNotEqualTo,
	"lt": queryir.OpLessThan,
	"le": queryir.OpLessThanOrEqualTo,
	"gt": queryir.OpGreaterThan,
	"ge": queryir.OpGreaterThanOrEqualTo,
}

// functions maps a function name to its operator and its negation under not.
var functions = map[string]struct {
	op, negated queryir.Operator
	arity       int
}{
	"startswith": {op: queryir.OpStartsWith, arity: 2},
	"endswith":   {op: queryir.OpEndsWith, arity: 2},
	"contains":   {op: queryir.OpContains, negated: queryir.OpDoesNotContain, arity: 2},
	"isempty":    {op: queryir.OpIsEmpty, negated: queryir.OpIsNotEmpty, arity: 1},
	"isnotempty": {op: queryir.OpIsNotEmpty, negated: queryir.OpIsEmpty, arity: 1},
}

// term is one parsed operand: a single predicate or a parenthesized group.
type term struct {
	pred  *queryir.Predicate
	group *queryir.Group
}

// ParseFilter parses a $filter expression into a filter group.
//
// Grammar (keywords are case-insensitive):
//
//	expr    := and ('or' and)*
//	and     := unary ('and' unary)*
//	unary   := '(' expr ')' | 'not' call | call | ident cmp literal
//	cmp     := eq | ne | lt | le | gt | ge
//	call    := (startswith | endswith | contains) '(' ident ',' literal ')'
//	         | (isempty | isnotempty) '(' ident ')'
//	literal := 'text' | integer | decimal | true | false | null
//
// Decimals are carried as text and coerced to the field type when the
// filter is compiled. A blank expression is the empty group.
func ParseFilter(src string) (queryir.Group, error) {
	if strings.TrimSpace(src) == "" {
		return queryir.Group{}, nil
	}

	toks, err := lex(src)
	if err != nil {
		return queryir.Group{}, err
	}

	p := &parser{toks: toks}
	t, err := p.parseOr(0)
	if err != nil {
		return queryir.Group{}, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return queryir.Group{}, syntaxError(tok.pos, "unexpected %s", tok)
	}

	g := queryir.And()
	if t.group != nil {
		g = *t.group
	} else {
		g.Predicates = []queryir.Predicate{*t.pred}
	}
	if err := queryir.Validate(g); err != nil {
		return queryir.Group{}, err
	}
	return g, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, syntaxError(tok.pos, "expected %s, found %s", what, tok)
	}
	return tok, nil
}

func (p *parser) parseOr(depth int) (term, error) {
	return p.parseChain(depth, "or", queryir.LogicOr, p.parseAnd)
}

func (p *parser) parseAnd(depth int) (term, error) {
	return p.parseChain(depth, "and", queryir.LogicAnd, p.parseUnary)
}

// parseChain parses operand (kw operand)* and joins the operands with logic.
func (p *parser) parseChain(depth int, kw string, logic queryir.Logic, operand func(int) (term, error)) (term, error) {
	first, err := operand(depth)
	if err != nil {
		return term{}, err
	}
	terms := []term{first}
	for p.peek().keyword(kw) {
		p.next()
		t, err := operand(depth)
		if err != nil {
			return term{}, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}

	g := queryir.Group{Operator: logic}
	for _, t := range terms {
		if t.pred != nil {
			g.Predicates = append(g.Predicates, *t.pred)
		} else {
			g.SubGroups = append(g.SubGroups, *t.group)
		}
	}
	return term{group: &g}, nil
}

func (p *parser) parseUnary(depth int) (term, error) {
	tok := p.peek()

	switch {
	case tok.kind == tokLParen:
		if depth+1 >= queryir.MaxDepth {
			return term{}, syntaxError(tok.pos, "parentheses nest deeper than %d levels", queryir.MaxDepth)
		}
		p.next()
		inner, err := p.parseOr(depth + 1)
		if err != nil {
			return term{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return term{}, err
		}
		if inner.pred != nil {
			g := queryir.And(*inner.pred)
			return term{group: &g}, nil
		}
		return inner, nil

	case tok.keyword("not"):
		p.next()
		return p.parseCall(true)

	case tok.kind == tokIdent:
		if _, ok := functions[strings.ToLower(tok.text)]; ok && p.toks[p.pos+1].kind == tokLParen {
			return p.parseCall(false)
		}
		return p.parseComparison()
	}

	return term{}, syntaxError(tok.pos, "expected expression, found %s", tok)
}

func (p *parser) parseCall(negate bool) (term, error) {
	name, err := p.expect(tokIdent, "function name")
	if err != nil {
		return term{}, err
	}
	fn, ok := functions[strings.ToLower(name.text)]
	if !ok {
		return term{}, syntaxError(name.pos, "unknown function %s", name)
	}
	op := fn.op
	if negate {
		if fn.negated == "" {
			return term{}, syntaxError(name.pos, "not cannot be applied to %s", name)
		}
		op = fn.negated
	}

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return term{}, err
	}
	prop, err := p.expect(tokIdent, "property name")
	if err != nil {
		return term{}, err
	}

	var value ir.IRValue
	if fn.arity == 2 {
		if _, err := p.expect(tokComma, "','"); err != nil {
			return term{}, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return term{}, err
		}
		if ir.IsNull(lit) {
			return term{}, syntaxError(name.pos, "%s needs a non-null argument", name)
		}
		value = lit
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return term{}, err
	}

	pred := queryir.Where(prop.text, op, value)
	return term{pred: &pred}, nil
}

func (p *parser) parseComparison() (term, error) {
	prop := p.next()
	opTok := p.next()
	op, ok := comparisons[strings.ToLower(opTok.text)]
	if opTok.kind != tokIdent || !ok {
		return term{}, syntaxError(opTok.pos, "expected comparison operator after %s, found %s", prop, opTok)
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return term{}, err
	}

	if ir.IsNull(lit) {
		switch op {
		case queryir.OpEqualTo:
			op, lit = queryir.OpIsNull, nil
		case queryir.OpNotEqualTo:
			op, lit = queryir.OpIsNotNull, nil
		default:
			return term{}, syntaxError(opTok.pos, "%s cannot compare with null", opTok)
		}
	}

	pred := queryir.Where(prop.text, op, lit)
	return term{pred: &pred}, nil
}

func (p *parser) parseLiteral() (ir.IRValue, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return ir.IRString(tok.text), nil
	case tokNumber:
		if strings.Contains(tok.text, ".") {
			return ir.IRString(tok.text), nil
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, syntaxError(tok.pos, "integer %s out of range", tok)
		}
		return ir.IRInt(n), nil
	case tokIdent:
		switch {
		case tok.keyword("true"):
			return ir.IRBool(true), nil
		case tok.keyword("false"):
			return ir.IRBool(false), nil
		case tok.keyword("null"):
			return ir.IRNull{}, nil
		}
	}
	return nil, syntaxError(tok.pos, "expected literal, found %s", tok)
}
