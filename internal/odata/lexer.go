package odata

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/sieve/internal/queryir"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// keyword reports whether t is the identifier kw, ignoring case.
func (t token) keyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "'" + t.text + "'"
	}
	return t.text
}

// lex splits a $filter expression into tokens. String literals use single
// quotes; a doubled quote inside a literal is one quote. Token positions are
// byte offsets into src.
func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		pos := i
		switch {
		case r == utf8.RuneError && size == 1:
			return nil, syntaxError(pos, "invalid UTF-8 byte %#x", src[i])
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: pos})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: pos})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: pos})
			i++
		case r == '\'':
			var sb strings.Builder
			i++
			closed := false
			for i < len(src) {
				if src[i] == '\'' {
					if i+1 < len(src) && src[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteByte(src[i])
				i++
			}
			if !closed {
				return nil, syntaxError(pos, "unterminated string literal")
			}
			toks = append(toks, token{kind: tokString, text: sb.String(), pos: pos})
		case r == '-' || unicode.IsDigit(r):
			i += size
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !unicode.IsDigit(r) && r != '.' {
					break
				}
				i += size
			}
			text := src[pos:i]
			if text == "-" || strings.Count(text, ".") > 1 || strings.HasSuffix(text, ".") {
				return nil, syntaxError(pos, "malformed number %q", text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, pos: pos})
		case isIdentStart(r):
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[pos:i], pos: pos})
		default:
			return nil, syntaxError(pos, "unexpected character %q", r)
		}
	}

	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '.'
}

func syntaxError(pos int, format string, args ...any) error {
	args = append(args, pos)
	return queryir.NewInvalidArgumentError("$filter: "+format+" at offset %d", args...)
}
