package expr

import (
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokKeyword // and, or, not, in (lowercased)
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

var keywords = map[string]bool{"and": true, "or": true, "not": true, "in": true}

// twoCharOps must be tried before single characters
var twoCharOps = []string{"**", "<=", ">=", "==", "!=", "&&", "||"}

const singleCharOps = "+-*/%<>!"

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lex splits src into tokens, rejecting any character that has no place
// in the grammar
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '.' {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			if i < len(src) && isLetter(src[i]) {
				return nil, syntaxErrorf(i, "invalid number literal %q", src[start:i+1])
			}
			f, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, syntaxErrorf(start, "invalid number literal %q", src[start:i])
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[start:i], num: f, pos: start})

		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			word := src[start:i]
			if strings.Contains(word, "__") {
				return nil, syntaxErrorf(start, "name %q is not allowed", word)
			}
			if lower := strings.ToLower(word); keywords[lower] {
				tokens = append(tokens, token{kind: tokKeyword, text: lower, pos: start})
			} else {
				tokens = append(tokens, token{kind: tokIdent, text: word, pos: start})
			}

		case c == '"' || c == '\'':
			s, n, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: s, pos: i})
			i += n

		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		default:
			op := ""
			for _, candidate := range twoCharOps {
				if strings.HasPrefix(src[i:], candidate) {
					op = candidate
					break
				}
			}
			if op == "" && strings.IndexByte(singleCharOps, c) >= 0 {
				op = string(c)
			}
			if op == "" {
				switch c {
				case '=':
					return nil, syntaxErrorf(i, "assignment is not allowed")
				case '.':
					return nil, syntaxErrorf(i, "attribute access is not allowed")
				case '[', ']':
					return nil, syntaxErrorf(i, "indexing is not allowed")
				default:
					return nil, syntaxErrorf(i, "unexpected character %q", c)
				}
			}
			tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

// lexString reads a quoted literal starting at src[start], returning the
// unescaped text and the number of bytes consumed
func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == quote:
			return b.String(), i - start + 1, nil
		case c == '\\' && i+1 < len(src):
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		case c == '\n':
			return "", 0, syntaxErrorf(start, "unterminated string")
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", 0, syntaxErrorf(start, "unterminated string")
}
