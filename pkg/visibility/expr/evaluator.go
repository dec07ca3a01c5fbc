// Package expr implements visibility.Evaluator with a tiny expression
// language:
//
//	department_id == "dept-1"
//	type != "setup" && !extra15
//	type in ("setup", "teardown") || (slots == 1)
//
// Identifiers are dot paths into the context values. Literals are quoted
// strings, numbers, true, false and null. Rules are compiled once and
// cached.
package expr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

// Evaluator compiles and caches rules.
type Evaluator struct {
	cache sync.Map // rule string -> node
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// New returns an Evaluator with an empty cache.
func New() *Evaluator { return &Evaluator{} }

// Eval implements visibility.Evaluator.
func (e *Evaluator) Eval(rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	n, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	v, err := n.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// Compile parses rule without evaluating it, reporting syntax errors early.
func (e *Evaluator) Compile(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(node), nil
	}
	toks, err := lex(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("expr: unexpected %q in %q", p.peek().text, rule)
	}
	e.cache.Store(rule, n)
	return n, nil
}

type kind int

const (
	kIdent kind = iota
	kString
	kNumber
	kTrue
	kFalse
	kNull
	kEq
	kNeq
	kAnd
	kOr
	kNot
	kIn
	kLParen
	kRParen
	kComma
)

type tok struct {
	kind kind
	text string
}

func lex(src string) ([]tok, error) {
	var out []tok
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, tok{kLParen, "("})
			i++
		case c == ')':
			out = append(out, tok{kRParen, ")"})
			i++
		case c == ',':
			out = append(out, tok{kComma, ","})
			i++
		case strings.HasPrefix(src[i:], "=="):
			out = append(out, tok{kEq, "=="})
			i += 2
		case strings.HasPrefix(src[i:], "!="):
			out = append(out, tok{kNeq, "!="})
			i += 2
		case strings.HasPrefix(src[i:], "&&"):
			out = append(out, tok{kAnd, "&&"})
			i += 2
		case strings.HasPrefix(src[i:], "||"):
			out = append(out, tok{kOr, "||"})
			i += 2
		case c == '!':
			out = append(out, tok{kNot, "!"})
			i++
		case c == '"' || c == '\'':
			end := i + 1
			for end < len(src) && src[end] != c {
				if src[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(src) {
				return nil, fmt.Errorf("expr: unterminated string in %q", src)
			}
			body := src[i+1 : end]
			if c == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			text, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("expr: bad string literal %s: %w", src[i:end+1], err)
			}
			out = append(out, tok{kString, text})
			i = end + 1
		case isWordByte(c) || c == '-' || c == '+':
			start := i
			i++
			for i < len(src) && isWordByte(src[i]) {
				i++
			}
			word := src[start:i]
			out = append(out, classifyWord(word))
		default:
			return nil, fmt.Errorf("expr: unexpected character %q in %q", c, src)
		}
	}
	return out, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func classifyWord(word string) tok {
	switch strings.ToLower(word) {
	case "true":
		return tok{kTrue, word}
	case "false":
		return tok{kFalse, word}
	case "null", "nil":
		return tok{kNull, word}
	case "in":
		return tok{kIn, word}
	}
	if c := word[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' {
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			return tok{kNumber, word}
		}
	}
	return tok{kIdent, word}
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() tok {
	if p.done() {
		return tok{kind: -1, text: "end of rule"}
	}
	return p.toks[p.pos]
}

func (p *parser) accept(k kind) bool {
	if !p.done() && p.toks[p.pos].kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(kOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(kAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.accept(kNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	switch {
	case p.accept(kEq):
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return eqNode{left, right, false}, nil
	case p.accept(kNeq):
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return eqNode{left, right, true}, nil
	case p.accept(kIn):
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return inNode{left, list}, nil
	}
	return left, nil
}

func (p *parser) parseList() ([]node, error) {
	if !p.accept(kLParen) {
		return nil, fmt.Errorf("expr: expected '(' after in, got %q", p.peek().text)
	}
	var items []node
	for !p.accept(kRParen) {
		if len(items) > 0 && !p.accept(kComma) {
			return nil, fmt.Errorf("expr: expected ',' or ')', got %q", p.peek().text)
		}
		item, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *parser) parseOperand() (node, error) {
	if p.accept(kLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(kRParen) {
			return nil, fmt.Errorf("expr: missing ')' before %q", p.peek().text)
		}
		return inner, nil
	}
	if p.done() {
		return nil, fmt.Errorf("expr: unexpected end of rule")
	}
	t := p.toks[p.pos]
	p.pos++
	switch t.kind {
	case kIdent:
		return identNode(t.text), nil
	case kString:
		return literalNode{t.text}, nil
	case kNumber:
		f, _ := strconv.ParseFloat(t.text, 64)
		return literalNode{f}, nil
	case kTrue:
		return literalNode{true}, nil
	case kFalse:
		return literalNode{false}, nil
	case kNull:
		return literalNode{nil}, nil
	default:
		return nil, fmt.Errorf("expr: unexpected %q", t.text)
	}
}
