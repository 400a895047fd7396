package formula

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

var errUnexpectedEnd = errors.New("unexpected end of expression")

// node is an element of a parsed formula.
type node interface {
	eval(c *evalContext) (any, error)
}

type numberNode struct{ value float64 }

type stringNode struct{ value string }

type boolNode struct{ value bool }

// emptyNode is an omitted function argument, e.g. the middle of IF(A1,,2).
type emptyNode struct{}

type refNode struct{ addr models.Address }

type rangeNode struct{ rect models.Rect }

// arrayNode is a braced literal such as {1,2;3,4}, flattened row by row.
type arrayNode struct{ items []node }

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

type callNode struct {
	name string
	args []node
}

// formulaParser builds an AST from tokens by recursive descent.
type formulaParser struct {
	tokens []token
	pos    int
}

// parse parses a formula body (text after "=") into an AST.
func parse(body string) (node, error) {
	tokens, err := tokenize(body)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errUnexpectedEnd
	}

	p := &formulaParser{tokens: tokens}
	n, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected token after expression: %q", p.tokens[p.pos].text)
	}
	return n, nil
}

func (p *formulaParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *formulaParser) peekInfix(ops ...string) (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.kind != tokInfix {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			return op, true
		}
	}
	return "", false
}

// parseComparison handles comparison operators (lowest precedence).
func (p *formulaParser) parseComparison() (node, error) {
	left, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekInfix("=", "<>", "<", "<=", ">", ">=")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *formulaParser) parseConcatenation() (node, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekInfix("&")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *formulaParser) parseAddition() (node, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekInfix("+", "-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *formulaParser) parseMultiplication() (node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekInfix("*", "/")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parsePower is right-associative: 2^3^2 = 2^(3^2).
func (p *formulaParser) parsePower() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peekInfix("^"); !ok {
		return left, nil
	}
	p.pos++
	right, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: "^", left: left, right: right}, nil
}

func (p *formulaParser) parseUnary() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, errUnexpectedEnd
	}
	if tok.kind == tokPrefix {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tok.text, operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *formulaParser) parsePostfix() (node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokPostfix {
			return n, nil
		}
		p.pos++
		n = &unaryNode{op: "%", operand: n}
	}
}

func (p *formulaParser) parsePrimary() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, errUnexpectedEnd
	}

	switch tok.kind {
	case tokNumber:
		p.pos++
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", tok.text)
		}
		return &numberNode{value: v}, nil

	case tokString, tokError:
		p.pos++
		return &stringNode{value: tok.text}, nil

	case tokBool:
		p.pos++
		return &boolNode{value: tok.text == "TRUE"}, nil

	case tokRef:
		p.pos++
		return parseReference(tok.text)

	case tokFuncStart:
		return p.parseFunctionCall()

	case tokOpen:
		p.pos++
		n, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if next, ok := p.peek(); !ok || next.kind != tokClose {
			return nil, errors.New("expected closing parenthesis")
		}
		p.pos++
		return n, nil
	}

	return nil, fmt.Errorf("unexpected token: %q", tok.text)
}

func (p *formulaParser) parseFunctionCall() (node, error) {
	name := p.tokens[p.pos].text
	p.pos++

	var args []node
	if tok, ok := p.peek(); ok && tok.kind == tokFuncStop {
		p.pos++
		return newCall(name, args), nil
	}

	for {
		tok, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unexpected end in %s arguments", name)
		}

		var arg node = emptyNode{}
		if tok.kind != tokArg && tok.kind != tokFuncStop {
			var err error
			arg, err = p.parseComparison()
			if err != nil {
				return nil, err
			}
		}
		args = append(args, arg)

		tok, ok = p.peek()
		if !ok {
			return nil, fmt.Errorf("unexpected end in %s arguments", name)
		}
		p.pos++
		switch tok.kind {
		case tokFuncStop:
			return newCall(name, args), nil
		case tokArg:
		default:
			return nil, fmt.Errorf("expected ',' or ')' in %s arguments", name)
		}
	}
}

// newCall turns efp's ARRAY/ARRAYROW pseudo-functions into array literals.
func newCall(name string, args []node) node {
	switch name {
	case "ARRAY", "ARRAYROW":
		return &arrayNode{items: args}
	}
	return &callNode{name: name, args: args}
}

func parseReference(text string) (node, error) {
	if strings.Contains(text, "!") {
		return nil, fmt.Errorf("sheet references are not supported: %s", text)
	}
	cleaned := strings.ReplaceAll(text, "$", "")
	if strings.Contains(cleaned, ":") {
		rect, err := parser.ParseRange(cleaned)
		if err != nil {
			return nil, err
		}
		return &rangeNode{rect: rect}, nil
	}
	addr, err := parser.ParseAddress(cleaned)
	if err != nil {
		return nil, err
	}
	return &refNode{addr: addr}, nil
}
