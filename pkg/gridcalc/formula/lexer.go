package formula

import (
	"fmt"
	"strings"

	"github.com/xuri/efp"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokBool
	tokError
	tokRef
	tokFuncStart
	tokFuncStop
	tokOpen
	tokClose
	tokArg
	tokPrefix
	tokInfix
	tokPostfix
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a formula body (without the leading "=") into parser tokens.
func tokenize(body string) ([]token, error) {
	ps := efp.ExcelParser()
	raw := ps.Parse("=" + body)

	// efp reports the leading "=" as an infix operator.
	if len(raw) > 0 && raw[0].TType == efp.TokenTypeOperatorInfix && raw[0].TValue == "=" {
		raw = raw[1:]
	}

	tokens := make([]token, 0, len(raw))
	for _, t := range raw {
		switch t.TType {
		case efp.TokenTypeOperand:
			tok, err := operandToken(t)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case efp.TokenTypeFunction:
			if t.TSubType == efp.TokenSubTypeStart {
				tokens = append(tokens, token{kind: tokFuncStart, text: strings.ToUpper(t.TValue)})
			} else {
				tokens = append(tokens, token{kind: tokFuncStop})
			}
		case efp.TokenTypeSubexpression:
			if t.TSubType == efp.TokenSubTypeStart {
				tokens = append(tokens, token{kind: tokOpen})
			} else {
				tokens = append(tokens, token{kind: tokClose})
			}
		case efp.TokenTypeArgument:
			tokens = append(tokens, token{kind: tokArg})
		case efp.TokenTypeOperatorPrefix:
			tokens = append(tokens, token{kind: tokPrefix, text: t.TValue})
		case efp.TokenTypeOperatorPostfix:
			tokens = append(tokens, token{kind: tokPostfix, text: t.TValue})
		case efp.TokenTypeOperatorInfix:
			switch t.TSubType {
			case efp.TokenSubTypeMath, efp.TokenSubTypeLogical, efp.TokenSubTypeConcatenation:
				tokens = append(tokens, token{kind: tokInfix, text: t.TValue})
			default:
				return nil, fmt.Errorf("unsupported operator %q (%s)", t.TValue, t.TSubType)
			}
		default:
			return nil, fmt.Errorf("unexpected token %q (%s)", t.TValue, t.TType)
		}
	}
	return tokens, nil
}

func operandToken(t efp.Token) (token, error) {
	switch t.TSubType {
	case efp.TokenSubTypeNumber:
		return token{kind: tokNumber, text: t.TValue}, nil
	case efp.TokenSubTypeText:
		return token{kind: tokString, text: t.TValue}, nil
	case efp.TokenSubTypeLogical:
		return token{kind: tokBool, text: strings.ToUpper(t.TValue)}, nil
	case efp.TokenSubTypeError:
		return token{kind: tokError, text: t.TValue}, nil
	case efp.TokenSubTypeRange:
		// efp only recognizes upper-case booleans.
		if upper := strings.ToUpper(t.TValue); upper == "TRUE" || upper == "FALSE" {
			return token{kind: tokBool, text: upper}, nil
		}
		return token{kind: tokRef, text: t.TValue}, nil
	}
	return token{}, fmt.Errorf("unexpected operand %q", t.TValue)
}
