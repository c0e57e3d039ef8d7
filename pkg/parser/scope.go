package parser

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// SequenceReader reads the children of a function or a group.
type SequenceReader func(scope *Scope) (*ast.List, error)

type scopes struct {
	atrulePrelude *Scope
	selector      *Scope
	value         *Scope
}

func newScopes() scopes {
	return scopes{
		atrulePrelude: &Scope{GetNode: defaultNode},
		selector:      &Scope{GetNode: selectorNode, OnWhiteSpace: selectorWhiteSpace},
		value: &Scope{
			GetNode:      defaultNode,
			OnWhiteSpace: valueWhiteSpace,
			Functions: map[string]func(p *Parser, scope *Scope) (*ast.List, error){
				"expression": expressionArguments,
				"var":        varArguments,
			},
		},
	}
}

// AtrulePreludeScope returns the scope used for generic at-rule preludes.
func (p *Parser) AtrulePreludeScope() *Scope { return p.scopes.atrulePrelude }

// SelectorScope returns the scope used for compound selectors.
func (p *Parser) SelectorScope() *Scope { return p.scopes.selector }

// ValueScope returns the scope used for declaration values.
func (p *Parser) ValueScope() *Scope { return p.scopes.value }

//nolint:cyclop // token type dispatch.
func defaultNode(p *Parser, scope *Scope) (ast.Node, error) {
	switch p.TokenType {
	case tokenizer.Hash:
		return wrap(p.Hash())
	case tokenizer.Comma:
		return wrap(p.Operator())
	case tokenizer.LeftParenthesis:
		return wrap(p.Parentheses(p.ReadSequence, scope))
	case tokenizer.LeftSquareBracket:
		return wrap(p.Brackets(p.ReadSequence, scope))
	case tokenizer.String:
		return wrap(p.String())
	case tokenizer.Dimension:
		return wrap(p.Dimension())
	case tokenizer.Percentage:
		return wrap(p.Percentage())
	case tokenizer.Number:
		return wrap(p.Number())
	case tokenizer.Function:
		if p.CmpStr(p.TokenStart, p.TokenEnd, "url(") {
			return wrap(p.URL())
		}

		return wrap(p.Function(p.ReadSequence, scope))
	case tokenizer.Url:
		return wrap(p.URL())
	case tokenizer.Ident:
		if p.CmpChar(p.TokenStart, charLowercaseU) && p.CmpChar(p.TokenStart+1, charPlusSign) {
			return wrap(p.UnicodeRange())
		}

		return wrap(p.Identifier())
	case tokenizer.Delim:
		switch p.CharCodeAt(p.TokenStart) {
		case charSolidus, charAsterisk, charPlusSign, charHyphenMinus:
			return wrap(p.Operator())
		case charNumberSign:
			return nil, p.Error("Hex or identifier is expected", p.TokenStart+1)
		}
	}

	return nil, nil //nolint:nilnil // nil node ends the sequence.
}

//nolint:cyclop // token type dispatch.
func selectorNode(p *Parser, _ *Scope) (ast.Node, error) {
	switch p.TokenType {
	case tokenizer.LeftSquareBracket:
		return wrap(p.AttributeSelector())
	case tokenizer.Hash:
		return wrap(p.IDSelector())
	case tokenizer.Colon:
		if p.LookupType(1) == tokenizer.Colon {
			return wrap(p.PseudoElementSelector())
		}

		return wrap(p.PseudoClassSelector())
	case tokenizer.Ident:
		return wrap(p.TypeSelector())
	case tokenizer.Number, tokenizer.Percentage:
		return wrap(p.Percentage())
	case tokenizer.Dimension:
		if p.CharCodeAt(p.TokenStart) == charFullStop {
			return nil, p.Error("Identifier is expected", p.TokenStart+1)
		}
	case tokenizer.Delim:
		switch p.CharCodeAt(p.TokenStart) {
		case charPlusSign, charGreaterThanSign, charTilde, charSolidus:
			return wrap(p.Combinator())
		case charFullStop:
			return wrap(p.ClassSelector())
		case charAsterisk, charVerticalLine:
			return wrap(p.TypeSelector())
		case charNumberSign:
			return wrap(p.IDSelector())
		case charAmpersand:
			return wrap(p.NestingSelector())
		}
	}

	return nil, nil //nolint:nilnil // nil node ends the sequence.
}

// selectorWhiteSpace turns whitespace between two compound selectors into a
// descendant combinator.
func selectorWhiteSpace(_ *Parser, next ast.Node, children *ast.List) {
	last, ok := children.Last()
	if !ok || last.Kind() == ast.KindCombinator || next == nil || next.Kind() == ast.KindCombinator {
		return
	}

	children.Push(&ast.Combinator{Name: " "})
}

func isSignedOperator(node ast.Node) (*ast.Operator, bool) {
	operator, ok := node.(*ast.Operator)
	if !ok || operator.Value == "" {
		return nil, false
	}

	return operator, strings.HasSuffix(operator.Value, "-") || strings.HasSuffix(operator.Value, "+")
}

// valueWhiteSpace keeps the whitespace around + and - operators, which is
// significant inside calc().
func valueWhiteSpace(_ *Parser, next ast.Node, children *ast.List) {
	if operator, ok := isSignedOperator(next); ok {
		operator.Value = " " + operator.Value
	}

	last, _ := children.Last()
	if operator, ok := isSignedOperator(last); ok {
		operator.Value += " "
	}
}

func expressionArguments(p *Parser, _ *Scope) (*ast.List, error) {
	return ast.NewList(p.Raw(p.TokenIndex, nil, false)), nil
}

func varArguments(p *Parser, _ *Scope) (*ast.List, error) {
	children := ast.NewList()

	p.SkipSC()

	name, err := p.Identifier()
	if err != nil {
		return nil, err
	}

	children.Push(name)
	p.SkipSC()

	if p.TokenType != tokenizer.Comma {
		return children, nil
	}

	operator, err := p.Operator()
	if err != nil {
		return nil, err
	}

	children.Push(operator)

	startIdx := p.TokenIndex

	var fallback ast.Node

	if p.opts.parseCustomProperty {
		value, valueErr := p.Value()
		if valueErr != nil {
			return nil, valueErr
		}

		p.keepEmptyValueWhiteSpace(value, startIdx)
		fallback = value
	} else {
		fallback = p.Raw(p.TokenIndex, stopAtExclamationMarkOrSemicolon, false)
	}

	children.Push(fallback)

	return children, nil
}

// keepEmptyValueWhiteSpace records that an otherwise empty custom property
// value consisted of whitespace.
func (p *Parser) keepEmptyValueWhiteSpace(value *ast.Value, startIdx int) {
	if !value.Children.IsEmpty() {
		return
	}

	for offset := startIdx - p.TokenIndex; offset <= 0; offset++ {
		if p.LookupType(offset) == tokenizer.WhiteSpace {
			value.Children.Push(ast.NewWhiteSpace())

			return
		}
	}
}
