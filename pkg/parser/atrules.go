package parser

import (
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

func defaultAtrules() map[string]AtrulePlugin {
	return map[string]AtrulePlugin{
		"font-face": {Block: declarationBlock},
		"import":    {Prelude: importPrelude},
		"media":     {Prelude: mediaPrelude, Block: nestedBlock},
		"nest":      {Prelude: selectorListPrelude, Block: declarationBlock},
		"page":      {Prelude: selectorListPrelude, Block: declarationBlock},
		"supports":  {Prelude: supportsPrelude, Block: nestedBlock},
	}
}

func declarationBlock(p *Parser, _ bool) (*ast.Block, error) {
	return p.Block(true)
}

// nestedBlock holds declarations when the at-rule sits inside a style
// block and rules otherwise.
func nestedBlock(p *Parser, nested bool) (*ast.Block, error) {
	return p.Block(nested)
}

func single[T ast.Node](node T, err error) (*ast.List, error) {
	if err != nil {
		return nil, err
	}

	return ast.NewList(node), nil
}

func importPrelude(p *Parser) (*ast.List, error) {
	children := ast.NewList()

	p.SkipSC()

	var (
		node ast.Node
		err  error
	)

	switch p.TokenType {
	case tokenizer.String:
		node, err = wrap(p.String())
	case tokenizer.Url, tokenizer.Function:
		node, err = wrap(p.URL())
	default:
		return nil, p.Error("String or url() is expected", noOffset)
	}

	if err != nil {
		return nil, err
	}

	children.Push(node)

	if next := p.LookupNonWSType(0); next == tokenizer.Ident || next == tokenizer.LeftParenthesis {
		media, err := p.MediaQueryList()
		if err != nil {
			return nil, err
		}

		children.Push(media)
	}

	return children, nil
}

func mediaPrelude(p *Parser) (*ast.List, error) {
	return single(p.MediaQueryList())
}

func selectorListPrelude(p *Parser) (*ast.List, error) {
	return single(p.SelectorList())
}

func supportsPrelude(p *Parser) (*ast.List, error) {
	children, err := p.supportsCondition()
	if err != nil {
		return nil, err
	}

	if children.IsEmpty() {
		return nil, p.Error("Condition is expected", noOffset)
	}

	return children, nil
}

// supportsCondition reads a @supports condition: keywords, functions such
// as selector() kept Raw, and parenthesized declarations or nested
// conditions.
func (p *Parser) supportsCondition() (*ast.List, error) {
	children := ast.NewList()
	scope := p.scopes.atrulePrelude

	p.SkipSC()

loop:
	for !p.EOF {
		var (
			node ast.Node
			err  error
		)

		switch p.TokenType {
		case tokenizer.Comment, tokenizer.WhiteSpace:
			p.Next()

			continue
		case tokenizer.Function:
			node, err = wrap(p.Function(p.rawArguments, scope))
		case tokenizer.Ident:
			node, err = wrap(p.Identifier())
		case tokenizer.LeftParenthesis:
			node, err = wrap(p.Parentheses(p.supportsInParens, scope))
		default:
			break loop
		}

		if err != nil {
			return nil, err
		}

		children.Push(node)
	}

	return children, nil
}

func (p *Parser) rawArguments(*Scope) (*ast.List, error) {
	return ast.NewList(p.Raw(p.TokenIndex, nil, false)), nil
}

func (p *Parser) supportsInParens(*Scope) (*ast.List, error) {
	p.SkipSC()

	if p.TokenType == tokenizer.Ident && p.LookupNonWSType(1) == tokenizer.Colon {
		return single(p.Declaration())
	}

	return p.supportsCondition()
}
