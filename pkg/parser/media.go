package parser

import (
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// MediaQueryList parses a comma separated list of media queries.
func (p *Parser) MediaQueryList() (*ast.MediaQueryList, error) {
	children := ast.NewList()

	p.SkipSC()

	for !p.EOF {
		query, err := p.MediaQuery()
		if err != nil {
			return nil, err
		}

		children.Push(query)

		if p.TokenType != tokenizer.Comma {
			break
		}

		p.Next()
	}

	return &ast.MediaQueryList{Base: p.listBase(children), Children: children}, nil
}

// MediaQuery parses a sequence of identifiers and media features such as
// "screen and (min-width: 100px)".
func (p *Parser) MediaQuery() (*ast.MediaQuery, error) {
	children := ast.NewList()

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
		case tokenizer.Ident:
			node, err = wrap(p.Identifier())
		case tokenizer.LeftParenthesis:
			node, err = wrap(p.MediaFeature())
		default:
			break loop
		}

		if err != nil {
			return nil, err
		}

		children.Push(node)
	}

	if children.IsEmpty() {
		return nil, p.Error("Identifier or parenthesis is expected", noOffset)
	}

	return &ast.MediaQuery{Base: p.listBase(children), Children: children}, nil
}

// MediaFeature parses "(name)" or "(name: value)".
func (p *Parser) MediaFeature() (*ast.MediaFeature, error) {
	start := p.TokenStart
	node := &ast.MediaFeature{}

	err := p.Eat(tokenizer.LeftParenthesis)
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	node.Name, err = p.Consume(tokenizer.Ident)
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	if p.TokenType != tokenizer.RightParenthesis {
		err = p.Eat(tokenizer.Colon)
		if err != nil {
			return nil, err
		}

		p.SkipSC()

		switch p.TokenType {
		case tokenizer.Number:
			if p.LookupNonWSType(1) == tokenizer.Delim {
				node.Value, err = wrap(p.Ratio())
			} else {
				node.Value, err = wrap(p.Number())
			}
		case tokenizer.Dimension:
			node.Value, err = wrap(p.Dimension())
		case tokenizer.Ident:
			node.Value, err = wrap(p.Identifier())
		default:
			return nil, p.Error("Number, dimension, ratio or identifier is expected", noOffset)
		}

		if err != nil {
			return nil, err
		}

		p.SkipSC()
	}

	err = p.Eat(tokenizer.RightParenthesis)
	if err != nil {
		return nil, err
	}

	node.Loc = p.Location(start, p.TokenStart)

	return node, nil
}
