package parser

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/escape"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Value parses a declaration value.
func (p *Parser) Value() (*ast.Value, error) {
	start := p.TokenStart

	children, err := p.ReadSequence(p.scopes.value)
	if err != nil {
		return nil, err
	}

	return &ast.Value{Base: p.base(start, p.TokenStart), Children: children}, nil
}

// Identifier parses an ident token.
func (p *Parser) Identifier() (*ast.Identifier, error) {
	loc := p.Location(p.TokenStart, p.TokenEnd)

	name, err := p.Consume(tokenizer.Ident)
	if err != nil {
		return nil, err
	}

	return &ast.Identifier{Base: ast.Base{Loc: loc}, Name: name}, nil
}

// Number parses a number token.
func (p *Parser) Number() (*ast.Number, error) {
	loc := p.Location(p.TokenStart, p.TokenEnd)

	value, err := p.Consume(tokenizer.Number)
	if err != nil {
		return nil, err
	}

	return &ast.Number{Base: ast.Base{Loc: loc}, Value: value}, nil
}

// Dimension parses a dimension token into its number and unit.
func (p *Parser) Dimension() (*ast.Dimension, error) {
	start := p.TokenStart

	value, err := p.ConsumeNumber(tokenizer.Dimension)
	if err != nil {
		return nil, err
	}

	return &ast.Dimension{
		Base:  p.base(start, p.TokenStart),
		Value: value,
		Unit:  p.Substring(start+len(value), p.TokenStart),
	}, nil
}

// Percentage parses a percentage token; the value excludes "%".
func (p *Parser) Percentage() (*ast.Percentage, error) {
	loc := p.Location(p.TokenStart, p.TokenEnd)

	value, err := p.ConsumeNumber(tokenizer.Percentage)
	if err != nil {
		return nil, err
	}

	return &ast.Percentage{Base: ast.Base{Loc: loc}, Value: value}, nil
}

// String parses a string token and decodes its escapes.
func (p *Parser) String() (*ast.String, error) {
	loc := p.Location(p.TokenStart, p.TokenEnd)

	str, err := p.Consume(tokenizer.String)
	if err != nil {
		return nil, err
	}

	return &ast.String{Base: ast.Base{Loc: loc}, Value: escape.DecodeString(str)}, nil
}

// URL parses url(...) in either its unquoted token form or the function
// form with a quoted argument.
func (p *Parser) URL() (*ast.Url, error) {
	start := p.TokenStart

	var value string

	switch p.TokenType {
	case tokenizer.Url:
		raw, err := p.Consume(tokenizer.Url)
		if err != nil {
			return nil, err
		}

		value = escape.DecodeURL(raw)
	case tokenizer.Function:
		if !p.CmpStr(p.TokenStart, p.TokenEnd, "url(") {
			return nil, p.Error("Function name must be `url`", noOffset)
		}

		p.Next()
		p.SkipSC()

		str, err := p.Consume(tokenizer.String)
		if err != nil {
			return nil, err
		}

		value = escape.DecodeString(str)

		p.SkipSC()

		if !p.EOF {
			err = p.Eat(tokenizer.RightParenthesis)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, p.Error("Url or Function is expected", noOffset)
	}

	return &ast.Url{Base: p.base(start, p.TokenStart), Value: value}, nil
}

// Hash parses a hash token such as a color.
func (p *Parser) Hash() (*ast.Hash, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.Hash)
	if err != nil {
		return nil, err
	}

	return &ast.Hash{Base: p.base(start, p.TokenStart), Value: p.SubstrToCursor(start + 1)}, nil
}

// Function parses a function call. Arguments of functions named in
// scope.Functions are parsed by that handler, the rest by read.
func (p *Parser) Function(read SequenceReader, scope *Scope) (*ast.Function, error) {
	start := p.TokenStart

	name, err := p.ConsumeFunctionName()
	if err != nil {
		return nil, err
	}

	var children *ast.List

	if handler, ok := scope.Functions[strings.ToLower(name)]; ok {
		children, err = handler(p, scope)
	} else {
		children, err = read(scope)
	}

	if err != nil {
		return nil, err
	}

	if !p.EOF {
		err = p.Eat(tokenizer.RightParenthesis)
		if err != nil {
			return nil, err
		}
	}

	return &ast.Function{Base: p.base(start, p.TokenStart), Name: name, Children: children}, nil
}

func (p *Parser) group(open, closer tokenizer.TokenType, read SequenceReader, scope *Scope) (ast.Base, *ast.List, error) {
	start := p.TokenStart

	err := p.Eat(open)
	if err != nil {
		return ast.Base{}, nil, err
	}

	children, err := read(scope)
	if err != nil {
		return ast.Base{}, nil, err
	}

	if !p.EOF {
		err = p.Eat(closer)
		if err != nil {
			return ast.Base{}, nil, err
		}
	}

	return p.base(start, p.TokenStart), children, nil
}

// Parentheses parses a parenthesized group.
func (p *Parser) Parentheses(read SequenceReader, scope *Scope) (*ast.Parentheses, error) {
	base, children, err := p.group(tokenizer.LeftParenthesis, tokenizer.RightParenthesis, read, scope)
	if err != nil {
		return nil, err
	}

	return &ast.Parentheses{Base: base, Children: children}, nil
}

// Brackets parses a square bracketed group.
func (p *Parser) Brackets(read SequenceReader, scope *Scope) (*ast.Brackets, error) {
	base, children, err := p.group(tokenizer.LeftSquareBracket, tokenizer.RightSquareBracket, read, scope)
	if err != nil {
		return nil, err
	}

	return &ast.Brackets{Base: base, Children: children}, nil
}

// Operator consumes the current token as an operator.
func (p *Parser) Operator() (*ast.Operator, error) {
	start := p.TokenStart

	p.Next()

	return &ast.Operator{Base: p.base(start, p.TokenStart), Value: p.SubstrToCursor(start)}, nil
}

// WhiteSpace consumes a whitespace token. The node carries no location.
func (p *Parser) WhiteSpace() (*ast.WhiteSpace, error) {
	err := p.Eat(tokenizer.WhiteSpace)
	if err != nil {
		return nil, err
	}

	return ast.NewWhiteSpace(), nil
}
