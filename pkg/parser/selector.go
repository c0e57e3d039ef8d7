package parser

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// SelectorList parses a comma separated list of selectors.
func (p *Parser) SelectorList() (*ast.SelectorList, error) {
	children := ast.NewList()

	for !p.EOF {
		selector, err := p.Selector()
		if err != nil {
			return nil, err
		}

		children.Push(selector)

		if p.TokenType != tokenizer.Comma {
			break
		}

		p.Next()
	}

	return &ast.SelectorList{Base: p.listBase(children), Children: children}, nil
}

// Selector parses a complex selector.
func (p *Parser) Selector() (*ast.Selector, error) {
	children, err := p.ReadSequence(p.scopes.selector)
	if err != nil {
		return nil, err
	}

	if children.IsEmpty() {
		return nil, p.Error("Selector is expected", noOffset)
	}

	return &ast.Selector{Base: p.listBase(children), Children: children}, nil
}

func (p *Parser) typeSelectorName() error {
	if p.TokenType != tokenizer.Ident && !p.IsDelim(charAsterisk) {
		return p.Error("Identifier or asterisk is expected", noOffset)
	}

	p.Next()

	return nil
}

// TypeSelector parses an element or universal selector with an optional
// namespace prefix, e.g. "svg|a" or "*|*".
func (p *Parser) TypeSelector() (*ast.TypeSelector, error) {
	start := p.TokenStart

	if p.IsDelim(charVerticalLine) {
		p.Next()

		err := p.typeSelectorName()
		if err != nil {
			return nil, err
		}
	} else {
		err := p.typeSelectorName()
		if err != nil {
			return nil, err
		}

		if p.IsDelim(charVerticalLine) {
			p.Next()

			err = p.typeSelectorName()
			if err != nil {
				return nil, err
			}
		}
	}

	return &ast.TypeSelector{Base: p.base(start, p.TokenStart), Name: p.SubstrToCursor(start)}, nil
}

// ClassSelector parses ".name".
func (p *Parser) ClassSelector() (*ast.ClassSelector, error) {
	err := p.EatDelim(charFullStop)
	if err != nil {
		return nil, err
	}

	loc := p.Location(p.TokenStart-1, p.TokenEnd)

	name, err := p.Consume(tokenizer.Ident)
	if err != nil {
		return nil, err
	}

	return &ast.ClassSelector{Base: ast.Base{Loc: loc}, Name: name}, nil
}

// IDSelector parses "#name".
func (p *Parser) IDSelector() (*ast.IdSelector, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.Hash)
	if err != nil {
		return nil, err
	}

	return &ast.IdSelector{Base: p.base(start, p.TokenStart), Name: p.SubstrToCursor(start + 1)}, nil
}

func (p *Parser) attributeName() (*ast.Identifier, error) {
	if p.EOF {
		return nil, p.Error("Unexpected end of input", noOffset)
	}

	start := p.TokenStart
	expectIdentifier := false

	if p.IsDelim(charAsterisk) {
		expectIdentifier = true

		p.Next()
	} else if !p.IsDelim(charVerticalLine) {
		err := p.Eat(tokenizer.Ident)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case p.IsDelim(charVerticalLine):
		if p.CharCodeAt(p.TokenStart+1) != charEqualsSign {
			p.Next()

			err := p.Eat(tokenizer.Ident)
			if err != nil {
				return nil, err
			}
		} else if expectIdentifier {
			return nil, p.Error("Identifier is expected", p.TokenEnd)
		}
	case expectIdentifier:
		return nil, p.Error("Vertical line is expected", noOffset)
	}

	return &ast.Identifier{Base: p.base(start, p.TokenStart), Name: p.SubstrToCursor(start)}, nil
}

func (p *Parser) attributeMatcher() (string, error) {
	start := p.TokenStart

	code := p.CharCodeAt(start)
	switch code {
	case charEqualsSign, charTilde, charCircumflex, charDollarSign, charAsterisk, charVerticalLine:
	default:
		return "", p.Error("Attribute selector (=, ~=, ^=, $=, *=, |=) is expected", noOffset)
	}

	p.Next()

	if code != charEqualsSign {
		if !p.IsDelim(charEqualsSign) {
			return "", p.Error("Equal sign is expected", noOffset)
		}

		p.Next()
	}

	return p.SubstrToCursor(start), nil
}

// AttributeSelector parses "[name op value flags]".
//
//nolint:cyclop // attribute selector grammar.
func (p *Parser) AttributeSelector() (*ast.AttributeSelector, error) {
	start := p.TokenStart
	node := &ast.AttributeSelector{}

	err := p.Eat(tokenizer.LeftSquareBracket)
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	node.Name, err = p.attributeName()
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	if p.TokenType != tokenizer.RightSquareBracket {
		if p.TokenType != tokenizer.Ident {
			node.Matcher, err = p.attributeMatcher()
			if err != nil {
				return nil, err
			}

			p.SkipSC()

			if p.TokenType == tokenizer.String {
				node.Value, err = wrap(p.String())
			} else {
				node.Value, err = wrap(p.Identifier())
			}

			if err != nil {
				return nil, err
			}

			p.SkipSC()
		}

		if p.TokenType == tokenizer.Ident {
			node.Flags, err = p.Consume(tokenizer.Ident)
			if err != nil {
				return nil, err
			}

			p.SkipSC()
		}
	}

	err = p.Eat(tokenizer.RightSquareBracket)
	if err != nil {
		return nil, err
	}

	node.Loc = p.Location(start, p.TokenStart)

	return node, nil
}

// pseudoArguments parses the arguments of a functional pseudo selector with
// its plugin, or keeps them Raw.
func (p *Parser) pseudoArguments(name string) (*ast.List, error) {
	plugin, ok := p.config.Pseudos[strings.ToLower(name)]
	if !ok {
		return ast.NewList(p.Raw(p.TokenIndex, nil, false)), nil
	}

	p.SkipSC()

	children, err := plugin(p)
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	return children, nil
}

func (p *Parser) pseudoNameAndArguments() (string, *ast.List, error) {
	if p.TokenType != tokenizer.Function {
		name, err := p.Consume(tokenizer.Ident)

		return name, nil, err
	}

	name, err := p.ConsumeFunctionName()
	if err != nil {
		return "", nil, err
	}

	children, err := p.pseudoArguments(name)
	if err != nil {
		return "", nil, err
	}

	err = p.Eat(tokenizer.RightParenthesis)
	if err != nil {
		return "", nil, err
	}

	return name, children, nil
}

// PseudoClassSelector parses ":name" or ":name(...)".
func (p *Parser) PseudoClassSelector() (*ast.PseudoClassSelector, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.Colon)
	if err != nil {
		return nil, err
	}

	name, children, err := p.pseudoNameAndArguments()
	if err != nil {
		return nil, err
	}

	return &ast.PseudoClassSelector{Base: p.base(start, p.TokenStart), Name: name, Children: children}, nil
}

// PseudoElementSelector parses "::name" or "::name(...)".
func (p *Parser) PseudoElementSelector() (*ast.PseudoElementSelector, error) {
	start := p.TokenStart

	for range 2 {
		err := p.Eat(tokenizer.Colon)
		if err != nil {
			return nil, err
		}
	}

	name, children, err := p.pseudoNameAndArguments()
	if err != nil {
		return nil, err
	}

	return &ast.PseudoElementSelector{Base: p.base(start, p.TokenStart), Name: name, Children: children}, nil
}

// Combinator parses ">", "+", "~" or "/deep/".
func (p *Parser) Combinator() (*ast.Combinator, error) {
	start := p.TokenStart

	var name string

	switch p.TokenType {
	case tokenizer.WhiteSpace:
		name = " "
	case tokenizer.Delim:
		switch p.CharCodeAt(p.TokenStart) {
		case charGreaterThanSign, charPlusSign, charTilde:
			p.Next()
		case charSolidus:
			p.Next()

			err := p.EatIdent("deep")
			if err != nil {
				return nil, err
			}

			err = p.EatDelim(charSolidus)
			if err != nil {
				return nil, err
			}
		default:
			return nil, p.Error("Combinator is expected", noOffset)
		}

		name = p.SubstrToCursor(start)
	}

	return &ast.Combinator{Base: p.base(start, p.TokenStart), Name: name}, nil
}

// NestingSelector parses "&".
func (p *Parser) NestingSelector() (*ast.NestingSelector, error) {
	start := p.TokenStart

	err := p.EatDelim(charAmpersand)
	if err != nil {
		return nil, err
	}

	return &ast.NestingSelector{Base: p.base(start, p.TokenStart)}, nil
}

// Nth parses the argument of :nth-*() pseudo classes: "odd", "even" or an
// an+b expression, optionally followed by "of <selector-list>".
func (p *Parser) Nth() (*ast.Nth, error) {
	p.SkipSC()

	start := p.TokenStart
	node := &ast.Nth{}

	var err error

	if p.LookupValue(0, "odd") || p.LookupValue(0, "even") {
		node.Nth, err = wrap(p.Identifier())
	} else {
		node.Nth, err = wrap(p.AnPlusB())
	}

	if err != nil {
		return nil, err
	}

	end := p.TokenStart

	p.SkipSC()

	if p.LookupValue(0, "of") {
		p.Next()

		node.Selector, err = p.SelectorList()
		if err != nil {
			return nil, err
		}

		end = p.TokenStart
	}

	node.Loc = p.Location(start, end)

	return node, nil
}
