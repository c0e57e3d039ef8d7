package parser

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/names"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Raw captures the source from the token at startIdx up to where stop
// halts, or to the end of the enclosing block when stop is nil. With
// excludeWhiteSpace the trailing whitespace token is left out.
func (p *Parser) Raw(startIdx int, stop tokenizer.StopFunc, excludeWhiteSpace bool) *ast.Raw {
	start := p.GetTokenStart(startIdx)

	if stop == nil {
		stop = stopAtBalanceEnd
	}

	p.SkipUntilBalanced(startIdx, stop)

	end := p.TokenStart
	if excludeWhiteSpace && p.TokenStart > start {
		end = p.rawEnd()
	}

	return &ast.Raw{Base: p.base(start, end), Value: p.Substring(start, end)}
}

func (p *Parser) rawEnd() int {
	if p.TokenIndex > 0 && p.LookupType(-1) == tokenizer.WhiteSpace {
		if p.TokenIndex > 1 {
			return p.GetTokenStart(p.TokenIndex - 1)
		}

		return p.FirstCharOffset()
	}

	return p.TokenStart
}

func (p *Parser) rawToBlockEnd(startIdx int) *ast.Raw {
	return p.Raw(startIdx, nil, false)
}

func (p *Parser) rawToBlockEndTrimmed(startIdx int) *ast.Raw {
	return p.Raw(startIdx, nil, true)
}

func (p *Parser) rawIncludingSemicolon(startIdx int) *ast.Raw {
	return p.Raw(startIdx, stopAfterSemicolon, true)
}

// StyleSheet parses a whole stylesheet. Comments are kept only when they
// start with "/*!".
func (p *Parser) StyleSheet() (*ast.StyleSheet, error) {
	start := p.TokenStart
	children := ast.NewList()

	for !p.EOF {
		var (
			node ast.Node
			err  error
		)

		switch p.TokenType {
		case tokenizer.WhiteSpace:
			p.Next()

			continue
		case tokenizer.Comment:
			if p.CharCodeAt(p.TokenStart+2) != charExclamationMark {
				p.Next()

				continue
			}

			node, err = wrap(p.Comment())
		case tokenizer.CDO:
			node, err = wrap(p.CDO())
		case tokenizer.CDC:
			node, err = wrap(p.CDC())
		case tokenizer.AtKeyword:
			node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Atrule(false)) }, p.rawToBlockEnd)
		default:
			node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Rule()) }, p.rawToBlockEnd)
		}

		if err != nil {
			return nil, err
		}

		children.Push(node)
	}

	return &ast.StyleSheet{Base: p.base(start, p.TokenStart), Children: children}, nil
}

// Comment parses a comment token.
func (p *Parser) Comment() (*ast.Comment, error) {
	start := p.TokenStart
	end := p.TokenEnd

	err := p.Eat(tokenizer.Comment)
	if err != nil {
		return nil, err
	}

	if end-start >= 4 && p.CharCodeAt(end-2) == charAsterisk && p.CharCodeAt(end-1) == charSolidus {
		end -= 2
	}

	return &ast.Comment{Base: p.base(start, p.TokenStart), Value: p.Substring(start+2, end)}, nil
}

// CDO parses "<!--".
func (p *Parser) CDO() (*ast.CDO, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.CDO)
	if err != nil {
		return nil, err
	}

	return &ast.CDO{Base: p.base(start, p.TokenStart)}, nil
}

// CDC parses "-->".
func (p *Parser) CDC() (*ast.CDC, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.CDC)
	if err != nil {
		return nil, err
	}

	return &ast.CDC{Base: p.base(start, p.TokenStart)}, nil
}

func (p *Parser) rawAtrulePrelude(startIdx int) *ast.Raw {
	return p.Raw(startIdx, stopAtLeftCurlyBracketOrSemicolon, true)
}

// blockHasDeclarations guesses from the tokens after "{" whether a generic
// at-rule block holds declarations rather than rules.
func (p *Parser) blockHasDeclarations() bool {
	for offset := 1; ; offset++ {
		switch p.LookupType(offset) {
		case tokenizer.EOF:
			return false
		case tokenizer.RightCurlyBracket:
			return true
		case tokenizer.LeftCurlyBracket, tokenizer.AtKeyword:
			return false
		}
	}
}

// Atrule parses an at-rule. nested is set for at-rules inside a style
// block, whose blocks then hold declarations.
func (p *Parser) Atrule(nested bool) (*ast.Atrule, error) {
	start := p.TokenStart

	err := p.Eat(tokenizer.AtKeyword)
	if err != nil {
		return nil, err
	}

	name := p.SubstrToCursor(start + 1)
	plugin := p.config.Atrules[strings.ToLower(name)]

	p.SkipSC()

	var prelude ast.Node

	if !p.EOF && p.TokenType != tokenizer.LeftCurlyBracket && p.TokenType != tokenizer.Semicolon {
		if p.opts.parseAtrulePrelude {
			prelude, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.AtrulePrelude(name)) }, p.rawAtrulePrelude)
			if err != nil {
				return nil, err
			}
		} else {
			prelude = p.rawAtrulePrelude(p.TokenIndex)
		}

		p.SkipSC()
	}

	var block *ast.Block

	switch p.TokenType {
	case tokenizer.Semicolon:
		p.Next()
	case tokenizer.LeftCurlyBracket:
		if plugin.Block != nil {
			block, err = plugin.Block(p, nested)
		} else {
			block, err = p.Block(p.blockHasDeclarations())
		}

		if err != nil {
			return nil, err
		}
	}

	return &ast.Atrule{Base: p.base(start, p.TokenStart), Name: name, Prelude: prelude, Block: block}, nil
}

// AtrulePrelude parses the prelude of the named at-rule, using its plugin
// when one is registered.
func (p *Parser) AtrulePrelude(name string) (*ast.AtrulePrelude, error) {
	p.SkipSC()

	var (
		children *ast.List
		err      error
	)

	if plugin := p.config.Atrules[strings.ToLower(name)]; plugin.Prelude != nil {
		children, err = plugin.Prelude(p)
	} else {
		children, err = p.ReadSequence(p.scopes.atrulePrelude)
	}

	if err != nil {
		return nil, err
	}

	p.SkipSC()

	if !p.EOF && p.TokenType != tokenizer.LeftCurlyBracket && p.TokenType != tokenizer.Semicolon {
		return nil, p.Error("Semicolon or block is expected", noOffset)
	}

	return &ast.AtrulePrelude{Base: p.listBase(children), Children: children}, nil
}

func (p *Parser) rawRulePrelude(startIdx int) *ast.Raw {
	return p.Raw(startIdx, stopAtLeftCurlyBracket, true)
}

func (p *Parser) rulePrelude() (ast.Node, error) {
	selectors, err := p.SelectorList()
	if err != nil {
		return nil, err
	}

	if !p.EOF && p.TokenType != tokenizer.LeftCurlyBracket {
		return nil, p.Error("", noOffset)
	}

	return selectors, nil
}

// Rule parses a qualified rule.
func (p *Parser) Rule() (*ast.Rule, error) {
	startIdx := p.TokenIndex
	start := p.TokenStart

	var (
		prelude ast.Node
		err     error
	)

	if p.opts.parseRulePrelude {
		prelude, err = p.ParseWithFallback(p.rulePrelude, p.rawRulePrelude)
		if err != nil {
			return nil, err
		}
	} else {
		prelude = p.rawRulePrelude(startIdx)
	}

	block, err := p.Block(true)
	if err != nil {
		return nil, err
	}

	return &ast.Rule{Base: p.base(start, p.TokenStart), Prelude: prelude, Block: block}, nil
}

func (p *Parser) nestedRule() (ast.Node, error) {
	return p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Rule()) }, p.rawToBlockEndTrimmed)
}

func (p *Parser) blockDeclaration() (ast.Node, error) {
	if p.TokenType == tokenizer.Semicolon {
		return p.rawIncludingSemicolon(p.TokenIndex), nil
	}

	node, err := p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Declaration()) }, p.rawIncludingSemicolon)
	if err != nil {
		return nil, err
	}

	if p.TokenType == tokenizer.Semicolon {
		p.Next()
	}

	return node, nil
}

// Block parses a {} block. A declaration block holds declarations and
// nested rules starting with "&"; otherwise it holds rules.
func (p *Parser) Block(isDeclaration bool) (*ast.Block, error) {
	start := p.TokenStart
	children := ast.NewList()

	err := p.Eat(tokenizer.LeftCurlyBracket)
	if err != nil {
		return nil, err
	}

loop:
	for !p.EOF {
		var node ast.Node

		switch p.TokenType {
		case tokenizer.RightCurlyBracket:
			break loop
		case tokenizer.WhiteSpace, tokenizer.Comment:
			p.Next()

			continue
		case tokenizer.AtKeyword:
			node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Atrule(isDeclaration)) }, p.rawToBlockEndTrimmed)
		default:
			if isDeclaration && !p.IsDelim(charAmpersand) {
				node, err = p.blockDeclaration()
			} else {
				node, err = p.nestedRule()
			}
		}

		if err != nil {
			return nil, err
		}

		children.Push(node)
	}

	if !p.EOF {
		err = p.Eat(tokenizer.RightCurlyBracket)
		if err != nil {
			return nil, err
		}
	}

	return &ast.Block{Base: p.base(start, p.TokenStart), Children: children}, nil
}

// DeclarationList parses declarations outside of a block, e.g. a style
// attribute.
func (p *Parser) DeclarationList() (*ast.DeclarationList, error) {
	children := ast.NewList()

	for !p.EOF {
		var (
			node ast.Node
			err  error
		)

		switch p.TokenType {
		case tokenizer.WhiteSpace, tokenizer.Comment, tokenizer.Semicolon:
			p.Next()

			continue
		case tokenizer.AtKeyword:
			node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Atrule(true)) }, p.rawIncludingSemicolon)
		default:
			if p.IsDelim(charAmpersand) {
				node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Rule()) }, p.rawIncludingSemicolon)
			} else {
				node, err = p.ParseWithFallback(func() (ast.Node, error) { return wrap(p.Declaration()) }, p.rawIncludingSemicolon)
			}
		}

		if err != nil {
			return nil, err
		}

		children.Push(node)
	}

	return &ast.DeclarationList{Base: p.listBase(children), Children: children}, nil
}

func (p *Parser) declarationValue() (ast.Node, error) {
	startIdx := p.TokenIndex

	value, err := p.Value()
	if err != nil {
		return nil, err
	}

	if !p.EOF && p.TokenType != tokenizer.Semicolon && !p.IsDelim(charExclamationMark) && !p.IsBalanceEdge(startIdx) {
		return nil, p.Error("", noOffset)
	}

	return value, nil
}

func (p *Parser) rawDeclarationValue(startIdx int) *ast.Raw {
	return p.Raw(startIdx, stopAtExclamationMarkOrSemicolon, true)
}

func (p *Parser) rawCustomPropertyValue(startIdx int) *ast.Raw {
	return p.Raw(startIdx, stopAtExclamationMarkOrSemicolon, false)
}

// declarationProperty consumes a property name including IE hack prefixes
// such as "*" or "//".
func (p *Parser) declarationProperty() (string, error) {
	start := p.TokenStart

	if p.TokenType == tokenizer.Delim {
		switch p.CharCodeAt(p.TokenStart) {
		case charAsterisk, charDollarSign, charPlusSign, charNumberSign, charAmpersand:
			p.Next()
		case charSolidus:
			p.Next()

			if p.IsDelim(charSolidus) {
				p.Next()
			}
		}
	}

	var err error
	if p.TokenType == tokenizer.Hash {
		err = p.Eat(tokenizer.Hash)
	} else {
		err = p.Eat(tokenizer.Ident)
	}

	if err != nil {
		return "", err
	}

	return p.SubstrToCursor(start), nil
}

func (p *Parser) important() (string, error) {
	err := p.Eat(tokenizer.Delim)
	if err != nil {
		return "", err
	}

	p.SkipSC()

	word, err := p.Consume(tokenizer.Ident)
	if err != nil {
		return "", err
	}

	if word == ast.ImportantFlag {
		return ast.ImportantFlag, nil
	}

	return word, nil
}

// Declaration parses a "property: value" pair with an optional "!"
// annotation. Custom property values stay Raw unless custom property
// parsing is enabled.
//
//nolint:cyclop,funlen // mirrors the declaration grammar step by step.
func (p *Parser) Declaration() (*ast.Declaration, error) {
	start := p.TokenStart
	startIdx := p.TokenIndex

	property, err := p.declarationProperty()
	if err != nil {
		return nil, err
	}

	custom := names.IsCustomProperty(property, 0)
	parseValue := p.opts.parseValue
	fallback := p.rawDeclarationValue

	if custom {
		parseValue = p.opts.parseCustomProperty
		fallback = p.rawCustomPropertyValue
	}

	p.SkipSC()

	err = p.Eat(tokenizer.Colon)
	if err != nil {
		return nil, err
	}

	valueStartIdx := p.TokenIndex

	if !custom {
		p.SkipSC()
	}

	var value ast.Node

	if parseValue {
		value, err = p.ParseWithFallback(p.declarationValue, fallback)
		if err != nil {
			return nil, err
		}
	} else {
		value = fallback(p.TokenIndex)
	}

	if parsed, ok := value.(*ast.Value); ok && custom {
		p.keepEmptyValueWhiteSpace(parsed, valueStartIdx)
	}

	important := ""

	if p.IsDelim(charExclamationMark) {
		important, err = p.important()
		if err != nil {
			return nil, err
		}

		p.SkipSC()
	}

	if !p.EOF && p.TokenType != tokenizer.Semicolon && !p.IsBalanceEdge(startIdx) {
		return nil, p.Error("", noOffset)
	}

	return &ast.Declaration{
		Base:      p.base(start, p.TokenStart),
		Important: important,
		Property:  property,
		Value:     value,
	}, nil
}
