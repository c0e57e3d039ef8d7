// Package parser turns CSS source into the syntax tree of package ast.
//
// Constructs that fail to parse (rules, at-rules, declarations) are kept as
// Raw nodes holding the original text, so parsing a stylesheet succeeds for
// any input. Errors are only returned for entry points without a recovery
// point, such as a single value parsed in the value context.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// noOffset marks an error located at the current token.
const noOffset = -1

const (
	charExclamationMark = '!'
	charNumberSign      = '#'
	charDollarSign      = '$'
	charAmpersand       = '&'
	charAsterisk        = '*'
	charPlusSign        = '+'
	charHyphenMinus     = '-'
	charFullStop        = '.'
	charSolidus         = '/'
	charSemicolon       = ';'
	charEqualsSign      = '='
	charGreaterThanSign = '>'
	charQuestionMark    = '?'
	charCircumflex      = '^'
	charLeftCurly       = '{'
	charVerticalLine    = '|'
	charTilde           = '~'
	charLowercaseN      = 'n'
	charLowercaseU      = 'u'
)

// AtrulePlugin overrides how the prelude and block of a named at-rule are
// parsed. A nil member falls back to the generic production.
type AtrulePlugin struct {
	Prelude func(p *Parser) (*ast.List, error)
	Block   func(p *Parser, nested bool) (*ast.Block, error)
}

// PseudoPlugin parses the argument list of a functional pseudo class or
// pseudo element.
type PseudoPlugin func(p *Parser) (*ast.List, error)

// Config holds the pluggable grammar tables of a Parser. Keys are lowercase
// names without the leading "@" or ":".
type Config struct {
	Atrules map[string]AtrulePlugin
	Pseudos map[string]PseudoPlugin
}

// DefaultConfig returns fresh copies of the built-in at-rule and pseudo
// tables.
func DefaultConfig() Config {
	return Config{Atrules: defaultAtrules(), Pseudos: defaultPseudos()}
}

// Parser is a reusable CSS parser. A Parser keeps per-parse state and must
// not be used by several goroutines at once; the package level Parse
// creates a parser per call.
type Parser struct {
	*tokenizer.Stream

	config  Config
	opts    options
	locator *tokenizer.OffsetToLocation
	scopes  scopes
}

// New returns a parser with the given grammar tables.
func New(config Config) *Parser {
	if config.Atrules == nil {
		config.Atrules = map[string]AtrulePlugin{}
	}

	if config.Pseudos == nil {
		config.Pseudos = map[string]PseudoPlugin{}
	}

	p := &Parser{config: config, locator: tokenizer.NewOffsetToLocation("", 0, 1, 1)}
	p.scopes = newScopes()

	return p
}

// Parse parses source with the default grammar tables.
func Parse(source string, opts ...Option) (ast.Node, error) {
	return New(DefaultConfig()).Parse(source, opts...)
}

var contexts = map[string]func(p *Parser) (ast.Node, error){
	ContextDefault:         func(p *Parser) (ast.Node, error) { return wrap(p.StyleSheet()) },
	ContextStyleSheet:      func(p *Parser) (ast.Node, error) { return wrap(p.StyleSheet()) },
	ContextAtrule:          func(p *Parser) (ast.Node, error) { return wrap(p.Atrule(false)) },
	ContextAtrulePrelude:   func(p *Parser) (ast.Node, error) { return wrap(p.AtrulePrelude(p.opts.atrule)) },
	ContextMediaQueryList:  func(p *Parser) (ast.Node, error) { return wrap(p.MediaQueryList()) },
	ContextMediaQuery:      func(p *Parser) (ast.Node, error) { return wrap(p.MediaQuery()) },
	ContextRule:            func(p *Parser) (ast.Node, error) { return wrap(p.Rule()) },
	ContextSelectorList:    func(p *Parser) (ast.Node, error) { return wrap(p.SelectorList()) },
	ContextSelector:        func(p *Parser) (ast.Node, error) { return wrap(p.Selector()) },
	ContextBlock:           func(p *Parser) (ast.Node, error) { return wrap(p.Block(true)) },
	ContextDeclarationList: func(p *Parser) (ast.Node, error) { return wrap(p.DeclarationList()) },
	ContextDeclaration:     func(p *Parser) (ast.Node, error) { return wrap(p.Declaration()) },
	ContextValue:           func(p *Parser) (ast.Node, error) { return wrap(p.Value()) },
}

// Contexts returns the names of all parse contexts.
func Contexts() []string {
	names := make([]string, 0, len(contexts))
	for name := range contexts {
		names = append(names, name)
	}

	return names
}

func wrap[T ast.Node](node T, err error) (ast.Node, error) {
	if err != nil {
		return nil, err
	}

	return node, nil
}

// Parse parses source according to opts.
func (p *Parser) Parse(source string, opts ...Option) (ast.Node, error) {
	p.opts = defaultOptions()
	for _, opt := range opts {
		opt(&p.opts)
	}

	entry, ok := contexts[p.opts.context]
	if !ok {
		return nil, fmt.Errorf("%w `%s`", ErrUnknownContext, p.opts.context)
	}

	if len(source) > tokenizer.MaxSourceLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(source))
	}

	if p.Stream == nil {
		p.Stream = tokenizer.NewStream(source)
	} else {
		p.SetSource(source)
	}

	p.locator.SetSource(source, p.opts.offset, p.opts.line, p.opts.column)

	if p.opts.onComment != nil {
		p.ForEachToken(func(tokenType tokenizer.TokenType, start, end, _ int) {
			if tokenType != tokenizer.Comment {
				return
			}

			loc := p.Location(start, end)
			value := source[start+2 : end]

			if end-start >= 4 && tokenizer.CmpStr(source, end-2, end, "*/") {
				value = source[start+2 : end-2]
			}

			p.opts.onComment(value, loc)
		})
	}

	node, err := entry(p)
	if err != nil {
		return nil, err
	}

	if !p.EOF {
		return nil, p.Error("", noOffset)
	}

	return node, nil
}

// Error builds a SyntaxError located at offset, or at the current token when
// offset is negative. An empty message means "Unexpected input".
func (p *Parser) Error(message string, offset int) error {
	source := p.Source()

	var pos ast.Position

	switch {
	case offset >= 0 && offset < len(source):
		pos = p.locator.GetLocation(offset)
	case p.EOF:
		pos = p.locator.GetLocation(tokenizer.FindWhiteSpaceStart(source, len(source)-1))
	default:
		pos = p.locator.GetLocation(p.TokenStart)
	}

	if message == "" {
		message = "Unexpected input"
	}

	return &SyntaxError{Message: message, Source: source, Offset: pos.Offset, Line: pos.Line, Column: pos.Column}
}

// Location returns the source range between two offsets when positions are
// enabled, else nil.
func (p *Parser) Location(start, end int) *ast.Location {
	if !p.opts.positions {
		return nil
	}

	loc := p.locator.GetLocationRange(start, end, p.opts.filename)

	return &loc
}

func (p *Parser) base(start, end int) ast.Base {
	return ast.Base{Loc: p.Location(start, end)}
}

// LocationFromList returns the range spanned by the first and last node of
// children, or an empty range at the cursor.
func (p *Parser) LocationFromList(children *ast.List) *ast.Location {
	if !p.opts.positions {
		return nil
	}

	start := p.TokenStart
	end := p.TokenStart

	if first, ok := children.First(); ok && first.Location() != nil {
		start = first.Location().Start.Offset - p.opts.offset
	}

	if last, ok := children.Last(); ok && last.Location() != nil {
		end = last.Location().End.Offset - p.opts.offset
	}

	return p.Location(start, end)
}

func (p *Parser) listBase(children *ast.List) ast.Base {
	return ast.Base{Loc: p.LocationFromList(children)}
}

// CmpChar compares the source byte at offset with a lowercase code.
func (p *Parser) CmpChar(offset, reference int) bool {
	return tokenizer.CmpChar(p.Source(), offset, reference)
}

// CmpStr compares source[start:end] with a lowercase reference.
func (p *Parser) CmpStr(start, end int, reference string) bool {
	return tokenizer.CmpStr(p.Source(), start, end, reference)
}

var bracketPattern = regexp.MustCompile(`[\[\](){}]`)

func expectedTokenMessage(tokenType tokenizer.TokenType) string {
	name := strings.TrimSuffix(tokenType.Name(), "-token")
	name = strings.ReplaceAll(name, "-", " ")

	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}

	if bracketPattern.MatchString(name) {
		name = `"` + name + `"`
	}

	return name + " is expected"
}

// Eat consumes a token of the given type or fails.
func (p *Parser) Eat(tokenType tokenizer.TokenType) error {
	if p.TokenType != tokenType {
		message := expectedTokenMessage(tokenType)
		offset := p.TokenStart

		switch tokenType {
		case tokenizer.Ident:
			if p.TokenType == tokenizer.Function || p.TokenType == tokenizer.Url {
				offset = p.TokenEnd - 1
				message = "Identifier is expected but function found"
			} else {
				message = "Identifier is expected"
			}
		case tokenizer.Hash:
			if p.IsDelim(charNumberSign) {
				p.Next()
				offset++
				message = "Name is expected"
			}
		case tokenizer.Percentage:
			if p.TokenType == tokenizer.Number {
				offset = p.TokenEnd
				message = "Percent sign is expected"
			}
		}

		return p.Error(message, offset)
	}

	p.Next()

	return nil
}

// EatIdent consumes an identifier equal to name, ignoring case.
func (p *Parser) EatIdent(name string) error {
	if p.TokenType != tokenizer.Ident || !p.LookupValue(0, name) {
		return p.Error(`Identifier "`+name+`" is expected`, noOffset)
	}

	p.Next()

	return nil
}

// EatDelim consumes the delimiter code.
func (p *Parser) EatDelim(code int) error {
	if !p.IsDelim(code) {
		return p.Error(`Delim "`+string(rune(code))+`" is expected`, noOffset)
	}

	p.Next()

	return nil
}

// Consume consumes a token of the given type and returns its text.
func (p *Parser) Consume(tokenType tokenizer.TokenType) (string, error) {
	start := p.TokenStart

	err := p.Eat(tokenType)
	if err != nil {
		return "", err
	}

	return p.SubstrToCursor(start), nil
}

// ConsumeFunctionName consumes a function token and returns its name
// without the "(".
func (p *Parser) ConsumeFunctionName() (string, error) {
	name := p.Substring(p.TokenStart, p.TokenEnd-1)

	err := p.Eat(tokenizer.Function)
	if err != nil {
		return "", err
	}

	return name, nil
}

// ConsumeNumber consumes a numeric token and returns its number part.
func (p *Parser) ConsumeNumber(tokenType tokenizer.TokenType) (string, error) {
	number := p.Substring(p.TokenStart, tokenizer.ConsumeNumber(p.Source(), p.TokenStart))

	err := p.Eat(tokenType)
	if err != nil {
		return "", err
	}

	return number, nil
}

// ParseWithFallback runs consume; on a syntax error it rewinds to the
// token where consume started, captures the span with fallback and reports
// the error to the parse error handler.
func (p *Parser) ParseWithFallback(consume func() (ast.Node, error), fallback func(startIdx int) *ast.Raw) (ast.Node, error) {
	startIdx := p.TokenIndex

	node, err := consume()
	if err == nil {
		return node, nil
	}

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		return nil, err
	}

	raw := fallback(startIdx)
	p.opts.onParseError(syntaxErr, raw)

	return raw, nil
}

// Scope drives ReadSequence: GetNode parses the node at the cursor or
// returns nil to end the sequence; OnWhiteSpace, when set, is told about
// whitespace seen before a node (or before the end, with next == nil).
// Functions overrides how the arguments of named functions are parsed.
type Scope struct {
	GetNode      func(p *Parser, scope *Scope) (ast.Node, error)
	OnWhiteSpace func(p *Parser, next ast.Node, children *ast.List)
	Functions    map[string]func(p *Parser, scope *Scope) (*ast.List, error)
}

// ReadSequence collects nodes produced by scope until it yields nil.
func (p *Parser) ReadSequence(scope *Scope) (*ast.List, error) {
	children := ast.NewList()
	sawWhiteSpace := false

	for !p.EOF {
		switch p.TokenType {
		case tokenizer.Comment:
			p.Next()

			continue
		case tokenizer.WhiteSpace:
			sawWhiteSpace = true

			p.Next()

			continue
		}

		node, err := scope.GetNode(p, scope)
		if err != nil {
			return nil, err
		}

		if node == nil {
			break
		}

		if sawWhiteSpace {
			if scope.OnWhiteSpace != nil {
				scope.OnWhiteSpace(p, node, children)
			}

			sawWhiteSpace = false
		}

		children.Push(node)
	}

	if sawWhiteSpace && scope.OnWhiteSpace != nil {
		scope.OnWhiteSpace(p, nil, children)
	}

	return children, nil
}

// Stop functions for Raw and SkipUntilBalanced.
func stopAtBalanceEnd(int) tokenizer.StopAction { return tokenizer.Continue }

func stopAtLeftCurlyBracket(code int) tokenizer.StopAction {
	if code == charLeftCurly {
		return tokenizer.StopBefore
	}

	return tokenizer.Continue
}

func stopAtLeftCurlyBracketOrSemicolon(code int) tokenizer.StopAction {
	if code == charLeftCurly || code == charSemicolon {
		return tokenizer.StopBefore
	}

	return tokenizer.Continue
}

func stopAtExclamationMarkOrSemicolon(code int) tokenizer.StopAction {
	if code == charExclamationMark || code == charSemicolon {
		return tokenizer.StopBefore
	}

	return tokenizer.Continue
}

func stopAfterSemicolon(code int) tokenizer.StopAction {
	if code == charSemicolon {
		return tokenizer.StopAfter
	}

	return tokenizer.Continue
}
