// Package generator serializes a CSS syntax tree back to CSS text.
//
// The output is compact: whitespace is only written where the tree holds
// WhiteSpace nodes, or where two adjacent tokens would otherwise be read
// back as different tokens. Which pairs need separating depends on the Mode.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/escape"
	"github.com/Sumatoshi-tech/csstree/pkg/sourcemap"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Sentinel errors.
var (
	// ErrUnknownNode is returned for a node the generator has no rule for.
	ErrUnknownNode = errors.New("unknown node type")
	// ErrMissingNode is returned when a required child is nil.
	ErrMissingNode = errors.New("missing required node")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown generator mode")
)

// Mode selects the token pairs that get a separating space.
type Mode uint8

const (
	// ModeSafe separates every pair that the CSS Syntax spec requires plus
	// pairs some consumers tokenize differently. This is the default.
	ModeSafe Mode = iota
	// ModeSpec separates only the pairs the CSS Syntax spec requires.
	ModeSpec
)

// String returns the mode name.
func (mode Mode) String() string {
	if mode == ModeSpec {
		return "spec"
	}

	return "safe"
}

// ParseMode resolves a mode by name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "safe":
		return ModeSafe, nil
	case "spec":
		return ModeSpec, nil
	default:
		return ModeSafe, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Printer receives the generated output chunk by chunk. Auto is set on
// whitespace inserted by the generator to keep two tokens apart.
type Printer interface {
	Emit(chunk string, tokenType tokenizer.TokenType, auto bool)
}

// PrinterFunc adapts a function to Printer.
type PrinterFunc func(chunk string, tokenType tokenizer.TokenType, auto bool)

// Emit calls fn.
func (fn PrinterFunc) Emit(chunk string, tokenType tokenizer.TokenType, auto bool) {
	fn(chunk, tokenType, auto)
}

// Decorator wraps the printer that builds the result. The wrapper decides
// what reaches next.
type Decorator func(next Printer) Printer

// NodeObserver may be implemented by the Printer a Decorator returns. It is
// told which node the following chunks are generated for.
type NodeObserver interface {
	EnterNode(node ast.Node)
	LeaveNode(node ast.Node)
}

type builderPrinter struct {
	builder *strings.Builder
}

func (printer builderPrinter) Emit(chunk string, _ tokenizer.TokenType, _ bool) {
	printer.builder.WriteString(chunk)
}

type options struct {
	mode      Mode
	sourceMap *sourcemap.Generator
	decorator Decorator
}

// Option configures Generate.
type Option func(*options)

// WithMode sets the token separation mode.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithSourceMap records a mapping into gen for the start of every Atrule,
// Selector and Declaration that carries a location.
func WithSourceMap(gen *sourcemap.Generator) Option {
	return func(o *options) {
		o.sourceMap = gen
	}
}

// WithDecorator installs a printer decorator.
func WithDecorator(decorator Decorator) Option {
	return func(o *options) {
		o.decorator = decorator
	}
}

type generator struct {
	printer  Printer
	observer NodeObserver
	pairs    pairSet
	prev    int
	tracker *mapTracker
	err     error
}

// Generate serializes node and its descendants.
func Generate(node ast.Node, opts ...Option) (string, error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	var builder strings.Builder

	gen := &generator{printer: builderPrinter{builder: &builder}, pairs: safeSet}
	if cfg.mode == ModeSpec {
		gen.pairs = specSet
	}

	if cfg.decorator != nil {
		gen.printer = cfg.decorator(gen.printer)
		gen.observer, _ = gen.printer.(NodeObserver)
	}

	if cfg.sourceMap != nil {
		gen.tracker = newMapTracker(cfg.sourceMap)
	}

	gen.node(node)

	if gen.tracker != nil {
		gen.tracker.finish()

		if gen.err == nil {
			gen.err = gen.tracker.err
		}
	}

	if gen.err != nil {
		return "", gen.err
	}

	return builder.String(), nil
}

func (gen *generator) fail(err error) {
	if gen.err == nil {
		gen.err = err
	}
}

func (gen *generator) emit(chunk string, tokenType tokenizer.TokenType, auto bool) {
	if gen.tracker != nil {
		gen.tracker.advance(chunk)
	}

	gen.printer.Emit(chunk, tokenType, auto)
}

func (gen *generator) token(tokenType tokenizer.TokenType, value string) {
	if gen.pairs.needsSpace(gen.prev, tokenType, value) {
		gen.emit(" ", tokenizer.WhiteSpace, true)
	}

	gen.prev = sideOf(tokenType, value)
	gen.emit(value, tokenType, false)

	// A lone backslash escapes whatever follows it.
	if tokenType == tokenizer.Delim && strings.HasPrefix(value, `\`) {
		gen.emit("\n", tokenizer.WhiteSpace, true)
	}
}

func (gen *generator) tokenize(source string) {
	tokenizer.Tokenize(source, func(tokenType tokenizer.TokenType, start, end int) {
		gen.token(tokenType, source[start:end])
	})
}

// children writes every node of children. When sep is set it is called
// between two nodes with the first of them.
func (gen *generator) children(children *ast.List, sep func(prev ast.Node)) {
	if children == nil {
		return
	}

	var prev ast.Node

	for child := range children.All() {
		if prev != nil && sep != nil {
			sep(prev)
		}

		gen.node(child)
		prev = child
	}
}

func (gen *generator) semicolonAfterDeclaration(prev ast.Node) {
	if prev.Kind() == ast.KindDeclaration {
		gen.token(tokenizer.Semicolon, ";")
	}
}

func (gen *generator) comma(ast.Node) {
	gen.token(tokenizer.Comma, ",")
}

func (gen *generator) pseudo(name string, children *ast.List) {
	if children == nil {
		gen.token(tokenizer.Ident, name)

		return
	}

	gen.token(tokenizer.Function, name+"(")
	gen.children(children, nil)
	gen.token(tokenizer.RightParenthesis, ")")
}

func (gen *generator) block(block *ast.Block, owner ast.Kind) {
	if block == nil {
		gen.fail(fmt.Errorf("%w: %s block", ErrMissingNode, owner))

		return
	}

	gen.node(block)
}

func (gen *generator) node(node ast.Node) {
	if gen.err != nil {
		return
	}

	if node == nil {
		gen.fail(ErrMissingNode)

		return
	}

	if gen.tracker != nil {
		gen.tracker.enter(node)
	}

	if gen.observer != nil {
		gen.observer.EnterNode(node)
	}

	gen.write(node)

	if gen.observer != nil {
		gen.observer.LeaveNode(node)
	}

	if gen.tracker != nil {
		gen.tracker.leave(node)
	}
}

//nolint:cyclop,funlen,gocyclo // one case per node kind.
func (gen *generator) write(node ast.Node) {
	switch n := node.(type) {
	case *ast.AnPlusB:
		gen.anPlusB(n)
	case *ast.Atrule:
		gen.token(tokenizer.AtKeyword, "@"+n.Name)

		if n.Prelude != nil {
			gen.node(n.Prelude)
		}

		if n.Block != nil {
			gen.node(n.Block)
		} else {
			gen.token(tokenizer.Semicolon, ";")
		}
	case *ast.AtrulePrelude:
		gen.children(n.Children, nil)
	case *ast.AttributeSelector:
		if n.Name == nil {
			gen.fail(fmt.Errorf("%w: attribute name", ErrMissingNode))

			return
		}

		gen.token(tokenizer.Delim, "[")
		gen.node(n.Name)

		if n.Matcher != "" {
			gen.tokenize(n.Matcher)
			gen.node(n.Value)
		}

		if n.Flags != "" {
			gen.token(tokenizer.Ident, n.Flags)
		}

		gen.token(tokenizer.Delim, "]")
	case *ast.Block:
		gen.token(tokenizer.LeftCurlyBracket, "{")
		gen.children(n.Children, gen.semicolonAfterDeclaration)
		gen.token(tokenizer.RightCurlyBracket, "}")
	case *ast.Brackets:
		gen.token(tokenizer.Delim, "[")
		gen.children(n.Children, nil)
		gen.token(tokenizer.Delim, "]")
	case *ast.CDC:
		gen.token(tokenizer.CDC, "-->")
	case *ast.CDO:
		gen.token(tokenizer.CDO, "<!--")
	case *ast.ClassSelector:
		gen.token(tokenizer.Delim, ".")
		gen.token(tokenizer.Ident, n.Name)
	case *ast.Combinator:
		gen.tokenize(n.Name)
	case *ast.Comment:
		gen.token(tokenizer.Comment, "/*"+n.Value+"*/")
	case *ast.Declaration:
		gen.token(tokenizer.Ident, n.Property)
		gen.token(tokenizer.Colon, ":")
		gen.node(n.Value)

		if n.Important != "" {
			gen.token(tokenizer.Delim, "!")
			gen.token(tokenizer.Ident, n.Important)
		}
	case *ast.DeclarationList:
		gen.children(n.Children, gen.semicolonAfterDeclaration)
	case *ast.Dimension:
		gen.token(tokenizer.Dimension, n.Value+n.Unit)
	case *ast.Function:
		gen.token(tokenizer.Function, n.Name+"(")
		gen.children(n.Children, nil)
		gen.token(tokenizer.RightParenthesis, ")")
	case *ast.Hash:
		gen.token(tokenizer.Hash, "#"+n.Value)
	case *ast.IdSelector:
		gen.token(tokenizer.Delim, "#"+n.Name)
	case *ast.Identifier:
		gen.token(tokenizer.Ident, n.Name)
	case *ast.MediaFeature:
		gen.token(tokenizer.LeftParenthesis, "(")
		gen.token(tokenizer.Ident, n.Name)

		if n.Value != nil {
			gen.token(tokenizer.Colon, ":")
			gen.node(n.Value)
		}

		gen.token(tokenizer.RightParenthesis, ")")
	case *ast.MediaQuery:
		gen.children(n.Children, nil)
	case *ast.MediaQueryList:
		gen.children(n.Children, gen.comma)
	case *ast.NestingSelector:
		gen.token(tokenizer.Delim, "&")
	case *ast.Nth:
		gen.node(n.Nth)

		if n.Selector != nil {
			gen.token(tokenizer.Ident, "of")
			gen.node(n.Selector)
		}
	case *ast.Number:
		gen.token(tokenizer.Number, n.Value)
	case *ast.Operator:
		gen.tokenize(n.Value)
	case *ast.Parentheses:
		gen.token(tokenizer.LeftParenthesis, "(")
		gen.children(n.Children, nil)
		gen.token(tokenizer.RightParenthesis, ")")
	case *ast.Percentage:
		gen.token(tokenizer.Percentage, n.Value+"%")
	case *ast.PseudoClassSelector:
		gen.token(tokenizer.Colon, ":")
		gen.pseudo(n.Name, n.Children)
	case *ast.PseudoElementSelector:
		gen.token(tokenizer.Colon, ":")
		gen.token(tokenizer.Colon, ":")
		gen.pseudo(n.Name, n.Children)
	case *ast.Ratio:
		gen.token(tokenizer.Number, n.Left)
		gen.token(tokenizer.Delim, "/")
		gen.token(tokenizer.Number, n.Right)
	case *ast.Raw:
		gen.tokenize(n.Value)
	case *ast.Rule:
		gen.node(n.Prelude)
		gen.block(n.Block, ast.KindRule)
	case *ast.Selector:
		gen.children(n.Children, nil)
	case *ast.SelectorList:
		gen.children(n.Children, gen.comma)
	case *ast.String:
		gen.token(tokenizer.String, escape.EncodeString(n.Value, false))
	case *ast.StyleSheet:
		gen.children(n.Children, nil)
	case *ast.TypeSelector:
		gen.tokenize(n.Name)
	case *ast.UnicodeRange:
		gen.tokenize(n.Value)
	case *ast.Url:
		gen.token(tokenizer.Url, escape.EncodeURL(n.Value))
	case *ast.Value:
		gen.children(n.Children, nil)
	case *ast.WhiteSpace:
		gen.token(tokenizer.WhiteSpace, n.Value)
	default:
		gen.fail(fmt.Errorf("%w: %T", ErrUnknownNode, node))
	}
}

func (gen *generator) anPlusB(node *ast.AnPlusB) {
	if node.A == "" {
		gen.tokenize(node.B)

		return
	}

	var a string

	switch node.A {
	case "+1", "1":
		a = "n"
	case "-1":
		a = "-n"
	default:
		a = node.A + "n"
	}

	if node.B == "" {
		gen.tokenize(a)

		return
	}

	b := node.B
	if b[0] != '-' && b[0] != '+' {
		b = "+" + b
	}

	gen.tokenize(a + b)
}
