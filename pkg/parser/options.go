package parser

import "github.com/Sumatoshi-tech/csstree/pkg/ast"

// Parse contexts.
const (
	ContextDefault         = "default"
	ContextStyleSheet      = "stylesheet"
	ContextAtrule          = "atrule"
	ContextAtrulePrelude   = "atrulePrelude"
	ContextMediaQueryList  = "mediaQueryList"
	ContextMediaQuery      = "mediaQuery"
	ContextRule            = "rule"
	ContextSelectorList    = "selectorList"
	ContextSelector        = "selector"
	ContextBlock           = "block"
	ContextDeclarationList = "declarationList"
	ContextDeclaration     = "declaration"
	ContextValue           = "value"
)

const defaultFilename = "<unknown>"

// ErrorHandler receives a recovered parse error and the Raw node that
// replaced the construct which failed.
type ErrorHandler func(err *SyntaxError, fallback ast.Node)

// CommentHandler receives the text of every comment, without delimiters.
type CommentHandler func(value string, loc *ast.Location)

type options struct {
	context             string
	atrule              string
	positions           bool
	filename            string
	offset              int
	line                int
	column              int
	onParseError        ErrorHandler
	onComment           CommentHandler
	parseAtrulePrelude  bool
	parseRulePrelude    bool
	parseValue          bool
	parseCustomProperty bool
}

func defaultOptions() options {
	return options{
		context:            ContextDefault,
		filename:           defaultFilename,
		line:               1,
		column:             1,
		onParseError:       func(*SyntaxError, ast.Node) {},
		parseAtrulePrelude: true,
		parseRulePrelude:   true,
		parseValue:         true,
	}
}

// Option configures a single parse.
type Option func(*options)

// WithContext selects the grammar production the source is parsed as.
func WithContext(context string) Option {
	return func(o *options) {
		o.context = context
	}
}

// WithAtrule names the at-rule whose prelude is parsed in the atrulePrelude
// context.
func WithAtrule(name string) Option {
	return func(o *options) {
		o.atrule = name
	}
}

// WithPositions records a source location on every node.
func WithPositions(enabled bool) Option {
	return func(o *options) {
		o.positions = enabled
	}
}

// WithFilename sets the source name stored in node locations.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithStart sets the absolute position of the first source byte, for
// sources cut out of a larger document.
func WithStart(offset, line, column int) Option {
	return func(o *options) {
		o.offset = offset
		o.line = line
		o.column = column
	}
}

// WithOnParseError installs a callback for errors recovered as Raw nodes.
func WithOnParseError(handler ErrorHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.onParseError = handler
		}
	}
}

// WithOnComment installs a callback invoked for every comment token.
func WithOnComment(handler CommentHandler) Option {
	return func(o *options) {
		o.onComment = handler
	}
}

// WithParseAtrulePrelude toggles structured parsing of at-rule preludes.
// Disabled preludes are kept as Raw.
func WithParseAtrulePrelude(enabled bool) Option {
	return func(o *options) {
		o.parseAtrulePrelude = enabled
	}
}

// WithParseRulePrelude toggles structured parsing of rule selectors.
func WithParseRulePrelude(enabled bool) Option {
	return func(o *options) {
		o.parseRulePrelude = enabled
	}
}

// WithParseValue toggles structured parsing of declaration values.
func WithParseValue(enabled bool) Option {
	return func(o *options) {
		o.parseValue = enabled
	}
}

// WithParseCustomProperty toggles structured parsing of custom property
// values, which are Raw by default.
func WithParseCustomProperty(enabled bool) Option {
	return func(o *options) {
		o.parseCustomProperty = enabled
	}
}
