package lexer

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Sentinel errors. Some messages are shown to users verbatim.
//
//nolint:revive,staticcheck // capitalized user-facing messages.
var (
	// ErrBadGrammar is returned when a syntax tree cannot be compiled.
	ErrBadGrammar = errors.New("bad grammar")
	// ErrTooManyTerms is returned for && and || groups too large to track.
	ErrTooManyTerms = errors.New("too many terms in group")
	// ErrVarNotSupported is reported for values that use var().
	ErrVarNotSupported = errors.New("Matching for a tree with var() is not supported")
	// ErrCustomProperty is reported when matching a custom property.
	ErrCustomProperty = errors.New("Lexer matching doesn't applicable for custom properties")
	// ErrNotDeclaration is reported by MatchDeclaration for other nodes.
	ErrNotDeclaration = errors.New("Not a Declaration node")
	// ErrMissingPrelude is reported when an at-rule requires a prelude.
	ErrMissingPrelude = errors.New("should contain a prelude")
	// ErrUnexpectedPrelude is reported when an at-rule takes no prelude.
	ErrUnexpectedPrelude = errors.New("should not contain a prelude")
	// ErrNoDescriptors is reported for at-rules without descriptors.
	ErrNoDescriptors = errors.New("has no known descriptors")
)

// Reasons a match run ends with.
const (
	ReasonMatch              = "Match"
	ReasonMismatch           = "Mismatch"
	ReasonIterationsExceeded = "Maximum iteration number exceeded (please fill an issue on https://github.com/csstree/csstree/issues)"
)

// SyntaxReferenceError reports a reference to an unknown type, property,
// at-rule or descriptor.
type SyntaxReferenceError struct {
	Message   string
	Reference string
}

func (err *SyntaxReferenceError) Error() string {
	if err.Reference == "" {
		return err.Message
	}

	return err.Message + " `" + err.Reference + "`"
}

func newReferenceError(message, reference string) *SyntaxReferenceError {
	return &SyntaxReferenceError{Message: message, Reference: reference}
}

// SyntaxMatchError reports a value that does not match a syntax. The
// mismatch offsets are byte offsets into CSS.
type SyntaxMatchError struct {
	RawMessage     string
	Syntax         string
	CSS            string
	MismatchOffset int
	MismatchLength int
	Start          tokenizer.Position
	End            tokenizer.Position
	Source         string
}

func (err *SyntaxMatchError) Error() string {
	css := err.CSS
	if css == "" {
		css = "<empty string>"
	}

	pointer := strings.Repeat("-", utf8.RuneCountInString(err.CSS[:err.MismatchOffset]))

	return err.RawMessage +
		"\n  syntax: " + err.Syntax +
		"\n   value: " + css +
		"\n  --------" + pointer + "^"
}

var lineBreaks = regexp.MustCompile(`\n|\r\n?|\f`)

// advance moves pos past text.
func advance(pos tokenizer.Position, text string) tokenizer.Position {
	if text == "" {
		return pos
	}

	lines := lineBreaks.Split(text, -1)
	pos.Offset += len(text)
	pos.Line += len(lines) - 1

	if len(lines) == 1 {
		pos.Column += utf8.RuneCountInString(text)
	} else {
		pos.Column = utf8.RuneCountInString(lines[len(lines)-1]) + 1
	}

	return pos
}

func nodeEdge(node ast.Node, end bool) (tokenizer.Position, bool) {
	if node == nil || node.Location() == nil {
		return tokenizer.Position{}, false
	}

	if end {
		return node.Location().End, true
	}

	return node.Location().Start, true
}

var firstPosition = tokenizer.Position{Offset: 0, Line: 1, Column: 1}

func newMatchError(reason string, syntax grammar.Node, value ast.Node, tokens []*Token, longest int) *SyntaxMatchError {
	err := &SyntaxMatchError{RawMessage: reason, Syntax: "<generic>", Source: "<unknown>"}

	if syntax != nil {
		err.Syntax = grammar.Generate(syntax)
	}

	if value != nil && value.Location() != nil && value.Location().Source != "" {
		err.Source = value.Location().Source
	}

	var badNode ast.Node
	if longest < len(tokens) && tokens[longest].Node != nil && tokens[longest].Node != value {
		badNode = tokens[longest].Node
	}

	var css strings.Builder

	repeats := 0

	for idx, token := range tokens {
		if idx == longest {
			err.MismatchLength = len(token.Value)
			err.MismatchOffset = css.Len()
		}

		if badNode != nil && token.Node == badNode {
			if idx <= longest {
				repeats++
			} else {
				repeats = 0
			}
		}

		css.WriteString(token.Value)
	}

	err.CSS = css.String()

	if longest == len(tokens) || repeats > 1 {
		anchor := badNode
		if anchor == nil {
			anchor = value
		}

		start, ok := nodeEdge(anchor, true)
		if !ok {
			start = advance(firstPosition, err.CSS)
		}

		err.Start, err.End = start, start

		return err
	}

	start, ok := nodeEdge(badNode, false)
	if !ok {
		base, found := nodeEdge(value, false)
		if !found {
			base = firstPosition
		}

		start = advance(base, err.CSS[:err.MismatchOffset])
	}

	end, ok := nodeEdge(badNode, true)
	if !ok {
		end = advance(start, err.CSS[err.MismatchOffset:err.MismatchOffset+err.MismatchLength])
	}

	err.Start, err.End = start, end

	return err
}
