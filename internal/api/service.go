// Package api holds the request handling shared by the HTTP API and the
// MCP tools: parsing, validation, generation and value matching on one
// syntax.
package api

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
	"github.com/Sumatoshi-tech/csstree/pkg/validator"
)

// DefaultMaxInputBytes is the default cap on CSS input (1 MB).
const DefaultMaxInputBytes = 1 << 20

// Sentinel errors for request validation.
var (
	// ErrEmptyCSS indicates the css parameter is empty.
	ErrEmptyCSS = errors.New("css parameter is required and must not be empty")
	// ErrInputTooLarge indicates the input exceeds the size limit.
	ErrInputTooLarge = errors.New("css input exceeds maximum size")
	// ErrMatchTarget indicates a match request without exactly one of property, type or syntax.
	ErrMatchTarget = errors.New("exactly one of property, type or syntax is required")
	// ErrGenerateSource indicates a generate request without exactly one of css or ast.
	ErrGenerateSource = errors.New("exactly one of css or ast is required")
)

// ParseRequest asks for the tree of a CSS source.
type ParseRequest struct {
	CSS       string `json:"css"                 jsonschema:"CSS source to parse"`
	Context   string `json:"context,omitempty"   jsonschema:"parse context such as stylesheet, declaration or value (default: stylesheet)"`
	Positions bool   `json:"positions,omitempty" jsonschema:"include source locations in the tree"`
}

// ParseError is a recovered parse error.
type ParseError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// ParseResponse is the tree of a source in plain form.
type ParseResponse struct {
	AST    map[string]any `json:"ast"`
	Errors []ParseError   `json:"errors,omitempty"`
}

// ValidateRequest asks for the problems of a stylesheet.
type ValidateRequest struct {
	CSS string `json:"css" jsonschema:"CSS stylesheet to validate"`
}

// GenerateRequest asks for CSS printed from a source or from a plain tree.
type GenerateRequest struct {
	CSS  string         `json:"css,omitempty"  jsonschema:"CSS source to normalize"`
	AST  map[string]any `json:"ast,omitempty"  jsonschema:"plain tree as returned by parse, used instead of css"`
	Mode string         `json:"mode,omitempty" jsonschema:"whitespace mode: safe or spec (default: safe)"`
}

// GenerateResponse carries the printed CSS.
type GenerateResponse struct {
	CSS string `json:"css"`
}

// MatchRequest asks whether a value matches a property, a type or a syntax.
type MatchRequest struct {
	Value    string `json:"value"              jsonschema:"CSS value to match"`
	Property string `json:"property,omitempty" jsonschema:"property whose syntax the value is matched against"`
	Type     string `json:"type,omitempty"     jsonschema:"type name (without angle brackets) to match against"`
	Syntax   string `json:"syntax,omitempty"   jsonschema:"value definition syntax to match against"`
}

// MatchResponse is the outcome of a match.
type MatchResponse struct {
	Matched    bool                 `json:"matched"`
	Reason     string               `json:"reason,omitempty"`
	Error      string               `json:"error,omitempty"`
	Iterations int                  `json:"iterations"`
	Tree       *lexer.MatchTreeJSON `json:"tree,omitempty"`
}

// Service runs requests against one syntax. It is safe for concurrent use.
type Service struct {
	syntax   *syntax.Syntax
	maxInput int
}

// NewService creates a Service. A nil syn uses syntax.Default() and a
// non-positive maxInput uses DefaultMaxInputBytes.
func NewService(syn *syntax.Syntax, maxInput int) *Service {
	if syn == nil {
		syn = syntax.Default()
	}

	if maxInput <= 0 {
		maxInput = DefaultMaxInputBytes
	}

	return &Service{syntax: syn, maxInput: maxInput}
}

// Syntax returns the syntax requests run against.
func (svc *Service) Syntax() *syntax.Syntax {
	return svc.syntax
}

func (svc *Service) checkSize(text string) error {
	if len(text) > svc.maxInput {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(text), svc.maxInput)
	}

	return nil
}

func (svc *Service) checkCSS(css string) error {
	if css == "" {
		return ErrEmptyCSS
	}

	return svc.checkSize(css)
}

// Parse parses a source. Recovered errors are listed in the response; an
// error is returned when the source cannot be parsed at all.
func (svc *Service) Parse(req ParseRequest) (*ParseResponse, error) {
	err := svc.checkCSS(req.CSS)
	if err != nil {
		return nil, err
	}

	resp := &ParseResponse{}

	opts := []parser.Option{
		parser.WithPositions(req.Positions),
		parser.WithOnParseError(func(err *parser.SyntaxError, _ ast.Node) {
			resp.Errors = append(resp.Errors, ParseError{Message: err.Message, Line: err.Line, Column: err.Column})
		}),
	}

	if req.Context != "" {
		opts = append(opts, parser.WithContext(req.Context))
	}

	root, err := svc.syntax.Parse(req.CSS, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse css: %w", err)
	}

	resp.AST = ast.ToPlain(root)

	return resp, nil
}

// Validate checks a stylesheet.
func (svc *Service) Validate(req ValidateRequest) (*validator.Report, error) {
	err := svc.checkCSS(req.CSS)
	if err != nil {
		return nil, err
	}

	report, err := validator.Validate(svc.syntax, req.CSS)
	if err != nil {
		return nil, fmt.Errorf("validate css: %w", err)
	}

	if report.Problems == nil {
		report.Problems = []validator.Problem{}
	}

	return report, nil
}

// Generate prints CSS from a source or a plain tree.
func (svc *Service) Generate(req GenerateRequest) (*GenerateResponse, error) {
	if (req.CSS == "") == (req.AST == nil) {
		return nil, ErrGenerateSource
	}

	mode, err := generator.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	var root ast.Node

	if req.AST != nil {
		node, err := ast.FromPlain(req.AST)
		if err != nil {
			return nil, fmt.Errorf("decode ast: %w", err)
		}

		root = node
	} else {
		err = svc.checkSize(req.CSS)
		if err != nil {
			return nil, err
		}

		node, err := svc.syntax.Parse(req.CSS)
		if err != nil {
			return nil, fmt.Errorf("parse css: %w", err)
		}

		root = node
	}

	css, err := svc.syntax.Generate(root, generator.WithMode(mode))
	if err != nil {
		return nil, fmt.Errorf("generate css: %w", err)
	}

	return &GenerateResponse{CSS: css}, nil
}

// Match matches a value. A mismatch is a successful response with the
// mismatch details; unknown references are returned as errors.
func (svc *Service) Match(req MatchRequest) (*MatchResponse, error) {
	err := svc.checkSize(req.Value)
	if err != nil {
		return nil, err
	}

	lex := svc.syntax.Lexer()
	value := lexer.CSS(req.Value)

	var result *lexer.MatchResult

	switch {
	case req.Property != "" && req.Type == "" && req.Syntax == "":
		result = lex.MatchProperty(req.Property, value)
	case req.Type != "" && req.Property == "" && req.Syntax == "":
		result = lex.MatchType(req.Type, value)
	case req.Syntax != "" && req.Property == "" && req.Type == "":
		result = lex.Match(req.Syntax, value)
	default:
		return nil, ErrMatchTarget
	}

	var refErr *lexer.SyntaxReferenceError
	if errors.As(result.Error, &refErr) {
		return nil, refErr
	}

	resp := &MatchResponse{
		Matched:    result.Matched != nil,
		Reason:     result.Reason,
		Iterations: result.Iterations,
		Tree:       result.Matched.Wire(),
	}

	if result.Error != nil {
		resp.Error = result.Error.Error()
	}

	return resp, nil
}

// IsClientError reports whether err was caused by the request rather
// than by the service.
func IsClientError(err error) bool {
	var (
		syntaxErr *parser.SyntaxError
		refErr    *lexer.SyntaxReferenceError
	)

	switch {
	case errors.Is(err, ErrEmptyCSS), errors.Is(err, ErrInputTooLarge),
		errors.Is(err, ErrMatchTarget), errors.Is(err, ErrGenerateSource),
		errors.Is(err, parser.ErrUnknownContext), errors.Is(err, parser.ErrInputTooLarge),
		errors.Is(err, generator.ErrUnknownMode), errors.Is(err, generator.ErrMissingNode),
		errors.Is(err, ast.ErrUnknownType), errors.Is(err, ast.ErrBadPlain):
		return true
	case errors.As(err, &syntaxErr), errors.As(err, &refErr):
		return true
	default:
		return false
	}
}
