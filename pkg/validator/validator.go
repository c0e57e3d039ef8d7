// Package validator checks a stylesheet against a syntax dictionary. It
// collects recovered parse errors, unknown properties and at-rules, and
// values that do not match their syntax.
package validator

import (
	"errors"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/names"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

// Severity ranks a problem.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind classifies a problem.
type Kind string

// Problem kinds.
const (
	KindParse             Kind = "parse"
	KindUnknownProperty   Kind = "unknown-property"
	KindUnknownAtrule     Kind = "unknown-atrule"
	KindUnknownDescriptor Kind = "unknown-descriptor"
	KindInvalidValue      Kind = "invalid-value"
	KindInvalidPrelude    Kind = "invalid-prelude"
)

// Problem is one finding. Start and End are source positions; End equals
// Start for point problems.
type Problem struct {
	Severity    Severity     `json:"severity"`
	Kind        Kind         `json:"kind"`
	Message     string       `json:"message"`
	Details     string       `json:"details,omitempty"`
	Name        string       `json:"name,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Start       ast.Position `json:"start"`
	End         ast.Position `json:"end"`
}

// Report is the outcome of a validation run.
type Report struct {
	Root     ast.Node  `json:"-"`
	Problems []Problem `json:"problems"`
}

// Valid reports whether no problem was found.
func (report *Report) Valid() bool {
	return len(report.Problems) == 0
}

// Errors counts the problems of error severity.
func (report *Report) Errors() int {
	count := 0

	for _, problem := range report.Problems {
		if problem.Severity == SeverityError {
			count++
		}
	}

	return count
}

// Validate parses source with positions enabled and checks every
// declaration and at-rule against syn. Extra parser options are applied
// after the defaults. The error is only set when parsing fails outright.
func Validate(syn *syntax.Syntax, source string, opts ...parser.Option) (*Report, error) {
	report := &Report{}

	parseOpts := []parser.Option{
		parser.WithPositions(true),
		parser.WithOnParseError(func(err *parser.SyntaxError, _ ast.Node) {
			report.Problems = append(report.Problems, parseProblem(err))
		}),
	}
	parseOpts = append(parseOpts, opts...)

	root, err := syn.Parse(source, parseOpts...)
	if err != nil {
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			report.Problems = append(report.Problems, parseProblem(syntaxErr))

			return report, nil
		}

		return nil, err
	}

	report.Root = root
	checker := &checker{lex: syn.Lexer(), report: report}

	err = walker.Walk(root, walker.Options{
		Enter: checker.enter,
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func parseProblem(err *parser.SyntaxError) Problem {
	pos := ast.Position{Offset: err.Offset, Line: err.Line, Column: err.Column}

	return Problem{
		Severity: SeverityError,
		Kind:     KindParse,
		Message:  err.Message,
		Details:  err.FormattedMessage(),
		Start:    pos,
		End:      pos,
	}
}

type checker struct {
	lex    *lexer.Lexer
	report *Report
}

func (c *checker) add(problem Problem) {
	c.report.Problems = append(c.report.Problems, problem)
}

func (c *checker) enter(ctx *walker.Context, node ast.Node, _ walker.Item) walker.Action {
	switch node := node.(type) {
	case *ast.Atrule:
		c.atrule(node)
	case *ast.Declaration:
		c.declaration(ctx, node)

		return walker.Skip
	}

	return walker.Continue
}

func (c *checker) atrule(node *ast.Atrule) {
	err := c.lex.CheckAtruleName(node.Name)
	if err != nil {
		c.add(Problem{
			Severity:    SeverityWarning,
			Kind:        KindUnknownAtrule,
			Message:     err.Error(),
			Name:        node.Name,
			Suggestions: names.Suggest(node.Name, c.lex.Atrules(), 0),
			Start:       startOf(node),
			End:         advanceName(startOf(node), "@"+node.Name),
		})

		return
	}

	var prelude lexer.Value
	if node.Prelude != nil {
		prelude = lexer.Tree(node.Prelude)
	}

	err = c.lex.CheckAtrulePrelude(node.Name, prelude)
	if err != nil {
		c.add(Problem{
			Severity: SeverityError,
			Kind:     KindInvalidPrelude,
			Message:  err.Error(),
			Name:     node.Name,
			Start:    startOf(node),
			End:      endOf(node),
		})

		return
	}

	if prelude == nil || c.lex.GetAtrulePrelude(node.Name, true) == nil {
		return
	}

	result := c.lex.MatchAtrulePrelude(node.Name, prelude)
	if result.Error != nil {
		c.mismatch(KindInvalidPrelude, "@"+node.Name, node.Prelude, result.Error)
	}
}

// descriptorScope returns the at-rule whose block directly holds a
// declaration, when that at-rule has descriptors.
func (c *checker) descriptorScope(ctx *walker.Context) string {
	if ctx.Atrule == nil {
		return ""
	}

	if ctx.Rule != nil && ctx.Rule.Location() != nil && ctx.Atrule.Location() != nil &&
		ctx.Rule.Location().Start.Offset > ctx.Atrule.Location().Start.Offset {
		return ""
	}

	atrule, ok := ctx.Atrule.(*ast.Atrule)
	if !ok {
		return ""
	}

	entry := c.lex.GetAtrule(atrule.Name, true)
	if entry == nil || entry.Descriptors == nil {
		return ""
	}

	return atrule.Name
}

func (c *checker) declaration(ctx *walker.Context, node *ast.Declaration) {
	if names.IsCustomProperty(node.Property, 0) {
		return
	}

	if atrule := c.descriptorScope(ctx); atrule != "" {
		c.descriptor(atrule, node)

		return
	}

	result := c.lex.MatchDeclaration(node)
	if result.Error == nil {
		return
	}

	var refErr *lexer.SyntaxReferenceError
	if errors.As(result.Error, &refErr) && refErr.Reference == node.Property {
		c.add(Problem{
			Severity:    SeverityWarning,
			Kind:        KindUnknownProperty,
			Message:     refErr.Error(),
			Name:        node.Property,
			Suggestions: names.Suggest(node.Property, c.lex.Properties(), 0),
			Start:       startOf(node),
			End:         advanceName(startOf(node), node.Property),
		})

		return
	}

	c.mismatch(KindInvalidValue, node.Property, node.Value, result.Error)
}

func (c *checker) descriptor(atrule string, node *ast.Declaration) {
	err := c.lex.CheckAtruleDescriptorName(atrule, node.Property)
	if err != nil {
		c.add(Problem{
			Severity: SeverityWarning,
			Kind:     KindUnknownDescriptor,
			Message:  err.Error() + " in `@" + atrule + "`",
			Name:     node.Property,
			Suggestions: names.Suggest(node.Property,
				descriptorNames(c.lex.GetAtrule(atrule, true)), 0),
			Start: startOf(node),
			End:   advanceName(startOf(node), node.Property),
		})

		return
	}

	result := c.lex.MatchAtruleDescriptor(atrule, node.Property, lexer.Tree(node.Value))
	if result.Error != nil {
		c.mismatch(KindInvalidValue, node.Property, node.Value, result.Error)
	}
}

func (c *checker) mismatch(kind Kind, name string, value ast.Node, err error) {
	if errors.Is(err, lexer.ErrVarNotSupported) {
		return
	}

	problem := Problem{
		Severity: SeverityError,
		Kind:     kind,
		Message:  "Invalid value for `" + name + "`",
		Details:  err.Error(),
		Name:     name,
		Start:    startOf(value),
		End:      endOf(value),
	}

	var matchErr *lexer.SyntaxMatchError
	if errors.As(err, &matchErr) {
		problem.Start, problem.End = matchErr.Start, matchErr.End
	} else {
		problem.Message += ": " + firstLine(err.Error())
	}

	c.add(problem)
}

func descriptorNames(atrule *lexer.Atrule) []string {
	if atrule == nil {
		return nil
	}

	result := make([]string, 0, len(atrule.Descriptors))
	for name := range atrule.Descriptors {
		result = append(result, name)
	}

	return result
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")

	return line
}

func startOf(node ast.Node) ast.Position {
	if node == nil || node.Location() == nil {
		return ast.Position{Line: 1, Column: 1}
	}

	return node.Location().Start
}

func endOf(node ast.Node) ast.Position {
	if node == nil || node.Location() == nil {
		return ast.Position{Line: 1, Column: 1}
	}

	return node.Location().End
}

// advanceName moves pos past a name that sits on one line.
func advanceName(pos ast.Position, name string) ast.Position {
	pos.Offset += len(name)
	pos.Column += len([]rune(name))

	return pos
}
