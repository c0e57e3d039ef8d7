package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
)

func first(t *testing.T, children *ast.List) ast.Node {
	t.Helper()

	node, ok := children.First()
	require.True(t, ok, "list is empty")

	return node
}

func parse(t *testing.T, source string, opts ...parser.Option) ast.Node {
	t.Helper()

	node, err := parser.Parse(source, opts...)
	require.NoError(t, err)

	return node
}

func TestParseRule(t *testing.T) {
	t.Parallel()

	sheet, ok := parse(t, "a{color:red}").(*ast.StyleSheet)
	require.True(t, ok)
	require.Equal(t, 1, sheet.Children.Len())

	rule, ok := first(t, sheet.Children).(*ast.Rule)
	require.True(t, ok)

	selectors, ok := rule.Prelude.(*ast.SelectorList)
	require.True(t, ok)

	selector, ok := first(t, selectors.Children).(*ast.Selector)
	require.True(t, ok)
	assert.Equal(t, &ast.TypeSelector{Name: "a"}, first(t, selector.Children))

	declaration, ok := first(t, rule.Block.Children).(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "color", declaration.Property)
	assert.False(t, declaration.IsImportant())

	value, ok := declaration.Value.(*ast.Value)
	require.True(t, ok)
	assert.Equal(t, &ast.Identifier{Name: "red"}, first(t, value.Children))
}

func TestParseMediaAtrule(t *testing.T) {
	t.Parallel()

	sheet, ok := parse(t, "@media screen and (min-width: 100px) { a { color: red } }").(*ast.StyleSheet)
	require.True(t, ok)

	atrule, ok := first(t, sheet.Children).(*ast.Atrule)
	require.True(t, ok)
	assert.Equal(t, "media", atrule.Name)

	prelude, ok := atrule.Prelude.(*ast.AtrulePrelude)
	require.True(t, ok)

	queries, ok := first(t, prelude.Children).(*ast.MediaQueryList)
	require.True(t, ok)

	query, ok := first(t, queries.Children).(*ast.MediaQuery)
	require.True(t, ok)

	nodes := query.Children.ToSlice()
	require.Len(t, nodes, 3)
	assert.Equal(t, &ast.Identifier{Name: "screen"}, nodes[0])
	assert.Equal(t, &ast.Identifier{Name: "and"}, nodes[1])
	assert.Equal(t, &ast.MediaFeature{Name: "min-width", Value: &ast.Dimension{Value: "100", Unit: "px"}}, nodes[2])

	require.NotNil(t, atrule.Block)
	assert.Equal(t, ast.KindRule, first(t, atrule.Block.Children).Kind())
}

func TestParseImportAndSupports(t *testing.T) {
	t.Parallel()

	sheet, ok := parse(t, "@import url(foo.css) screen;@supports (display: grid) and not (x:y) {}").(*ast.StyleSheet)
	require.True(t, ok)

	rules := sheet.Children.ToSlice()
	require.Len(t, rules, 2)

	imp, ok := rules[0].(*ast.Atrule)
	require.True(t, ok)
	assert.Nil(t, imp.Block)

	importPrelude, ok := imp.Prelude.(*ast.AtrulePrelude)
	require.True(t, ok)

	parts := importPrelude.Children.ToSlice()
	require.Len(t, parts, 2)
	assert.Equal(t, &ast.Url{Value: "foo.css"}, parts[0])
	assert.Equal(t, ast.KindMediaQueryList, parts[1].Kind())

	supports, ok := rules[1].(*ast.Atrule)
	require.True(t, ok)

	supportsPrelude, ok := supports.Prelude.(*ast.AtrulePrelude)
	require.True(t, ok)

	kinds := make([]ast.Kind, 0, 4)
	for node := range supportsPrelude.Children.All() {
		kinds = append(kinds, node.Kind())
	}

	assert.Equal(t, []ast.Kind{ast.KindParentheses, ast.KindIdentifier, ast.KindIdentifier, ast.KindParentheses}, kinds)

	group, ok := first(t, supportsPrelude.Children).(*ast.Parentheses)
	require.True(t, ok)
	assert.Equal(t, ast.KindDeclaration, first(t, group.Children).Kind())
}

func TestRawFallback(t *testing.T) {
	t.Parallel()

	var messages []string

	onError := parser.WithOnParseError(func(err *parser.SyntaxError, fallback ast.Node) {
		messages = append(messages, err.Message)

		assert.Equal(t, ast.KindRaw, fallback.Kind())
	})

	sheet, ok := parse(t, "a!{color red}", onError).(*ast.StyleSheet)
	require.True(t, ok)

	rule, ok := first(t, sheet.Children).(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, &ast.Raw{Value: "a!"}, rule.Prelude)
	assert.Equal(t, &ast.Raw{Value: "color red"}, first(t, rule.Block.Children))
	assert.Equal(t, []string{"Unexpected input", "Colon is expected"}, messages)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("red !", parser.WithContext(parser.ContextValue))
	require.Error(t, err)

	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "Unexpected input", syntaxErr.Message)
	assert.Equal(t, 4, syntaxErr.Offset)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Equal(t, 5, syntaxErr.Column)
	assert.Equal(t, "    1 |red !\n-----------^", syntaxErr.SourceFragment(0))
	assert.Equal(t, "Parse error: Unexpected input\n    1 |red !\n-----------^", syntaxErr.FormattedMessage())

	_, err = parser.Parse("a", parser.WithContext("nope"))
	require.ErrorIs(t, err, parser.ErrUnknownContext)

	var contextErr *parser.SyntaxError
	assert.NotErrorAs(t, err, &contextErr)
}

func TestPositions(t *testing.T) {
	t.Parallel()

	sheet, ok := parse(t, "a{}\nb{}", parser.WithPositions(true), parser.WithFilename("x.css")).(*ast.StyleSheet)
	require.True(t, ok)

	rules := sheet.Children.ToSlice()
	require.Len(t, rules, 2)

	loc := rules[1].Location()
	require.NotNil(t, loc)
	assert.Equal(t, "x.css", loc.Source)
	assert.Equal(t, ast.Position{Offset: 4, Line: 2, Column: 1}, loc.Start)
	assert.Equal(t, ast.Position{Offset: 7, Line: 2, Column: 4}, loc.End)

	assert.Nil(t, first(t, parse(t, "a{}").(*ast.StyleSheet).Children).Location())
}

func TestComments(t *testing.T) {
	t.Parallel()

	var comments []string

	sheet, ok := parse(t, "/* a */b{}/*!c*/", parser.WithOnComment(func(value string, _ *ast.Location) {
		comments = append(comments, value)
	})).(*ast.StyleSheet)
	require.True(t, ok)

	assert.Equal(t, []string{" a ", "!c"}, comments)

	nodes := sheet.Children.ToSlice()
	require.Len(t, nodes, 2)
	assert.Equal(t, &ast.Comment{Value: "!c"}, nodes[1])
}

func TestDeclarations(t *testing.T) {
	t.Parallel()

	decl, ok := parse(t, "color: red !important", parser.WithContext(parser.ContextDeclaration)).(*ast.Declaration)
	require.True(t, ok)
	assert.True(t, decl.IsImportant())
	assert.Equal(t, "important", decl.Important)

	decl, ok = parse(t, "color:red ! ie", parser.WithContext(parser.ContextDeclaration)).(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "ie", decl.Important)

	decl, ok = parse(t, "--x: { a }", parser.WithContext(parser.ContextDeclaration)).(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, &ast.Raw{Value: " { a }"}, decl.Value)

	decl, ok = parse(t, "*zoom: 1", parser.WithContext(parser.ContextDeclaration)).(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "*zoom", decl.Property)
}

func TestSelectors(t *testing.T) {
	t.Parallel()

	selector, ok := parse(t, `svg|a.b#c[href^="x" i]::before > :hover`, parser.WithContext(parser.ContextSelector)).(*ast.Selector)
	require.True(t, ok)

	nodes := selector.Children.ToSlice()
	require.Len(t, nodes, 7)
	assert.Equal(t, &ast.TypeSelector{Name: "svg|a"}, nodes[0])
	assert.Equal(t, &ast.ClassSelector{Name: "b"}, nodes[1])
	assert.Equal(t, &ast.IdSelector{Name: "c"}, nodes[2])
	assert.Equal(t, &ast.AttributeSelector{
		Name:    &ast.Identifier{Name: "href"},
		Matcher: "^=",
		Value:   &ast.String{Value: "x"},
		Flags:   "i",
	}, nodes[3])
	assert.Equal(t, &ast.PseudoElementSelector{Name: "before"}, nodes[4])
	assert.Equal(t, &ast.Combinator{Name: ">"}, nodes[5])
	assert.Equal(t, &ast.PseudoClassSelector{Name: "hover"}, nodes[6])

	selector, ok = parse(t, "a b", parser.WithContext(parser.ContextSelector)).(*ast.Selector)
	require.True(t, ok)
	assert.Equal(t, &ast.Combinator{Name: " "}, selector.Children.ToSlice()[1])
}

func TestAnPlusB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		a     string
		b     string
	}{
		{"2n+1", "2", "1"},
		{"-n+3", "-1", "3"},
		{"n-1", "1", "-1"},
		{"+5", "", "5"},
		{"2n - 1", "2", "-1"},
		{"+n", "1", ""},
		{"3", "", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			selector, ok := parse(t, ":nth-child("+tt.input+")", parser.WithContext(parser.ContextSelector)).(*ast.Selector)
			require.True(t, ok)

			pseudo, ok := first(t, selector.Children).(*ast.PseudoClassSelector)
			require.True(t, ok)

			nth, ok := first(t, pseudo.Children).(*ast.Nth)
			require.True(t, ok)
			assert.Equal(t, &ast.AnPlusB{A: tt.a, B: tt.b}, nth.Nth)
		})
	}

	_, err := parser.Parse(":nth-child(2x)", parser.WithContext(parser.ContextSelector))

	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "N is expected", syntaxErr.Message)
}

func TestNthOfSelector(t *testing.T) {
	t.Parallel()

	selector, ok := parse(t, ":nth-child(odd of .a)", parser.WithContext(parser.ContextSelector)).(*ast.Selector)
	require.True(t, ok)

	pseudo, ok := first(t, selector.Children).(*ast.PseudoClassSelector)
	require.True(t, ok)

	nth, ok := first(t, pseudo.Children).(*ast.Nth)
	require.True(t, ok)
	assert.Equal(t, &ast.Identifier{Name: "odd"}, nth.Nth)
	require.NotNil(t, nth.Selector)
	assert.Equal(t, 1, nth.Selector.Children.Len())
}

func TestUnicodeRange(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"u+0025-00ff", "U+4??", "u+a5", "u+???"} {
		value, ok := parse(t, input, parser.WithContext(parser.ContextValue)).(*ast.Value)
		require.True(t, ok, input)
		assert.Equal(t, &ast.UnicodeRange{Value: input}, first(t, value.Children), input)
	}

	_, err := parser.Parse("u+0000000", parser.WithContext(parser.ContextValue))

	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "Too many hex digits", syntaxErr.Message)
}

func TestValues(t *testing.T) {
	t.Parallel()

	value, ok := parse(t, `1px solid #fff, calc(1% - 2) url("a b") var(--x, 1)`, parser.WithContext(parser.ContextValue)).(*ast.Value)
	require.True(t, ok)

	kinds := make([]ast.Kind, 0, 8)
	for node := range value.Children.All() {
		kinds = append(kinds, node.Kind())
	}

	assert.Equal(t, []ast.Kind{
		ast.KindDimension, ast.KindIdentifier, ast.KindHash, ast.KindOperator,
		ast.KindFunction, ast.KindUrl, ast.KindFunction,
	}, kinds)

	nodes := value.Children.ToSlice()
	assert.Equal(t, &ast.Url{Value: "a b"}, nodes[5])

	calc, ok := nodes[4].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, []ast.Node{&ast.Percentage{Value: "1"}, &ast.Operator{Value: " - "}, &ast.Number{Value: "2"}}, calc.Children.ToSlice())

	variable, ok := nodes[6].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, []ast.Node{&ast.Identifier{Name: "--x"}, &ast.Operator{Value: ","}, &ast.Raw{Value: " 1"}}, variable.Children.ToSlice())
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	rule, ok := parse(t, "a, b {x: 1}", parser.WithContext(parser.ContextRule),
		parser.WithParseRulePrelude(false), parser.WithParseValue(false)).(*ast.Rule)
	require.True(t, ok)
	assert.Equal(t, &ast.Raw{Value: "a, b"}, rule.Prelude)

	decl, ok := first(t, rule.Block.Children).(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, &ast.Raw{Value: "1"}, decl.Value)

	atrule, ok := parse(t, "@media print;", parser.WithContext(parser.ContextAtrule), parser.WithParseAtrulePrelude(false)).(*ast.Atrule)
	require.True(t, ok)
	assert.Equal(t, &ast.Raw{Value: "print"}, atrule.Prelude)

	prelude, ok := parse(t, "screen, print", parser.WithContext(parser.ContextAtrulePrelude), parser.WithAtrule("media")).(*ast.AtrulePrelude)
	require.True(t, ok)
	assert.Equal(t, ast.KindMediaQueryList, first(t, prelude.Children).Kind())
}

func TestContexts(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{
		"default", "stylesheet", "atrule", "atrulePrelude", "mediaQueryList", "mediaQuery",
		"rule", "selectorList", "selector", "block", "declarationList", "declaration", "value",
	}, parser.Contexts())

	list, ok := parse(t, "color: red; & .a {}", parser.WithContext(parser.ContextDeclarationList)).(*ast.DeclarationList)
	require.True(t, ok)
	assert.Equal(t, 2, list.Children.Len())
	assert.Equal(t, ast.KindRule, list.Children.ToSlice()[1].Kind())
}
