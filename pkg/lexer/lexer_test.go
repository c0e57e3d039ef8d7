package lexer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
)

func genericLexer(properties map[string]string) *lexer.Lexer {
	return lexer.New(lexer.Config{Syntaxes: lexer.Syntaxes{Generic: true, Properties: properties}})
}

func TestMatchMultipliers(t *testing.T) {
	t.Parallel()

	lex := genericLexer(nil)

	tests := []struct {
		syntax string
		value  string
		ok     bool
	}{
		{"<length>{2,4}", "1px", false},
		{"<length>{2,4}", "1px 2px", true},
		{"<length>{2,4}", "1px 2px 3px", true},
		{"<length>{2,4}", "1px 2px 3px 4px", true},
		{"<length>{2,4}", "1px 2px 3px 4px 5px", false},
		{"<length>#{2}", "1px, 2px", true},
		{"<length>#{2}", "1px", false},
		{"<length>#{2}", "1px, 2px, 3px", false},
		{"<length>#", "1px,2px , 3px", true},
		{"<length>#", "1px,,2px", false},
		{"<number>+", "1 2 3", true},
		{"<number>*", "", true},
		{"<number>?", "", true},
		{"a && b", "b a", true},
		{"a && b", "a b", true},
		{"a && b", "a", false},
		{"a || b", "b", true},
		{"a || b", "b a", true},
		{"a || b", "a a", false},
		{"a | b", "b", true},
		{"a b", "b a", false},
		{"[a? b?]!", "", false},
		{"[a? b?]", "", true},
		{"[a? b?]!", "b", true},
		{"<integer [1,10]>", "5", true},
		{"<integer [1,10]>", "11", false},
		{"<length>", "0", true},
		{"<length>", "1", false},
		{"<length>", "calc(1px + 2em)", true},
		{"<hex-color>", "#fff", true},
		{"<hex-color>", "#ffff1", false},
		{"<urange>", "U+0-7F", true},
		{"<an-plus-b>", "2n+1", true},
		{"<custom-ident>", "foo", true},
		{"<custom-ident>", "inherit", false},
		{"rgb( <number>#{3} )", "rgb(1, 2, 3)", true},
	}

	for _, tt := range tests {
		result := lex.Match(tt.syntax, lexer.CSS(tt.value))

		if tt.ok {
			assert.NotNil(t, result.Matched, "%s ~ %q: %v", tt.syntax, tt.value, result.Error)
			assert.NoError(t, result.Error, "%s ~ %q", tt.syntax, tt.value)
			assert.Equal(t, lexer.ReasonMatch, result.Reason)
		} else {
			assert.Nil(t, result.Matched, "%s ~ %q", tt.syntax, tt.value)
			assert.Error(t, result.Error, "%s ~ %q", tt.syntax, tt.value)
		}
	}
}

func TestMatchProperty(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	tests := []struct {
		property string
		value    string
		ok       bool
	}{
		{"color", "red", true},
		{"color", "#abc", true},
		{"color", "rgb(1 2 3)", true},
		{"color", "inherit", true},
		{"color", "#zzz", false},
		{"margin", "1px 2px 3px 4px", true},
		{"margin", "1px 2px 3px 4px 5px", false},
		{"margin", "auto", true},
		{"-webkit-width", "10px", true},
		{"width", "10px 10px", false},
		{"border", "1px solid red", true},
	}

	for _, tt := range tests {
		result := lex.MatchProperty(tt.property, lexer.CSS(tt.value))

		if tt.ok {
			assert.NotNil(t, result.Matched, "%s: %q: %v", tt.property, tt.value, result.Error)
		} else {
			assert.Nil(t, result.Matched, "%s: %q", tt.property, tt.value)
		}
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	result := lex.MatchProperty("color", lexer.CSS("#zzz"))

	var matchErr *lexer.SyntaxMatchError
	require.ErrorAs(t, result.Error, &matchErr)
	assert.Equal(t, lexer.ReasonMismatch, matchErr.RawMessage)
	assert.Equal(t, "<color>", matchErr.Syntax)
	assert.Equal(t, "#zzz", matchErr.CSS)
	assert.Equal(t, 0, matchErr.MismatchOffset)
	assert.Equal(t, 4, matchErr.MismatchLength)
	assert.Equal(t, "Mismatch\n  syntax: <color>\n   value: #zzz\n  --------^", matchErr.Error())

	result = lex.MatchProperty("margin", lexer.CSS("1px foo"))
	require.ErrorAs(t, result.Error, &matchErr)
	assert.Equal(t, 4, matchErr.MismatchOffset)
	assert.Equal(t, 1, matchErr.Start.Line)
	assert.Equal(t, 5, matchErr.Start.Column)

	result = lex.MatchProperty("width", lexer.CSS("var(--x)"))
	require.ErrorIs(t, result.Error, lexer.ErrVarNotSupported)

	result = lex.MatchProperty("--custom", lexer.CSS("1px"))
	require.ErrorIs(t, result.Error, lexer.ErrCustomProperty)

	result = lex.MatchProperty("colr", lexer.CSS("red"))

	var refErr *lexer.SyntaxReferenceError
	require.ErrorAs(t, result.Error, &refErr)
	assert.Equal(t, "Unknown property `colr`", refErr.Error())

	result = lex.MatchType("no-such-type", lexer.CSS("x"))
	require.ErrorAs(t, result.Error, &refErr)

	result = lex.Match("<no-such-type>", lexer.CSS("x"))
	require.ErrorAs(t, result.Error, &refErr)
	assert.Equal(t, "Bad syntax reference `<no-such-type>`", refErr.Error())

	result = lex.MatchDeclaration(&ast.Identifier{Name: "x"})
	require.ErrorIs(t, result.Error, lexer.ErrNotDeclaration)
}

func TestMatchIterationLimit(t *testing.T) {
	t.Parallel()

	lex := lexer.New(lexer.Config{Syntaxes: lexer.Syntaxes{Generic: true}, MaxIterations: 3})

	result := lex.Match("<length>+", lexer.CSS("1px 2px 3px 4px 5px"))
	require.Nil(t, result.Matched)
	assert.Equal(t, lexer.ReasonIterationsExceeded, result.Reason)

	var matchErr *lexer.SyntaxMatchError
	require.ErrorAs(t, result.Error, &matchErr)
	assert.Equal(t, lexer.ReasonIterationsExceeded, matchErr.RawMessage)
}

func TestMatchObserver(t *testing.T) {
	t.Parallel()

	var stats []lexer.MatchStats

	lex := lexer.New(lexer.Config{
		Syntaxes: lexer.Syntaxes{Generic: true, Properties: map[string]string{"size": "<length>"}},
		OnMatch:  func(s lexer.MatchStats) { stats = append(stats, s) },
	})

	lex.MatchProperty("size", lexer.CSS("1px"))
	lex.MatchProperty("size", lexer.CSS("red"))
	lex.Match("<number>", lexer.CSS("1"))

	require.Len(t, stats, 3)
	assert.Equal(t, "property", stats[0].Kind)
	assert.True(t, stats[0].Matched)
	assert.False(t, stats[1].Matched)
	assert.Equal(t, "syntax", stats[2].Kind)
	assert.Equal(t, "<number>", stats[2].Name)
}

func TestMatchTree(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	tree, err := lex.MatchAsTree("<length> <color>", lexer.CSS("1px red"))
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Len(t, tree.Match, 2)

	length, ok := tree.Match[0].Syntax.(*grammar.Type)
	require.True(t, ok)
	assert.Equal(t, "length", length.Name)
	require.Len(t, tree.Match[0].Match, 1)
	assert.Equal(t, "1px", tree.Match[0].Match[0].Token)
	assert.True(t, tree.Match[0].Match[0].IsLeaf())

	color, ok := tree.Match[1].Syntax.(*grammar.Type)
	require.True(t, ok)
	assert.Equal(t, "color", color.Name)
	assert.False(t, tree.Match[1].IsLeaf())

	_, err = lex.MatchAsTree("<length>", lexer.CSS("red"))
	require.Error(t, err)
}

func TestMatchTreeJSON(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	tree, err := lex.MatchAsTree("<length>", lexer.CSS("1px"))
	require.NoError(t, err)

	data, err := tree.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"syntax":"<length>"`)
	assert.Contains(t, string(data), `"token":"1px"`)

	var decoded lexer.MatchTreeJSON
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tree.Wire(), &decoded)

	result := lex.MatchDeclaration(parseDeclaration(t, "width: 2px"))
	require.NotNil(t, result.Matched)

	data, err = json.Marshal(result.Matched)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"node":"Dimension"`)

	var nilTree *lexer.MatchTree
	assert.Nil(t, nilTree.Wire())
}

func parseDeclaration(t *testing.T, source string) *ast.Declaration {
	t.Helper()

	node, err := parser.Parse(source, parser.WithContext(parser.ContextDeclaration), parser.WithPositions(true))
	require.NoError(t, err)

	decl, ok := node.(*ast.Declaration)
	require.True(t, ok)

	return decl
}

func TestTrace(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()
	decl := parseDeclaration(t, "border: 1px solid red")

	result := lex.MatchDeclaration(decl)
	require.NotNil(t, result.Matched, "%v", result.Error)

	value, ok := decl.Value.(*ast.Value)
	require.True(t, ok)

	red, ok := value.Children.Last()
	require.True(t, ok)

	trace := result.GetTrace(red)
	require.NotEmpty(t, trace)
	assert.Equal(t, &grammar.Property{Name: "border"}, trace[0])
	assert.True(t, result.IsProperty(red, "border"))
	assert.True(t, result.IsType(red, "color"))
	assert.True(t, result.IsKeyword(red))
	assert.False(t, result.IsType(red, "length"))

	assert.Nil(t, result.GetTrace(&ast.Identifier{Name: "elsewhere"}))
}

func TestFragments(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()
	decl := parseDeclaration(t, "border: 1px solid red")

	found := lex.FindDeclarationValueFragments(decl, grammar.KindType, "color")
	require.Len(t, found, 1)
	require.Len(t, found[0].Nodes, 1)
	assert.Same(t, decl.Value, found[0].Parent)
	assert.Equal(t, "red", found[0].Nodes[0].(*ast.Identifier).Name)

	root, err := parser.Parse(".a{border:1px solid red;color:blue}.b{outline:thin dotted green}")
	require.NoError(t, err)

	all := lex.FindAllFragments(root, grammar.KindType, "color")
	assert.Len(t, all, 3)
}

func TestAtrules(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	var refErr *lexer.SyntaxReferenceError
	require.ErrorAs(t, lex.CheckAtruleName("nope"), &refErr)
	assert.Equal(t, "Unknown at-rule `@nope`", refErr.Error())

	require.NoError(t, lex.CheckAtruleName("-webkit-keyframes"))
	require.ErrorIs(t, lex.CheckAtrulePrelude("font-face", lexer.CSS("x")), lexer.ErrUnexpectedPrelude)
	require.NoError(t, lex.CheckAtrulePrelude("font-face", nil))
	require.ErrorIs(t, lex.CheckAtrulePrelude("import", nil), lexer.ErrMissingPrelude)
	require.ErrorIs(t, lex.CheckAtruleDescriptorName("media", "x"), lexer.ErrNoDescriptors)
	require.ErrorAs(t, lex.CheckAtruleDescriptorName("font-face", "nope"), &refErr)

	assert.NotNil(t, lex.MatchAtrulePrelude("media", lexer.CSS("screen and (min-width: 100px)")).Matched)
	assert.NotNil(t, lex.MatchAtrulePrelude("import", lexer.CSS(`"a.css"`)).Matched)

	noPrelude := lex.MatchAtrulePrelude("font-face", nil)
	assert.Nil(t, noPrelude.Matched)
	require.NoError(t, noPrelude.Error)
	assert.Empty(t, noPrelude.Reason)

	assert.NotNil(t, lex.MatchAtruleDescriptor("font-face", "font-display", lexer.CSS("swap")).Matched)
	assert.Nil(t, lex.MatchAtruleDescriptor("font-face", "font-display", lexer.CSS("fast")).Matched)

	assert.NotNil(t, lex.GetAtruleDescriptor("font-face", "-webkit-font-display"))
	assert.Nil(t, lex.GetAtrule("-webkit-media", false))
	assert.NotNil(t, lex.GetAtrule("-webkit-media", true))
	assert.Contains(t, lex.Atrules(), "media")
	assert.Contains(t, lex.Types(), "length")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.Nil(t, syntax.Default().Lexer().Validate())

	lex := genericLexer(map[string]string{
		"a": "<unknown-type>",
		"b": "<'a'> | <length>",
		"c": "<length>",
		"d": "[ broken",
	})

	assert.Equal(t, &lexer.BrokenReferences{Properties: []string{"a", "b", "d"}}, lex.Validate())
}

func TestDump(t *testing.T) {
	t.Parallel()

	lex := lexer.New(lexer.Config{Syntaxes: lexer.Syntaxes{
		Generic:    true,
		Types:      map[string]string{"t": "[ a | b ]?"},
		Properties: map[string]string{"p": "<t>  <length>"},
		Atrules: map[string]*lexer.AtruleSyntax{
			"x": {Prelude: "<ident>", Descriptors: map[string]string{"d": "a  |  b"}},
			"y": {},
		},
	}})

	compact := lex.Dump(false)
	assert.True(t, compact.Generic)
	assert.Equal(t, map[string]string{"t": "[a|b]?"}, compact.Types)
	assert.Equal(t, map[string]string{"p": "<t> <length>"}, compact.Properties)
	assert.Equal(t, "<ident>", compact.Atrules["x"].Prelude)
	assert.Equal(t, map[string]string{"d": "a|b"}, compact.Atrules["x"].Descriptors)
	assert.Empty(t, compact.Atrules["y"].Prelude)
	assert.Nil(t, compact.Atrules["y"].Descriptors)

	pretty := lex.Dump(true)
	assert.Equal(t, "[ a | b ]?", pretty.Types["t"])
	assert.Contains(t, pretty.Units, "length")
}

func TestCheckStructure(t *testing.T) {
	t.Parallel()

	lex := syntax.Default().Lexer()

	root, err := parser.Parse(".a{color:red}@media screen{.b{margin:0}}", parser.WithPositions(true))
	require.NoError(t, err)
	assert.Empty(t, lex.CheckStructure(root))

	broken := &ast.Declaration{Property: "color"}
	problems := lex.CheckStructure(broken)
	require.Len(t, problems, 1)
	assert.Equal(t, "Bad value for `Declaration.value`", problems[0].Error())
	assert.Same(t, broken, problems[0].Node)
}
