package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/sourcemap"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

func generate(t *testing.T, source string, opts ...generator.Option) string {
	t.Helper()

	root, err := parser.Parse(source)
	require.NoError(t, err)

	css, err := generator.Generate(root, opts...)
	require.NoError(t, err)

	return css
}

func TestGenerateRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"rule", "a{color:red}", "a{color:red}"},
		{"whitespace dropped", "a { color : red }", "a{color:red}"},
		{"selectors", ".a,#b>c{margin:0 auto!important}", ".a,#b>c{margin:0 auto!important}"},
		{"descendant", "ul li{}", "ul li{}"},
		{"media", "@media screen and (min-width:100px){a{color:red}}", "@media screen and (min-width:100px){a{color:red}}"},
		{"import", "@import url(foo.css) screen;", "@import url(foo.css)screen;"},
		{"negative dimension", "a{margin:1px -2px}", "a{margin:1px -2px}"},
		{"calc", "a{width:calc(100% - 2px)}", "a{width:calc(100% - 2px)}"},
		{"string", `a{content:"it's"}`, `a{content:"it's"}`},
		{"nth", "li:nth-child(2n+1){}", "li:nth-child(2n+1){}"},
		{"nth negative", "li:nth-child(-n+3){}", "li:nth-child(-n+3){}"},
		{"nth keyword", "li:nth-child(odd){}", "li:nth-child(odd){}"},
		{"pseudo element", "p::before{}", "p::before{}"},
		{"attribute", `[href^="http" i]{}`, `[href^="http"i]{}`},
		{"custom property", "a{--x: 1px  2px}", "a{--x: 1px  2px}"},
		{"several declarations", "a{color:red;width:0}", "a{color:red;width:0}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css := generate(t, tt.source)
			assert.Equal(t, tt.want, css)
			assert.Equal(t, css, generate(t, css), "generation is not idempotent")
		})
	}
}

func TestRawRecoveryKeepsSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		raw    string
		failed bool
	}{
		{"semicolon in parentheses", "a{b:(;)}", "(;)", true},
		{"semicolon in brackets", "a{b:[;]}", "[;]", true},
		{"semicolon in function", "a{b:f(;)}", "f(;)", true},
		{"unmatched parenthesis", "a{b:x)y}", "x)y", true},
		{"text after important", "a{b:c d!important e}", "b:c d!important e", true},
		{"custom property", "a{--x: 1px;b:c}", " 1px", false},
		{"custom property block", "a{--x:{;};b:c}", "{;}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var errs []string

			root, err := parser.Parse(tt.source, parser.WithOnParseError(func(err *parser.SyntaxError, _ ast.Node) {
				errs = append(errs, err.Message)
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.failed, len(errs) > 0, "errors: %v", errs)

			raws := walker.FindAll(root, func(_ *walker.Context, node ast.Node, _ walker.Item) bool {
				return node.Kind() == ast.KindRaw
			})

			values := make([]string, 0, len(raws))
			for _, node := range raws {
				raw, ok := node.(*ast.Raw)
				require.True(t, ok)

				values = append(values, raw.Value)
			}

			assert.Contains(t, values, tt.raw)

			css, err := generator.Generate(root)
			require.NoError(t, err)
			assert.Contains(t, css, tt.raw)
			assert.Equal(t, tt.source, css)
		})
	}
}

func TestGenerateModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		safe   string
		spec   string
	}{
		{"a{margin:1% -2px}", "a{margin:1% -2px}", "a{margin:1%-2px}"},
		{"a{color:red #fff}", "a{color:red #fff}", "a{color:red#fff}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.safe, generate(t, tt.source))
		assert.Equal(t, tt.safe, generate(t, tt.source, generator.WithMode(generator.ModeSafe)))
		assert.Equal(t, tt.spec, generate(t, tt.source, generator.WithMode(generator.ModeSpec)))
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := generator.ParseMode("spec")
	require.NoError(t, err)
	assert.Equal(t, generator.ModeSpec, mode)
	assert.Equal(t, "spec", mode.String())

	mode, err = generator.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, generator.ModeSafe, mode)

	_, err = generator.ParseMode("pretty")
	require.ErrorIs(t, err, generator.ErrUnknownMode)
}

func TestGenerateBuiltTree(t *testing.T) {
	t.Parallel()

	rule := &ast.Rule{
		Prelude: &ast.SelectorList{Children: ast.NewList(
			&ast.Selector{Children: ast.NewList(&ast.ClassSelector{Name: "x"})},
		)},
		Block: &ast.Block{Children: ast.NewList(
			&ast.Declaration{
				Property:  "width",
				Important: "important",
				Value:     &ast.Value{Children: ast.NewList(&ast.Number{Value: "1"}, &ast.Number{Value: "2"})},
			},
		)},
	}

	css, err := generator.Generate(rule)
	require.NoError(t, err)
	assert.Equal(t, ".x{width:1 2!important}", css)

	css, err = generator.Generate(&ast.AnPlusB{A: "+1", B: "-2"})
	require.NoError(t, err)
	assert.Equal(t, "n-2", css)

	css, err = generator.Generate(&ast.Atrule{Name: "charset", Prelude: &ast.AtrulePrelude{
		Children: ast.NewList(&ast.String{Value: "utf-8"}),
	}})
	require.NoError(t, err)
	assert.Equal(t, `@charset "utf-8";`, css)
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	_, err := generator.Generate(nil)
	require.ErrorIs(t, err, generator.ErrMissingNode)

	_, err = generator.Generate(&ast.Rule{Prelude: &ast.Raw{Value: "a"}})
	require.ErrorIs(t, err, generator.ErrMissingNode)

	_, err = generator.Generate(&ast.AttributeSelector{})
	require.ErrorIs(t, err, generator.ErrMissingNode)
}

func TestGenerateDecorator(t *testing.T) {
	t.Parallel()

	var auto int

	decorate := func(next generator.Printer) generator.Printer {
		return generator.PrinterFunc(func(chunk string, tokenType tokenizer.TokenType, isAuto bool) {
			if isAuto && tokenType == tokenizer.WhiteSpace {
				auto++
			}

			next.Emit(chunk, tokenType, isAuto)
		})
	}

	css := generate(t, "a{margin:0 auto}", generator.WithDecorator(decorate))
	assert.Equal(t, "a{margin:0 auto}", css)
	assert.Equal(t, 1, auto)
}

func TestGenerateSourceMap(t *testing.T) {
	t.Parallel()

	root, err := parser.Parse("a{color:red}\nb{width:0}", parser.WithPositions(true), parser.WithFilename("in.css"))
	require.NoError(t, err)

	sm := sourcemap.NewGenerator("out.css", "")

	css, err := generator.Generate(root, generator.WithSourceMap(sm))
	require.NoError(t, err)
	assert.Equal(t, "a{color:red}b{width:0}", css)

	doc := sm.Map()
	assert.Equal(t, []string{"in.css"}, doc.Sources)
	assert.Equal(t, "AAAA,C,CAAE,S,CACF,C,CAAE,O", doc.Mappings)
}
