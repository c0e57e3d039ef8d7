package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/internal/api"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
	"github.com/Sumatoshi-tech/csstree/pkg/validator"
)

func TestNewServiceDefaults(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)
	assert.Same(t, syntax.Default(), svc.Syntax())

	_, err := svc.Parse(api.ParseRequest{CSS: string(make([]byte, api.DefaultMaxInputBytes+1))})
	require.ErrorIs(t, err, api.ErrInputTooLarge)
}

func TestParse(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	resp, err := svc.Parse(api.ParseRequest{CSS: "a{color red}"})
	require.NoError(t, err)
	assert.Equal(t, "StyleSheet", resp.AST["type"])
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Colon is expected", resp.Errors[0].Message)
	assert.Equal(t, 1, resp.Errors[0].Line)

	resp, err = svc.Parse(api.ParseRequest{CSS: "1px solid", Context: "value", Positions: true})
	require.NoError(t, err)
	assert.Equal(t, "Value", resp.AST["type"])
	assert.Contains(t, resp.AST, "loc")
	assert.Empty(t, resp.Errors)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 8)

	tests := []struct {
		name string
		req  api.ParseRequest
		want error
	}{
		{"empty", api.ParseRequest{}, api.ErrEmptyCSS},
		{"too large", api.ParseRequest{CSS: "a{color:red}"}, api.ErrInputTooLarge},
		{"unknown context", api.ParseRequest{CSS: "a", Context: "nope"}, parser.ErrUnknownContext},
	}

	for _, tt := range tests {
		_, err := svc.Parse(tt.req)
		require.ErrorIs(t, err, tt.want, tt.name)
		assert.True(t, api.IsClientError(err), tt.name)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	report, err := svc.Validate(api.ValidateRequest{CSS: ".a{colr:red;width:red}"})
	require.NoError(t, err)
	require.Len(t, report.Problems, 2)
	assert.Equal(t, validator.KindUnknownProperty, report.Problems[0].Kind)
	assert.Equal(t, validator.KindInvalidValue, report.Problems[1].Kind)

	report, err = svc.Validate(api.ValidateRequest{CSS: ".a{color:red}"})
	require.NoError(t, err)
	assert.NotNil(t, report.Problems)
	assert.Empty(t, report.Problems)

	_, err = svc.Validate(api.ValidateRequest{})
	require.ErrorIs(t, err, api.ErrEmptyCSS)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	resp, err := svc.Generate(api.GenerateRequest{CSS: ".a , .b {\n  color : red ;\n}"})
	require.NoError(t, err)
	assert.Equal(t, ".a,.b{color:red}", resp.CSS)

	parsed, err := svc.Parse(api.ParseRequest{CSS: "a { margin : 0 }"})
	require.NoError(t, err)

	resp, err = svc.Generate(api.GenerateRequest{AST: parsed.AST, Mode: "spec"})
	require.NoError(t, err)
	assert.Equal(t, "a{margin:0}", resp.CSS)
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	tests := []struct {
		name string
		req  api.GenerateRequest
		want error
	}{
		{"neither", api.GenerateRequest{}, api.ErrGenerateSource},
		{"both", api.GenerateRequest{CSS: "a{}", AST: map[string]any{"type": "StyleSheet"}}, api.ErrGenerateSource},
		{"bad mode", api.GenerateRequest{CSS: "a{}", Mode: "pretty"}, generator.ErrUnknownMode},
	}

	for _, tt := range tests {
		_, err := svc.Generate(tt.req)
		require.ErrorIs(t, err, tt.want, tt.name)
		assert.True(t, api.IsClientError(err), tt.name)
	}

	_, err := svc.Generate(api.GenerateRequest{AST: map[string]any{"type": "Bogus"}})
	require.Error(t, err)
	assert.True(t, api.IsClientError(err))
}

func TestMatch(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	tests := []struct {
		name    string
		req     api.MatchRequest
		matched bool
	}{
		{"property", api.MatchRequest{Value: "1px solid red", Property: "border"}, true},
		{"property mismatch", api.MatchRequest{Value: "1px 2px 3px", Property: "color"}, false},
		{"type", api.MatchRequest{Value: "12.5%", Type: "length-percentage"}, true},
		{"syntax", api.MatchRequest{Value: "a b", Syntax: "a && b"}, true},
	}

	for _, tt := range tests {
		resp, err := svc.Match(tt.req)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.matched, resp.Matched, tt.name)
		assert.Positive(t, resp.Iterations, tt.name)

		if tt.matched {
			assert.Equal(t, lexer.ReasonMatch, resp.Reason, tt.name)
			assert.NotNil(t, resp.Tree, tt.name)
			assert.Empty(t, resp.Error, tt.name)
		} else {
			assert.Nil(t, resp.Tree, tt.name)
			assert.NotEmpty(t, resp.Error, tt.name)
		}
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	_, err := svc.Match(api.MatchRequest{Value: "red"})
	require.ErrorIs(t, err, api.ErrMatchTarget)

	_, err = svc.Match(api.MatchRequest{Value: "red", Property: "color", Type: "color"})
	require.ErrorIs(t, err, api.ErrMatchTarget)

	_, err = svc.Match(api.MatchRequest{Value: "red", Property: "colr"})

	var refErr *lexer.SyntaxReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.True(t, api.IsClientError(err))
}

func TestIsClientError(t *testing.T) {
	t.Parallel()

	assert.False(t, api.IsClientError(errors.New("disk on fire")))
	assert.False(t, api.IsClientError(nil))
	assert.True(t, api.IsClientError(fmt.Errorf("wrap: %w", api.ErrEmptyCSS)))
}
