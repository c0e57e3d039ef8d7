package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/csstree/internal/api"
)

func validateAgainst(t *testing.T, name string, body any) {
	t.Helper()

	schema := generateSchema(name, bodies()[name])

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(data), gojsonschema.NewGoLoader(body))
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%s: %v", name, result.Errors())
}

func TestGenerateSchemaFields(t *testing.T) {
	t.Parallel()

	schema := generateSchema("match_request", &api.MatchRequest{})

	assert.Equal(t, "MatchRequest", schema.Title)
	assert.Equal(t, []string{"value"}, schema.Required)
	require.Contains(t, schema.Properties, "property")
	assert.Equal(t, "string", schema.Properties["property"].Type)
	assert.Contains(t, schema.Properties["syntax"].Description, "value definition syntax")

	report := generateSchema("validate_response", bodies()["validate_response"])
	require.Contains(t, report.Definitions, "Problem")
	require.Contains(t, report.Definitions, "Position")
	assert.Equal(t, "array", report.Properties["problems"].Type)
	assert.Equal(t, "#/definitions/Problem", report.Properties["problems"].Items.Ref)

	match := generateSchema("match_response", bodies()["match_response"])
	assert.Equal(t, "#/definitions/MatchTreeJSON", match.Properties["tree"].Ref)
	require.Contains(t, match.Definitions, "MatchTreeJSON")
	assert.Equal(t, "#/definitions/MatchTreeJSON", match.Definitions["MatchTreeJSON"].Properties["match"].Items.Ref)
}

func TestResponsesMatchSchemas(t *testing.T) {
	t.Parallel()

	svc := api.NewService(nil, 0)

	parsed, err := svc.Parse(api.ParseRequest{CSS: "a{color red}", Positions: true})
	require.NoError(t, err)
	validateAgainst(t, "parse_response", parsed)

	report, err := svc.Validate(api.ValidateRequest{CSS: ".a{colr:red;width:red}"})
	require.NoError(t, err)
	require.NotEmpty(t, report.Problems)
	validateAgainst(t, "validate_response", report)

	generated, err := svc.Generate(api.GenerateRequest{CSS: "a { top : 0 }"})
	require.NoError(t, err)
	validateAgainst(t, "generate_response", generated)

	matched, err := svc.Match(api.MatchRequest{Value: "1px solid", Property: "border"})
	require.NoError(t, err)
	require.NotNil(t, matched.Tree)
	validateAgainst(t, "match_response", matched)

	validateAgainst(t, "match_request", api.MatchRequest{Value: "red", Type: "color"})
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, writeSchema(dir, "parse_request", generateSchema("parse_request", &api.ParseRequest{})))

	data, err := os.ReadFile(filepath.Join(dir, "parse_request.json"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", decoded["$schema"])
	assert.Equal(t, "JSON body of the parse request", decoded["description"])
}
