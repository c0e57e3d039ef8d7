// Package extension loads syntax dictionary extensions from YAML or JSON
// files. Documents are checked against an embedded JSON schema before
// they are decoded into a syntax.Patch.
package extension

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
)

//go:embed schema.json
var schemaJSON []byte

// Sentinel errors.
var (
	// ErrInvalid is returned for a document the schema rejects.
	ErrInvalid = errors.New("invalid extension")
	// ErrUnknownFormat is returned for a file extension other than .yaml, .yml or .json.
	ErrUnknownFormat = errors.New("unknown extension format")
)

// Format is the encoding of an extension document.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Source   string
	Problems []string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, strings.Join(err.Problems, "; "))
}

// Unwrap makes ValidationError match ErrInvalid.
func (err *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Schema returns the JSON schema extension documents must satisfy.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// Decode validates and decodes one document. source names the document
// in errors.
func Decode(data []byte, format Format, source string) (syntax.Patch, error) {
	var (
		patch syntax.Patch
		doc   any
	)

	switch format {
	case FormatYAML:
		err := yaml.Unmarshal(data, &doc)
		if err != nil {
			return patch, fmt.Errorf("decode %s: %w", source, err)
		}
	case FormatJSON:
		err := json.Unmarshal(data, &doc)
		if err != nil {
			return patch, fmt.Errorf("decode %s: %w", source, err)
		}
	default:
		return patch, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if doc == nil {
		return patch, nil
	}

	err := validate(doc, source)
	if err != nil {
		return patch, err
	}

	if format == FormatYAML {
		err = yaml.Unmarshal(data, &patch)
	} else {
		err = json.Unmarshal(data, &patch)
	}

	if err != nil {
		return patch, fmt.Errorf("decode %s: %w", source, err)
	}

	return patch, nil
}

func validate(doc any, source string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate %s: %w", source, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, verr.Field()+": "+verr.Description())
	}

	return &ValidationError{Source: source, Problems: problems}
}

// Load reads, validates and decodes the extension file at path.
func Load(path string) (syntax.Patch, error) {
	format, err := FormatOf(path)
	if err != nil {
		return syntax.Patch{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return syntax.Patch{}, fmt.Errorf("read extension: %w", err)
	}

	return Decode(data, format, path)
}

// Apply forks base with the extensions at paths, in order.
func Apply(base *syntax.Syntax, paths ...string) (*syntax.Syntax, error) {
	result := base

	for _, path := range paths {
		patch, err := Load(path)
		if err != nil {
			return nil, err
		}

		result = result.Fork(patch)
	}

	return result, nil
}
