// Package astio persists syntax trees as JSON, optionally LZ4 compressed.
package astio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	lz4Extension  = ".json.lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// ErrNotANode is returned when a decoded document is not a node object.
var ErrNotANode = errors.New("document is not a node")

// Codec defines how a tree is serialized and deserialized.
type Codec interface {
	// Encode writes the tree to the writer.
	Encode(w io.Writer, node ast.Node) error
	// Decode reads a tree from the reader.
	Decode(r io.Reader) (ast.Node, error)
	// Extension returns the file extension for this codec (e.g., ".json").
	Extension() string
}

// JSONCodec implements Codec using the plain JSON form of ast.ToPlain.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode.
func (c *JSONCodec) Encode(w io.Writer, node ast.Node) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(ast.ToPlain(node))
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader) (ast.Node, error) {
	var plain any

	err := json.NewDecoder(r).Decode(&plain)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	object, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotANode, plain)
	}

	node, err := ast.FromPlain(object)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return node, nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps compact JSON in an LZ4 frame.
type LZ4Codec struct {
	// Level is the compression level; the zero value is the fast mode.
	Level lz4.CompressionLevel
}

// NewLZ4Codec creates an LZ4 codec with the fast compression level.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{Level: lz4.Fast}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, node ast.Node) error {
	zw := lz4.NewWriter(w)

	err := zw.Apply(lz4.CompressionLevelOption(c.Level))
	if err != nil {
		return fmt.Errorf("lz4 options: %w", err)
	}

	err = (&JSONCodec{}).Encode(zw, node)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader) (ast.Node, error) {
	return (&JSONCodec{}).Decode(lz4.NewReader(r))
}

// Extension implements Codec.Extension for compressed files.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}

// CodecFor picks the codec matching the file name.
func CodecFor(path string) Codec {
	if strings.HasSuffix(strings.ToLower(path), ".lz4") {
		return NewLZ4Codec()
	}

	return NewJSONCodec()
}

// Save writes node to path with the codec matching the file name.
func Save(path string, node ast.Node) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tree file: %w", err)
	}
	defer file.Close()

	err = CodecFor(path).Encode(file, node)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	return nil
}

// Load reads a tree from path with the codec matching the file name.
func Load(path string) (ast.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree file: %w", err)
	}
	defer file.Close()

	node, err := CodecFor(path).Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}

	return node, nil
}
