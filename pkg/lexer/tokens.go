package lexer

import (
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Token is one token of a matched value. Node is the syntax tree node the
// token was generated from; it is nil for CSS text and for whitespace the
// generator inserted.
type Token struct {
	Type  tokenizer.TokenType
	Value string
	Node  ast.Node
}

// Value is what a syntax is matched against.
type Value interface {
	tokens() ([]*Token, error)
	root() ast.Node
}

// CSS is a value given as CSS text.
type CSS string

func (css CSS) tokens() ([]*Token, error) {
	source := string(css)

	var tokens []*Token

	tokenizer.Tokenize(source, func(tokenType tokenizer.TokenType, start, end int) {
		tokens = append(tokens, &Token{Type: tokenType, Value: source[start:end]})
	})

	return tokens, nil
}

func (CSS) root() ast.Node { return nil }

type treeValue struct {
	node ast.Node
}

// Tree returns a value backed by a syntax tree, usually a Value node.
func Tree(node ast.Node) Value {
	return treeValue{node: node}
}

func (value treeValue) root() ast.Node { return value.node }

func (value treeValue) tokens() ([]*Token, error) {
	rec := &tokenRecorder{}

	_, err := generator.Generate(value.node, generator.WithDecorator(func(generator.Printer) generator.Printer {
		return rec
	}))
	if err != nil {
		return nil, err
	}

	return rec.tokens, nil
}

// tokenRecorder collects generated tokens together with their nodes.
type tokenRecorder struct {
	tokens []*Token
	stack  []ast.Node
}

func (rec *tokenRecorder) EnterNode(node ast.Node) {
	rec.stack = append(rec.stack, node)
}

func (rec *tokenRecorder) LeaveNode(ast.Node) {
	rec.stack = rec.stack[:len(rec.stack)-1]
}

func (rec *tokenRecorder) Emit(chunk string, tokenType tokenizer.TokenType, auto bool) {
	var node ast.Node
	if !auto && len(rec.stack) > 0 {
		node = rec.stack[len(rec.stack)-1]
	}

	rec.tokens = append(rec.tokens, &Token{Type: tokenType, Value: chunk, Node: node})
}

func hasVar(tokens []*Token) bool {
	for _, token := range tokens {
		if strings.EqualFold(token.Value, "var(") {
			return true
		}
	}

	return false
}
