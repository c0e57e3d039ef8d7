package lexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// DefaultMaxIterations bounds the steps of a single match.
const DefaultMaxIterations = 15000

type entryKind uint8

const (
	entryStub entryKind = iota
	entryToken
	entryOpenSyntax
	entryCloseSyntax
)

// matchEntry is a node of the persistent stack of matched tokens and
// syntax boundaries. Backtracking restores an older head.
type matchEntry struct {
	kind   entryKind
	syntax grammar.Node
	token  *Token
	prev   *matchEntry
}

type syntaxFrame struct {
	syntax grammar.Node
	opts   *grammar.Range
	prev   *syntaxFrame
}

type thenFrame struct {
	next        *state
	matchStack  *matchEntry
	syntaxStack *syntaxFrame
	prev        *thenFrame
}

type elseFrame struct {
	next        *state
	matchStack  *matchEntry
	syntaxStack *syntaxFrame
	thenStack   *thenFrame
	tokenIndex  int
	prev        *elseFrame
}

// resolver looks up the graphs of named types and properties.
type resolver interface {
	typeGraph(name string) (*matchGraph, error)
	propertyGraph(name string) (*matchGraph, error)
}

type matchRun struct {
	tokens        []*Token
	reason        string
	iterations    int
	match         *matchEntry
	longestMatch  int
	referenceErrs error
}

type alternativeState uint8

const (
	alternativeAllowed alternativeState = iota
	alternativePending
	alternativeUsed
)

var hackTail = regexp.MustCompile(`\\[09].*$`)

func stripHack(value string) string {
	if strings.IndexByte(value, '\\') == -1 {
		return value
	}

	return hackTail.ReplaceAllString(value, "")
}

// equalFoldASCII compares value with a lowercase reference, lowering only
// ASCII capitals of value.
func equalFoldASCII(value, reference string) bool {
	if len(value) != len(reference) {
		return false
	}

	for idx := range len(value) {
		code := value[idx]
		if code >= 'A' && code <= 'Z' {
			code |= 0x20
		}

		if code != reference[idx] {
			return false
		}
	}

	return true
}

func isCommaContextStart(token *Token) bool {
	if token == nil {
		return true
	}

	switch token.Type {
	case tokenizer.Comma, tokenizer.Function, tokenizer.LeftParenthesis,
		tokenizer.LeftSquareBracket, tokenizer.LeftCurlyBracket:
		return true
	case tokenizer.Delim:
		return token.Value != "?"
	default:
		return false
	}
}

func isCommaContextEnd(token *Token) bool {
	if token == nil {
		return true
	}

	switch token.Type {
	case tokenizer.RightParenthesis, tokenizer.RightSquareBracket, tokenizer.RightCurlyBracket:
		return true
	case tokenizer.Delim:
		return token.Value == "/"
	default:
		return false
	}
}

//nolint:gocognit,gocyclo,cyclop,funlen,maintidx // the matcher is one state machine.
func internalMatch(tokens []*Token, graph *matchGraph, syntaxes resolver, maxIterations int) *matchRun {
	var (
		syntaxStack   *syntaxFrame
		thenStack     *thenFrame
		elseStack     *elseFrame
		alternative   *elseFrame
		alternativeAt alternativeState
		iterations    int
		result        string
		token         *Token
		refErr        error
	)

	tokenIndex := -1
	longestMatch := 0
	matchStack := &matchEntry{kind: entryStub}
	current := graph.root

	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	nextToken := func() {
		for {
			tokenIndex++

			if tokenIndex < len(tokens) {
				token = tokens[tokenIndex]
			} else {
				token = nil
			}

			if token == nil || (token.Type != tokenizer.WhiteSpace && token.Type != tokenizer.Comment) {
				return
			}
		}
	}

	lookup := func(offset int) *Token {
		idx := tokenIndex + offset
		if idx < len(tokens) {
			return tokens[idx]
		}

		return nil
	}

	pushElse := func(next *state) *elseFrame {
		return &elseFrame{
			next:        next,
			matchStack:  matchStack,
			syntaxStack: syntaxStack,
			thenStack:   thenStack,
			tokenIndex:  tokenIndex,
			prev:        elseStack,
		}
	}

	pushThen := func(next *state) {
		thenStack = &thenFrame{next: next, matchStack: matchStack, syntaxStack: syntaxStack, prev: thenStack}
	}

	addToken := func() {
		matchStack = &matchEntry{kind: entryToken, syntax: current.syntax, token: token, prev: matchStack}

		nextToken()

		alternative = nil
		alternativeAt = alternativeAllowed

		if tokenIndex > longestMatch {
			longestMatch = tokenIndex
		}
	}

	openSyntax := func() {
		opts := rangeOf(current.syntax)
		if opts == nil && syntaxStack != nil {
			opts = syntaxStack.opts
		}

		syntaxStack = &syntaxFrame{syntax: current.syntax, opts: opts, prev: syntaxStack}
		matchStack = &matchEntry{kind: entryOpenSyntax, syntax: current.syntax, token: matchStack.token, prev: matchStack}
	}

	closeSyntax := func() {
		if matchStack.kind == entryOpenSyntax {
			matchStack = matchStack.prev
		} else {
			matchStack = &matchEntry{kind: entryCloseSyntax, syntax: syntaxStack.syntax, token: matchStack.token, prev: matchStack}
		}

		syntaxStack = syntaxStack.prev
	}

	nextToken()

	for result == "" {
		iterations++
		if iterations >= maxIterations {
			break
		}

		switch current.kind {
		case stateMatch:
			if thenStack == nil {
				if token != nil && (tokenIndex != len(tokens)-1 || (token.Value != `\0` && token.Value != `\9`)) {
					current = mismatchState

					break
				}

				result = ReasonMatch

				break
			}

			current = thenStack.next

			if current == disallowEmptyState {
				if thenStack.matchStack == matchStack {
					current = mismatchState

					break
				}

				current = matchState
			}

			for thenStack.syntaxStack != syntaxStack {
				closeSyntax()
			}

			thenStack = thenStack.prev

		case stateMismatch:
			if alternativeAt == alternativePending {
				if elseStack == nil || tokenIndex > elseStack.tokenIndex {
					elseStack = alternative
					alternative = nil
					alternativeAt = alternativeUsed
				}
			} else if elseStack == nil {
				result = ReasonMismatch

				break
			}

			current = elseStack.next
			thenStack = elseStack.thenStack
			syntaxStack = elseStack.syntaxStack
			matchStack = elseStack.matchStack
			tokenIndex = elseStack.tokenIndex

			if tokenIndex < len(tokens) {
				token = tokens[tokenIndex]
			} else {
				token = nil
			}

			elseStack = elseStack.prev

		case stateIf:
			if current.otherwise != mismatchState {
				elseStack = pushElse(current.otherwise)
			}

			if current.then != matchState {
				pushThen(current.then)
			}

			current = current.match

		case stateMatchOnce:
			current = &state{kind: stateMatchOnceBuffer, once: current}

		case stateMatchOnceBuffer:
			terms := current.once.terms

			if current.index == len(terms) {
				if current.mask == 0 || current.once.all {
					current = mismatchState

					break
				}

				current = matchState

				break
			}

			if current.mask == (uint64(1)<<len(terms))-1 {
				current = matchState

				break
			}

			for ; current.index < len(terms); current.index++ {
				bit := uint64(1) << current.index

				if current.mask&bit == 0 {
					buffer := current
					elseStack = pushElse(&state{
						kind:  stateMatchOnceBuffer,
						once:  buffer.once,
						index: buffer.index + 1,
						mask:  buffer.mask,
					})
					pushThen(&state{kind: stateAddMatchOnce, once: buffer.once, mask: buffer.mask | bit})
					current = terms[buffer.index]

					break
				}
			}

		case stateAddMatchOnce:
			current = &state{kind: stateMatchOnceBuffer, once: current.once, mask: current.mask}

		case stateEnum:
			if token != nil {
				if next, ok := current.enum[stripHack(strings.ToLower(token.Value))]; ok {
					current = next

					break
				}
			}

			current = mismatchState

		case stateGeneric:
			var opts *grammar.Range
			if syntaxStack != nil {
				opts = syntaxStack.opts
			}

			end := tokenIndex + current.generic(token, lookup, opts)
			if end > tokenIndex {
				for tokenIndex < end {
					addToken()
				}

				current = matchState
			} else {
				current = mismatchState
			}

		case stateType, stateProperty:
			var (
				sub *matchGraph
				err error
			)

			if current.kind == stateType {
				sub, err = syntaxes.typeGraph(current.name)
			} else {
				sub, err = syntaxes.propertyGraph(current.name)
			}

			if err != nil {
				refErr = err
				result = ReasonMismatch

				break
			}

			if alternativeAt != alternativeUsed && token != nil && current.kind == stateType &&
				((current.name == "custom-ident" && token.Type == tokenizer.Ident) ||
					(current.name == "length" && token.Value == "0")) {
				if alternativeAt == alternativeAllowed {
					alternative = pushElse(current)
					alternativeAt = alternativePending
				}

				current = mismatchState

				break
			}

			openSyntax()
			current = sub.root

		case stateKeyword:
			if token != nil && equalFoldASCII(stripHack(token.Value), current.name) {
				addToken()
				current = matchState

				break
			}

			current = mismatchState

		case stateAtKeyword, stateFunction:
			if token != nil && equalFoldASCII(token.Value, current.name) {
				addToken()
				current = matchState

				break
			}

			current = mismatchState

		case stateToken:
			if token != nil && token.Value == current.value {
				addToken()
				current = matchState

				break
			}

			current = mismatchState

		case stateComma:
			if token != nil && token.Type == tokenizer.Comma {
				if isCommaContextStart(matchStack.token) {
					current = mismatchState

					break
				}

				addToken()

				if isCommaContextEnd(token) {
					current = mismatchState
				} else {
					current = matchState
				}

				break
			}

			if isCommaContextStart(matchStack.token) || isCommaContextEnd(token) {
				current = matchState
			} else {
				current = mismatchState
			}

		case stateString:
			var text strings.Builder

			end := tokenIndex
			for ; end < len(tokens) && text.Len() < len(current.value); end++ {
				text.WriteString(tokens[end].Value)
			}

			if strings.EqualFold(text.String(), current.value) {
				for tokenIndex < end {
					addToken()
				}

				current = matchState
			} else {
				current = mismatchState
			}

		default:
			refErr = fmt.Errorf("%w: state %d", ErrBadGrammar, current.kind)
			result = ReasonMismatch
		}
	}

	run := &matchRun{
		tokens:        tokens,
		iterations:    iterations,
		longestMatch:  longestMatch,
		referenceErrs: refErr,
	}

	switch result {
	case "":
		run.reason = ReasonIterationsExceeded
	case ReasonMatch:
		for syntaxStack != nil {
			closeSyntax()
		}

		run.reason = ReasonMatch
		run.match = matchStack
	default:
		run.reason = result
	}

	if refErr != nil {
		run.match = nil
	}

	return run
}

func rangeOf(syntax grammar.Node) *grammar.Range {
	if typ, ok := syntax.(*grammar.Type); ok {
		return typ.Range
	}

	return nil
}

// MatchTree is a node of a match result. Inner nodes carry the syntax
// that matched their children; leaves carry a token and the tree node it
// came from.
type MatchTree struct {
	Syntax grammar.Node
	Match  []*MatchTree
	Token  string
	Node   ast.Node
}

// IsLeaf reports whether the node holds a token.
func (tree *MatchTree) IsLeaf() bool {
	return tree.Match == nil
}

// MatchTreeJSON is the wire form of a MatchTree. Inner nodes carry the
// generated syntax text and their children; leaves carry the token and the
// kind of the tree node it came from.
type MatchTreeJSON struct {
	Syntax string           `json:"syntax,omitempty"`
	Match  []*MatchTreeJSON `json:"match,omitempty"`
	Token  string           `json:"token,omitempty"`
	Node   string           `json:"node,omitempty"`
}

// Wire converts the tree to its wire form. It returns nil for a nil tree.
func (tree *MatchTree) Wire() *MatchTreeJSON {
	if tree == nil {
		return nil
	}

	out := &MatchTreeJSON{Token: tree.Token}

	if tree.IsLeaf() {
		if tree.Node != nil {
			out.Node = tree.Node.Kind().String()
		}

		return out
	}

	if tree.Syntax != nil {
		out.Syntax = grammar.Generate(tree.Syntax)
	}

	out.Match = make([]*MatchTreeJSON, 0, len(tree.Match))
	for _, child := range tree.Match {
		out.Match = append(out.Match, child.Wire())
	}

	return out
}

// MarshalJSON encodes the wire form without HTML escaping, so syntaxes
// such as <length> stay readable.
func (tree *MatchTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(tree.Wire())
	if err != nil {
		return nil, fmt.Errorf("encode match tree: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// buildTree turns the matched entry stack into a tree.
func buildTree(head *matchEntry, root grammar.Node) *MatchTree {
	var entries []*matchEntry
	for entry := head; entry != nil; entry = entry.prev {
		entries = append(entries, entry)
	}

	tree := &MatchTree{Syntax: root, Match: []*MatchTree{}}
	stack := []*MatchTree{tree}
	current := tree

	// entries[len-1] is the stub every run starts from.
	for idx := len(entries) - 2; idx >= 0; idx-- {
		entry := entries[idx]

		switch entry.kind {
		case entryOpenSyntax:
			child := &MatchTree{Syntax: entry.syntax, Match: []*MatchTree{}}
			current.Match = append(current.Match, child)
			current = child
			stack = append(stack, child)
		case entryCloseSyntax:
			stack = stack[:len(stack)-1]
			current = stack[len(stack)-1]
		default:
			current.Match = append(current.Match, &MatchTree{
				Syntax: entry.syntax,
				Token:  entry.token.Value,
				Node:   entry.token.Node,
			})
		}
	}

	return tree
}
