package lexer

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
)

// stateKind identifies a node of the match graph.
type stateKind uint8

const (
	stateMatch stateKind = iota
	stateMismatch
	stateDisallowEmpty
	stateIf
	stateMatchOnce
	stateMatchOnceBuffer
	stateAddMatchOnce
	stateEnum
	stateGeneric
	stateType
	stateProperty
	stateKeyword
	stateAtKeyword
	stateFunction
	stateToken
	stateString
	stateComma
)

// maxMatchOnceTerms bounds the bitmask used by MatchOnce.
const maxMatchOnceTerms = 64

// permutationLimit is the largest && or || group expanded into a
// permutation tree; larger groups use MatchOnce.
const permutationLimit = 5

// state is a node of the compiled match graph. Which fields are used
// depends on kind.
type state struct {
	kind stateKind

	// If.
	match     *state
	then      *state
	otherwise *state

	// MatchOnce, MatchOnceBuffer and AddMatchOnce.
	terms []*state
	all   bool
	once  *state
	index int
	mask  uint64

	enum    map[string]*state
	generic GenericFunc

	// Type, Property, Keyword, AtKeyword and Function use name; Token and
	// String use value.
	name  string
	value string

	syntax grammar.Node
}

var (
	matchState         = &state{kind: stateMatch}
	mismatchState      = &state{kind: stateMismatch}
	disallowEmptyState = &state{kind: stateDisallowEmpty}
)

// matchGraph is a compiled syntax. Syntax names what the graph belongs
// to and becomes the root of match trees.
type matchGraph struct {
	root   *state
	syntax grammar.Node
}

// branch builds an If node, folding the trivial shapes.
func branch(match, then, otherwise *state) *state {
	if (then == matchState && otherwise == mismatchState) ||
		(match == matchState && then == matchState && otherwise == matchState) {
		return match
	}

	if match.kind == stateIf && match.otherwise == mismatchState && then == matchState {
		then = match.then
		match = match.match
	}

	return &state{kind: stateIf, match: match, then: then, otherwise: otherwise}
}

func isFunctionType(name string) bool {
	return len(name) > 2 && strings.HasSuffix(name, "()")
}

// enumerable reports whether a term can be dispatched on the token text.
func enumerable(term *state) bool {
	switch term.kind {
	case stateKeyword, stateAtKeyword, stateFunction:
		return true
	case stateType:
		return isFunctionType(term.name)
	default:
		return false
	}
}

func enumKey(term *state) string {
	name := term.name
	if isFunctionType(name) {
		name = name[:len(name)-1]
	}

	return strings.ToLower(name)
}

func without(terms []*state, skip *state) []*state {
	rest := make([]*state, 0, len(terms)-1)

	for _, term := range terms {
		if term != skip {
			rest = append(rest, term)
		}
	}

	return rest
}

func combine(combinator grammar.Combinator, terms []*state, atLeastOneTermMatched bool) (*state, error) {
	switch combinator {
	case grammar.Juxtapose:
		result := matchState

		for idx := len(terms) - 1; idx >= 0; idx-- {
			result = branch(terms[idx], result, mismatchState)
		}

		return result, nil

	case grammar.OneOf:
		result := mismatchState

		var enum map[string]*state

		for idx := len(terms) - 1; idx >= 0; idx-- {
			term := terms[idx]

			if enumerable(term) {
				if enum == nil && idx > 0 && enumerable(terms[idx-1]) {
					enum = make(map[string]*state)
					result = branch(&state{kind: stateEnum, enum: enum}, matchState, result)
				}

				if enum != nil {
					key := enumKey(term)
					if _, dup := enum[key]; !dup {
						enum[key] = term

						continue
					}
				}
			}

			enum = nil
			result = branch(term, matchState, result)
		}

		return result, nil

	case grammar.AllInAnyOrder, grammar.OneOrMore:
		all := combinator == grammar.AllInAnyOrder

		if len(terms) > permutationLimit {
			if len(terms) > maxMatchOnceTerms {
				return nil, fmt.Errorf("%w: %d terms", ErrTooManyTerms, len(terms))
			}

			return &state{kind: stateMatchOnce, terms: terms, all: all}, nil
		}

		result := mismatchState
		if !all && atLeastOneTermMatched {
			result = matchState
		}

		for idx := len(terms) - 1; idx >= 0; idx-- {
			term := terms[idx]
			then := matchState

			if len(terms) > 1 {
				var err error

				then, err = combine(combinator, without(terms, term), !all)
				if err != nil {
					return nil, err
				}
			}

			result = branch(term, then, result)
		}

		return result, nil
	}

	return nil, fmt.Errorf("%w: combinator %q", ErrBadGrammar, combinator)
}

func compileMultiplier(multiplier *grammar.Multiplier) (*state, error) {
	term, err := compile(multiplier.Term)
	if err != nil {
		return nil, err
	}

	comma := func(next *state) *state {
		return branch(&state{kind: stateComma, syntax: multiplier}, next, mismatchState)
	}

	result := matchState

	if multiplier.Max == 0 {
		term = branch(term, disallowEmptyState, mismatchState)
		result = branch(term, nil, mismatchState)
		result.then = branch(matchState, matchState, result)

		if multiplier.Comma {
			result.then.otherwise = comma(result)
		}
	} else {
		for n := max(multiplier.Min, 1); n <= multiplier.Max; n++ {
			if multiplier.Comma && result != matchState {
				result = comma(result)
			}

			result = branch(term, branch(matchState, matchState, result), mismatchState)
		}
	}

	if multiplier.Min == 0 {
		return branch(matchState, matchState, result), nil
	}

	for range multiplier.Min - 1 {
		if multiplier.Comma && result != matchState {
			result = comma(result)
		}

		result = branch(term, result, mismatchState)
	}

	return result, nil
}

//nolint:cyclop // one case per grammar node kind.
func compile(node grammar.Node) (*state, error) {
	switch n := node.(type) {
	case *grammar.Group:
		terms := make([]*state, len(n.Terms))

		for idx, term := range n.Terms {
			compiled, err := compile(term)
			if err != nil {
				return nil, err
			}

			terms[idx] = compiled
		}

		result, err := combine(n.Combinator, terms, false)
		if err != nil {
			return nil, err
		}

		if n.DisallowEmpty {
			result = branch(result, disallowEmptyState, mismatchState)
		}

		return result, nil
	case *grammar.Multiplier:
		return compileMultiplier(n)
	case *grammar.Type:
		return &state{kind: stateType, name: n.Name, syntax: n}, nil
	case *grammar.Property:
		return &state{kind: stateProperty, name: n.Name, syntax: n}, nil
	case *grammar.Keyword:
		return &state{kind: stateKeyword, name: strings.ToLower(n.Name), syntax: n}, nil
	case *grammar.AtKeyword:
		return &state{kind: stateAtKeyword, name: "@" + strings.ToLower(n.Name), syntax: n}, nil
	case *grammar.Function:
		return &state{kind: stateFunction, name: strings.ToLower(n.Name) + "(", syntax: n}, nil
	case *grammar.String:
		if len(n.Value) == 3 {
			return &state{kind: stateToken, value: n.Value[1:2], syntax: n}, nil
		}

		value := strings.ReplaceAll(n.Value[1:len(n.Value)-1], `\'`, "'")

		return &state{kind: stateString, value: value, syntax: n}, nil
	case *grammar.Token:
		return &state{kind: stateToken, value: n.Value, syntax: n}, nil
	case *grammar.Comma:
		return &state{kind: stateComma, syntax: n}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil node", ErrBadGrammar)
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadGrammar, node.Kind())
	}
}

// compileGraph lowers a parsed syntax into a match graph.
func compileGraph(syntax grammar.Node, owner grammar.Node) (*matchGraph, error) {
	root, err := compile(syntax)
	if err != nil {
		return nil, err
	}

	return &matchGraph{root: root, syntax: owner}, nil
}

// genericGraph wraps a generic function as a match graph.
func genericGraph(fn GenericFunc, owner grammar.Node) *matchGraph {
	return &matchGraph{root: &state{kind: stateGeneric, generic: fn}, syntax: owner}
}
