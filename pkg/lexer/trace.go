package lexer

import (
	"slices"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

// MatchResult is the outcome of a match. Exactly one of Matched and Error
// is set, except for at-rules without a prelude where both are nil.
type MatchResult struct {
	Matched    *MatchTree
	Error      error
	Iterations int
	// Reason is the way the match run ended: ReasonMatch, ReasonMismatch
	// or ReasonIterationsExceeded. It is empty when no run took place.
	Reason string
}

func traceable(syntax grammar.Node) bool {
	if syntax == nil {
		return false
	}

	switch syntax.Kind() {
	case grammar.KindType, grammar.KindProperty, grammar.KindKeyword:
		return true
	default:
		return false
	}
}

// GetTrace returns the Type, Property and Keyword syntaxes, outermost
// first, that matched the tokens of node. It returns nil when node took
// no part in the match.
func (result *MatchResult) GetTrace(node ast.Node) []grammar.Node {
	if result == nil || result.Matched == nil || node == nil {
		return nil
	}

	var trace []grammar.Node

	var find func(tree *MatchTree) bool

	find = func(tree *MatchTree) bool {
		if !tree.IsLeaf() {
			for _, child := range tree.Match {
				if find(child) {
					if traceable(tree.Syntax) {
						trace = append(trace, tree.Syntax)
					}

					return true
				}
			}

			return false
		}

		if tree.Node != node {
			return false
		}

		trace = []grammar.Node{}
		if traceable(tree.Syntax) {
			trace = append(trace, tree.Syntax)
		}

		return true
	}

	if !find(result.Matched) {
		return nil
	}

	slices.Reverse(trace)

	return trace
}

func (result *MatchResult) traceHas(node ast.Node, test func(syntax grammar.Node) bool) bool {
	return slices.ContainsFunc(result.GetTrace(node), test)
}

// IsType reports whether node was matched as part of the named type.
func (result *MatchResult) IsType(node ast.Node, name string) bool {
	return result.traceHas(node, func(syntax grammar.Node) bool {
		typ, ok := syntax.(*grammar.Type)

		return ok && typ.Name == name
	})
}

// IsProperty reports whether node was matched by the syntax of the named
// property.
func (result *MatchResult) IsProperty(node ast.Node, name string) bool {
	return result.traceHas(node, func(syntax grammar.Node) bool {
		property, ok := syntax.(*grammar.Property)

		return ok && property.Name == name
	})
}

// IsKeyword reports whether node was matched as a keyword.
func (result *MatchResult) IsKeyword(node ast.Node) bool {
	return result.traceHas(node, func(syntax grammar.Node) bool {
		return syntax.Kind() == grammar.KindKeyword
	})
}

// Fragment is a run of sibling nodes that together matched one syntax.
type Fragment struct {
	Parent ast.Node
	Nodes  []ast.Node
}

func firstMatchedNode(tree *MatchTree) ast.Node {
	for !tree.IsLeaf() {
		if len(tree.Match) == 0 {
			return nil
		}

		tree = tree.Match[0]
	}

	return tree.Node
}

func lastMatchedNode(tree *MatchTree) ast.Node {
	for !tree.IsLeaf() {
		if len(tree.Match) == 0 {
			return nil
		}

		tree = tree.Match[len(tree.Match)-1]
	}

	return tree.Node
}

func syntaxNamed(syntax grammar.Node, kind grammar.Kind, name string) bool {
	if syntax == nil || syntax.Kind() != kind {
		return false
	}

	switch s := syntax.(type) {
	case *grammar.Type:
		return s.Name == name
	case *grammar.Property:
		return s.Name == name
	case *grammar.Keyword:
		return s.Name == name
	default:
		return false
	}
}

// fragments collects, for every subtree matched by the syntax of kind
// and name, the sibling nodes of value from its first to its last node.
func fragments(value ast.Node, result *MatchResult, kind grammar.Kind, name string) []Fragment {
	var found []Fragment

	if result == nil || result.Matched == nil {
		return nil
	}

	var visit func(tree *MatchTree)

	visit = func(tree *MatchTree) {
		if syntaxNamed(tree.Syntax, kind, name) {
			first, last := firstMatchedNode(tree), lastMatchedNode(tree)
			if first != nil {
				found = append(found, collectFragment(value, first, last)...)
			}
		}

		for _, child := range tree.Match {
			visit(child)
		}
	}

	visit(result.Matched)

	return found
}

func collectFragment(value, first, last ast.Node) []Fragment {
	var (
		found   []Fragment
		parents []ast.Node
	)

	_ = walker.Walk(value, walker.Options{
		Enter: func(_ *walker.Context, node ast.Node, item walker.Item) walker.Action {
			if node == first && item.InList() {
				fragment := Fragment{}
				if len(parents) > 0 {
					fragment.Parent = parents[len(parents)-1]
				}

				for handle := item.Handle; item.List.Contains(handle); handle = item.List.Next(handle) {
					data := item.List.Get(handle)
					fragment.Nodes = append(fragment.Nodes, data)

					if data == last {
						break
					}
				}

				found = append(found, fragment)
			}

			parents = append(parents, node)

			return walker.Continue
		},
		Leave: func(_ *walker.Context, _ ast.Node, _ walker.Item) walker.Action {
			parents = parents[:len(parents)-1]

			return walker.Continue
		},
	})

	return found
}

// FindValueFragments matches value against a property and returns the
// fragments matched by the syntax of kind and name, e.g. the <color> of
// a border.
func (lex *Lexer) FindValueFragments(property string, value ast.Node, kind grammar.Kind, name string) []Fragment {
	return fragments(value, lex.MatchProperty(property, Tree(value)), kind, name)
}

// FindDeclarationValueFragments is FindValueFragments for a declaration.
func (lex *Lexer) FindDeclarationValueFragments(decl *ast.Declaration, kind grammar.Kind, name string) []Fragment {
	return fragments(decl.Value, lex.MatchDeclaration(decl), kind, name)
}

// FindAllFragments collects fragments from every declaration under root.
func (lex *Lexer) FindAllFragments(root ast.Node, kind grammar.Kind, name string) []Fragment {
	var found []Fragment

	_ = walker.Walk(root, walker.Options{
		Visit: ast.KindDeclaration,
		Enter: func(_ *walker.Context, node ast.Node, _ walker.Item) walker.Action {
			if decl, ok := node.(*ast.Declaration); ok {
				found = append(found, lex.FindDeclarationValueFragments(decl, kind, name)...)
			}

			return walker.Continue
		},
	})

	return found
}
