package lexer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

// BrokenReferences lists the types and properties whose syntax refers,
// directly or through other syntaxes, to something unknown or unparsable.
type BrokenReferences struct {
	Types      []string `json:"types"`
	Properties []string `json:"properties"`
}

type brokenCheck struct {
	lex        *Lexer
	types      map[string]bool
	properties map[string]bool
}

// broken reports whether desc depends on an unknown reference. Results
// are memoized; a cycle counts as valid while it is being checked.
func (check *brokenCheck) broken(desc *Descriptor, seen map[string]bool) bool {
	if result, ok := seen[desc.Name]; ok {
		return result
	}

	seen[desc.Name] = false

	if desc.Generic() {
		return false
	}

	syntax, err := desc.Syntax()
	if err != nil {
		seen[desc.Name] = true

		return true
	}

	_ = grammar.Walk(syntax, grammar.WalkOptions{Enter: func(node grammar.Node) {
		switch n := node.(type) {
		case *grammar.Type:
			ref, ok := check.lex.types[n.Name]
			if !ok || check.broken(ref, check.types) {
				seen[desc.Name] = true
			}
		case *grammar.Property:
			ref, ok := check.lex.properties[n.Name]
			if !ok || check.broken(ref, check.properties) {
				seen[desc.Name] = true
			}
		}
	}})

	return seen[desc.Name]
}

func brokenNames(seen map[string]bool) []string {
	var broken []string

	for _, name := range slices.Sorted(maps.Keys(seen)) {
		if seen[name] {
			broken = append(broken, name)
		}
	}

	return broken
}

// Validate looks for broken references in the registry. It returns nil
// when every syntax resolves.
func (lex *Lexer) Validate() *BrokenReferences {
	check := &brokenCheck{lex: lex, types: make(map[string]bool), properties: make(map[string]bool)}

	for _, name := range lex.Types() {
		check.broken(lex.types[name], check.types)
	}

	for _, name := range lex.Properties() {
		check.broken(lex.properties[name], check.properties)
	}

	result := &BrokenReferences{Types: brokenNames(check.types), Properties: brokenNames(check.properties)}
	if len(result.Types) == 0 && len(result.Properties) == 0 {
		return nil
	}

	return result
}

func dumpSyntax(desc *Descriptor, pretty bool) (string, bool) {
	if desc == nil || desc.Generic() {
		return "", false
	}

	syntax, err := desc.Syntax()
	if err != nil {
		return desc.Source, true
	}

	if pretty {
		return grammar.Generate(syntax), true
	}

	return grammar.Generate(syntax, grammar.WithCompact()), true
}

func dumpDescriptors(descriptors map[string]*Descriptor, pretty bool) map[string]string {
	dump := make(map[string]string, len(descriptors))

	for name, desc := range descriptors {
		if text, ok := dumpSyntax(desc, pretty); ok {
			dump[name] = text
		}
	}

	return dump
}

// Dump returns the registry as a dictionary. Syntaxes are regenerated,
// compact unless pretty is set; generic types are left out.
func (lex *Lexer) Dump(pretty bool) Syntaxes {
	dump := Syntaxes{
		Generic:    lex.generic,
		Units:      maps.Clone(lex.units),
		Types:      dumpDescriptors(lex.types, pretty),
		Properties: dumpDescriptors(lex.properties, pretty),
		Atrules:    make(map[string]*AtruleSyntax, len(lex.atrules)),
	}

	for name, atrule := range lex.atrules {
		entry := &AtruleSyntax{}
		entry.Prelude, _ = dumpSyntax(atrule.Prelude, pretty)

		if atrule.Descriptors != nil {
			entry.Descriptors = dumpDescriptors(atrule.Descriptors, pretty)
		}

		dump.Atrules[name] = entry
	}

	return dump
}

// StructureError describes a node that breaks the node structure rules.
type StructureError struct {
	Node    ast.Node
	Message string
}

func (err StructureError) Error() string {
	return err.Message
}

func validPosition(pos ast.Position) bool {
	return pos.Offset >= 0 && pos.Line >= 1 && pos.Column >= 1
}

func checkNode(node ast.Node, report func(node ast.Node, message string)) {
	kind := node.Kind()

	if _, ok := ast.KindByName(kind.String()); !ok {
		report(node, fmt.Sprintf("Unknown node type `%s`", kind))

		return
	}

	if loc := node.Location(); loc != nil {
		switch {
		case !validPosition(loc.Start):
			report(node, fmt.Sprintf("Bad value for `%s.loc.start`", kind))
		case !validPosition(loc.End):
			report(node, fmt.Sprintf("Bad value for `%s.loc.end`", kind))
		}
	}

	for _, field := range ast.Fields(node) {
		spec := field.Spec()

		switch {
		case spec.List:
			if field.List() == nil && !spec.Nullable {
				report(node, fmt.Sprintf("Bad value for `%s.%s`", kind, spec.Name))
			}
		case len(spec.Kinds) > 0:
			child := field.Child()

			if child == nil {
				if !spec.Nullable {
					report(node, fmt.Sprintf("Bad value for `%s.%s`", kind, spec.Name))
				}

				continue
			}

			if !spec.Accepts(child.Kind()) {
				report(node, fmt.Sprintf("Bad value for `%s.%s`", kind, spec.Name))
			}
		}
	}
}

// CheckStructure validates the shape of every node under root. It
// returns nil for a well formed tree.
func (lex *Lexer) CheckStructure(root ast.Node) []StructureError {
	var problems []StructureError

	report := func(node ast.Node, message string) {
		problems = append(problems, StructureError{Node: node, Message: message})
	}

	_ = walker.Walk(root, walker.Options{
		Enter: func(_ *walker.Context, node ast.Node, _ walker.Item) walker.Action {
			checkNode(node, report)

			return walker.Continue
		},
	})

	return problems
}
