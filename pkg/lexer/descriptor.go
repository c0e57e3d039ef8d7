package lexer

import (
	"sync"

	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
)

// DescriptorKind tells what a descriptor describes.
type DescriptorKind uint8

// Descriptor kinds.
const (
	KindType DescriptorKind = iota + 1
	KindProperty
	KindAtrulePrelude
	KindAtruleDescriptor
)

var descriptorKindNames = map[DescriptorKind]string{
	KindType:             "Type",
	KindProperty:         "Property",
	KindAtrulePrelude:    "AtrulePrelude",
	KindAtruleDescriptor: "AtruleDescriptor",
}

// String returns the kind name.
func (kind DescriptorKind) String() string {
	if name, ok := descriptorKindNames[kind]; ok {
		return name
	}

	return "Unknown"
}

// Descriptor is a named syntax of the registry. The syntax text is parsed
// and compiled on first use.
type Descriptor struct {
	Kind DescriptorKind
	Name string
	// Parent is the at-rule name of at-rule descriptors.
	Parent string
	// Source is the syntax text; it is empty for generic types.
	Source string

	generic GenericFunc

	parseOnce sync.Once
	syntax    *grammar.Group
	parseErr  error

	compileOnce sync.Once
	graph       *matchGraph
	compileErr  error
}

func newDescriptor(kind DescriptorKind, name, parent, source string) *Descriptor {
	return &Descriptor{Kind: kind, Name: name, Parent: parent, Source: source}
}

func newGenericDescriptor(name string, fn GenericFunc) *Descriptor {
	return &Descriptor{Kind: KindType, Name: name, generic: fn}
}

// Generic reports whether the descriptor is implemented by a function.
func (desc *Descriptor) Generic() bool {
	return desc.generic != nil
}

// Syntax returns the parsed syntax. Generic types have none.
func (desc *Descriptor) Syntax() (*grammar.Group, error) {
	if desc.generic != nil {
		return nil, nil //nolint:nilnil // generic types carry no syntax tree.
	}

	desc.parseOnce.Do(func() {
		desc.syntax, desc.parseErr = grammar.Parse(desc.Source)
	})

	return desc.syntax, desc.parseErr
}

// owner is the grammar node match trees use for the descriptor.
func (desc *Descriptor) owner() grammar.Node {
	switch desc.Kind {
	case KindType:
		return &grammar.Type{Name: desc.Name}
	case KindProperty:
		return &grammar.Property{Name: desc.Name}
	default:
		return nil
	}
}

func (desc *Descriptor) matchGraph() (*matchGraph, error) {
	desc.compileOnce.Do(func() {
		if desc.generic != nil {
			desc.graph = genericGraph(desc.generic, desc.owner())

			return
		}

		syntax, err := desc.Syntax()
		if err != nil {
			desc.compileErr = err

			return
		}

		desc.graph, desc.compileErr = compileGraph(syntax, desc.owner())
	})

	return desc.graph, desc.compileErr
}

// Atrule holds the prelude and descriptor syntaxes of an at-rule.
type Atrule struct {
	Name        string
	Prelude     *Descriptor
	Descriptors map[string]*Descriptor
}
