package ast

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadFieldValue is returned when a child of a disallowed kind is stored
// in a field.
var ErrBadFieldValue = errors.New("bad field value")

// FieldSpec declares what a node field may hold.
type FieldSpec struct {
	Name string
	// Text fields hold a string.
	Text bool
	// Boolean fields hold a flag; only Declaration.important has one.
	Boolean bool
	// Nullable fields may be absent.
	Nullable bool
	// List fields hold a child list; Kinds then documents the usual items.
	List bool
	// Kinds are the node kinds a node field accepts.
	Kinds []Kind
}

// HoldsNodes reports whether the field holds a child node or a child list.
func (spec FieldSpec) HoldsNodes() bool {
	return spec.List || len(spec.Kinds) > 0
}

// Accepts reports whether a node of kind may be stored in the field.
func (spec FieldSpec) Accepts(kind Kind) bool {
	for _, allowed := range spec.Kinds {
		if allowed == kind {
			return true
		}
	}

	return false
}

// Doc renders the field the way structure docs show it, e.g.
// "<AtrulePrelude> | <Raw> | null".
func (spec FieldSpec) Doc() string {
	var parts []string

	if spec.Boolean {
		parts = append(parts, "Boolean")
	}

	if spec.Text {
		parts = append(parts, "String")
	}

	for _, kind := range spec.Kinds {
		if !spec.List {
			parts = append(parts, "<"+kind.String()+">")
		}
	}

	if spec.List {
		parts = append(parts, "List")
	}

	if spec.Nullable {
		parts = append(parts, "null")
	}

	return strings.Join(parts, " | ")
}

type field struct {
	spec FieldSpec
	text *string
	get  func() Node
	set  func(Node) bool
	list **List
}

func textField(name string, ptr *string, nullable bool) field {
	return field{spec: FieldSpec{Name: name, Text: true, Nullable: nullable}, text: ptr}
}

func importantField(ptr *string) field {
	return field{spec: FieldSpec{Name: "important", Text: true, Boolean: true}, text: ptr}
}

func nodeField(name string, ptr *Node, nullable bool, kinds ...Kind) field {
	spec := FieldSpec{Name: name, Nullable: nullable, Kinds: kinds}

	return field{
		spec: spec,
		get:  func() Node { return *ptr },
		set: func(child Node) bool {
			if child == nil {
				*ptr = nil

				return nullable
			}

			if !spec.Accepts(child.Kind()) {
				return false
			}

			*ptr = child

			return true
		},
	}
}

func typedField[T any, PT interface {
	*T
	Node
}](name string, ptr *PT, nullable bool) field {
	var zero T

	return field{
		spec: FieldSpec{Name: name, Nullable: nullable, Kinds: []Kind{PT(&zero).Kind()}},
		get: func() Node {
			if *ptr == nil {
				return nil
			}

			return *ptr
		},
		set: func(child Node) bool {
			if child == nil {
				*ptr = nil

				return nullable
			}

			typed, ok := child.(PT)
			if ok {
				*ptr = typed
			}

			return ok
		},
	}
}

func listField(name string, ptr **List, nullable bool, kinds ...Kind) field {
	return field{spec: FieldSpec{Name: name, List: true, Nullable: nullable, Kinds: kinds}, list: ptr}
}

func (node *AnPlusB) fields() []field {
	return []field{textField("a", &node.A, true), textField("b", &node.B, true)}
}

func (node *Atrule) fields() []field {
	return []field{
		textField("name", &node.Name, false),
		nodeField("prelude", &node.Prelude, true, KindAtrulePrelude, KindRaw),
		typedField("block", &node.Block, true),
	}
}

func (node *AtrulePrelude) fields() []field {
	return []field{listField("children", &node.Children, false)}
}

func (node *AttributeSelector) fields() []field {
	return []field{
		typedField("name", &node.Name, false),
		textField("matcher", &node.Matcher, true),
		nodeField("value", &node.Value, true, KindString, KindIdentifier),
		textField("flags", &node.Flags, true),
	}
}

func (node *Block) fields() []field {
	return []field{listField("children", &node.Children, false, KindAtrule, KindRule, KindDeclaration)}
}

func (node *Brackets) fields() []field {
	return []field{listField("children", &node.Children, false)}
}

func (*CDC) fields() []field { return nil }

func (*CDO) fields() []field { return nil }

func (node *ClassSelector) fields() []field {
	return []field{textField("name", &node.Name, false)}
}

func (node *Combinator) fields() []field {
	return []field{textField("name", &node.Name, false)}
}

func (node *Comment) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Declaration) fields() []field {
	return []field{
		importantField(&node.Important),
		textField("property", &node.Property, false),
		nodeField("value", &node.Value, false, KindValue, KindRaw),
	}
}

func (node *DeclarationList) fields() []field {
	return []field{listField("children", &node.Children, false, KindDeclaration, KindAtrule, KindRule)}
}

func (node *Dimension) fields() []field {
	return []field{textField("value", &node.Value, false), textField("unit", &node.Unit, false)}
}

func (node *Function) fields() []field {
	return []field{textField("name", &node.Name, false), listField("children", &node.Children, false)}
}

func (node *Hash) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *IdSelector) fields() []field {
	return []field{textField("name", &node.Name, false)}
}

func (node *Identifier) fields() []field {
	return []field{textField("name", &node.Name, false)}
}

func (node *MediaFeature) fields() []field {
	return []field{
		textField("name", &node.Name, false),
		nodeField("value", &node.Value, true, KindIdentifier, KindNumber, KindDimension, KindRatio),
	}
}

func (node *MediaQuery) fields() []field {
	return []field{listField("children", &node.Children, false, KindIdentifier, KindMediaFeature, KindWhiteSpace)}
}

func (node *MediaQueryList) fields() []field {
	return []field{listField("children", &node.Children, false, KindMediaQuery)}
}

func (*NestingSelector) fields() []field { return nil }

func (node *Nth) fields() []field {
	return []field{
		nodeField("nth", &node.Nth, false, KindAnPlusB, KindIdentifier),
		typedField("selector", &node.Selector, true),
	}
}

func (node *Number) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Operator) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Parentheses) fields() []field {
	return []field{listField("children", &node.Children, false)}
}

func (node *Percentage) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *PseudoClassSelector) fields() []field {
	return []field{textField("name", &node.Name, false), listField("children", &node.Children, true, KindRaw)}
}

func (node *PseudoElementSelector) fields() []field {
	return []field{textField("name", &node.Name, false), listField("children", &node.Children, true, KindRaw)}
}

func (node *Ratio) fields() []field {
	return []field{textField("left", &node.Left, false), textField("right", &node.Right, false)}
}

func (node *Raw) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Rule) fields() []field {
	return []field{
		nodeField("prelude", &node.Prelude, false, KindSelectorList, KindRaw),
		typedField("block", &node.Block, false),
	}
}

func (node *Selector) fields() []field {
	return []field{listField("children", &node.Children, false,
		KindTypeSelector, KindIdSelector, KindClassSelector, KindAttributeSelector,
		KindPseudoClassSelector, KindPseudoElementSelector, KindCombinator, KindWhiteSpace)}
}

func (node *SelectorList) fields() []field {
	return []field{listField("children", &node.Children, false, KindSelector, KindRaw)}
}

func (node *String) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *StyleSheet) fields() []field {
	return []field{listField("children", &node.Children, false,
		KindComment, KindCDO, KindCDC, KindAtrule, KindRule, KindRaw)}
}

func (node *TypeSelector) fields() []field {
	return []field{textField("name", &node.Name, false)}
}

func (node *UnicodeRange) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Url) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

func (node *Value) fields() []field {
	return []field{listField("children", &node.Children, false)}
}

func (node *WhiteSpace) fields() []field {
	return []field{textField("value", &node.Value, false)}
}

var structures = func() map[Kind][]FieldSpec {
	table := make(map[Kind][]FieldSpec, kindCount)

	for _, kind := range Kinds() {
		var specs []FieldSpec

		for _, f := range New(kind).fields() {
			specs = append(specs, f.spec)
		}

		table[kind] = specs
	}

	return table
}()

// Structure returns the field specs of a node kind in declaration order.
func Structure(kind Kind) []FieldSpec {
	return structures[kind]
}

// Docs returns the structure of a kind rendered as field name to type union.
func Docs(kind Kind) map[string]string {
	docs := map[string]string{"type": `"` + kind.String() + `"`}

	for _, spec := range structures[kind] {
		docs[spec.Name] = spec.Doc()
	}

	return docs
}

// Field is a view of one field of a node.
type Field struct {
	field
}

// Spec returns the declaration of the field.
func (f Field) Spec() FieldSpec { return f.spec }

// Name returns the field name.
func (f Field) Name() string { return f.spec.Name }

// Text returns the value of a text field.
func (f Field) Text() string {
	if f.text == nil {
		return ""
	}

	return *f.text
}

// SetText sets the value of a text field.
func (f Field) SetText(value string) {
	if f.text != nil {
		*f.text = value
	}
}

// Child returns the child of a node field, or nil.
func (f Field) Child() Node {
	if f.get == nil {
		return nil
	}

	return f.get()
}

// SetChild replaces the child of a node field.
func (f Field) SetChild(child Node) error {
	if f.set == nil || !f.set(child) {
		return fmt.Errorf("%w: %s cannot hold %s", ErrBadFieldValue, f.spec.Name, kindOf(child))
	}

	return nil
}

// List returns the child list of a list field, or nil.
func (f Field) List() *List {
	if f.list == nil {
		return nil
	}

	return *f.list
}

// SetList replaces the child list of a list field.
func (f Field) SetList(children *List) {
	if f.list != nil {
		*f.list = children
	}
}

func kindOf(node Node) string {
	if node == nil {
		return "null"
	}

	return node.Kind().String()
}

// Fields returns views of every field of node in declaration order.
func Fields(node Node) []Field {
	if node == nil {
		return nil
	}

	raw := node.fields()
	views := make([]Field, len(raw))

	for idx, f := range raw {
		views[idx] = Field{f}
	}

	return views
}

// FieldByName returns the named field of node.
func FieldByName(node Node, name string) (Field, bool) {
	for _, f := range Fields(node) {
		if f.spec.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Children returns the child list of nodes that have one, or nil.
func Children(node Node) *List {
	if f, ok := FieldByName(node, "children"); ok {
		return f.List()
	}

	return nil
}
