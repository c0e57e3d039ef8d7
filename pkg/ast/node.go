// Package ast defines the CSS syntax tree: a closed set of node types, the
// structure schema each type declares, and conversions to and from plain
// JSON-friendly values.
package ast

import (
	"github.com/Sumatoshi-tech/csstree/pkg/list"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// Position is a point in a source.
type Position = tokenizer.Position

// Location is the source range a node was parsed from.
type Location = tokenizer.Range

// List is an ordered list of child nodes.
type List = list.List[Node]

// Node is a CSS syntax tree node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Location() *Location
	SetLocation(loc *Location)
	fields() []field
}

// Base carries the location shared by every node.
type Base struct {
	Loc *Location
}

// Location returns the source range of the node, or nil.
func (base *Base) Location() *Location { return base.Loc }

// SetLocation sets the source range of the node.
func (base *Base) SetLocation(loc *Location) { base.Loc = loc }

// NewList returns an empty child list.
func NewList(nodes ...Node) *List {
	return list.FromSlice(nodes)
}

// AnPlusB is the an+b microsyntax of :nth-*() selectors. An empty A or B
// means the part is absent.
type AnPlusB struct {
	Base
	A string
	B string
}

// Atrule is an at-rule such as @media.
type Atrule struct {
	Base
	Name    string
	Prelude Node // *AtrulePrelude, *Raw or nil.
	Block   *Block
}

// AtrulePrelude is the structured prelude of an at-rule.
type AtrulePrelude struct {
	Base
	Children *List
}

// AttributeSelector is an [attr] selector. Matcher and Flags are empty when
// absent.
type AttributeSelector struct {
	Base
	Name    *Identifier
	Matcher string
	Value   Node // *String, *Identifier or nil.
	Flags   string
}

// Block is a {} block.
type Block struct {
	Base
	Children *List
}

// Brackets is a [] group inside a value.
type Brackets struct {
	Base
	Children *List
}

// CDC is the "-->" token.
type CDC struct {
	Base
}

// CDO is the "<!--" token.
type CDO struct {
	Base
}

// ClassSelector is a .class selector.
type ClassSelector struct {
	Base
	Name string
}

// Combinator is a selector combinator: " ", ">", "+", "~" or "/deep/".
type Combinator struct {
	Base
	Name string
}

// Comment is a /* */ comment without its delimiters.
type Comment struct {
	Base
	Value string
}

// ImportantFlag is the Important value of an !important declaration.
const ImportantFlag = "important"

// Declaration is a property: value pair. Important is empty for a plain
// declaration, ImportantFlag for !important and the raw word otherwise.
type Declaration struct {
	Base
	Important string
	Property  string
	Value     Node // *Value or *Raw.
}

// IsImportant reports whether the declaration carries an ! annotation.
func (node *Declaration) IsImportant() bool {
	return node.Important != ""
}

// DeclarationList is a list of declarations outside of a block.
type DeclarationList struct {
	Base
	Children *List
}

// Dimension is a number with a unit.
type Dimension struct {
	Base
	Value string
	Unit  string
}

// Function is a function call; Name excludes the "(".
type Function struct {
	Base
	Name     string
	Children *List
}

// Hash is a #hash inside a value; Value excludes the "#".
type Hash struct {
	Base
	Value string
}

// IdSelector is an #id selector.
type IdSelector struct { //nolint:revive // mirrors the CSS node type name.
	Base
	Name string
}

// Identifier is an identifier.
type Identifier struct {
	Base
	Name string
}

// MediaFeature is a (name: value) media feature.
type MediaFeature struct {
	Base
	Name  string
	Value Node // *Identifier, *Number, *Dimension, *Ratio or nil.
}

// MediaQuery is a single media query.
type MediaQuery struct {
	Base
	Children *List
}

// MediaQueryList is a comma separated list of media queries.
type MediaQueryList struct {
	Base
	Children *List
}

// NestingSelector is the & selector.
type NestingSelector struct {
	Base
}

// Nth is the argument of :nth-*() pseudo classes.
type Nth struct {
	Base
	Nth      Node // *AnPlusB or *Identifier.
	Selector *SelectorList
}

// Number is a number.
type Number struct {
	Base
	Value string
}

// Operator is a value operator such as "," or "/".
type Operator struct {
	Base
	Value string
}

// Parentheses is a () group.
type Parentheses struct {
	Base
	Children *List
}

// Percentage is a percentage; Value excludes the "%".
type Percentage struct {
	Base
	Value string
}

// PseudoClassSelector is a :pseudo or :pseudo() selector. Children is nil
// for the non-functional form.
type PseudoClassSelector struct {
	Base
	Name     string
	Children *List
}

// PseudoElementSelector is a ::pseudo or ::pseudo() selector. Children is
// nil for the non-functional form.
type PseudoElementSelector struct {
	Base
	Name     string
	Children *List
}

// Ratio is a left/right ratio.
type Ratio struct {
	Base
	Left  string
	Right string
}

// Raw is source text kept verbatim.
type Raw struct {
	Base
	Value string
}

// Rule is a qualified rule.
type Rule struct {
	Base
	Prelude Node // *SelectorList or *Raw.
	Block   *Block
}

// Selector is a complex selector.
type Selector struct {
	Base
	Children *List
}

// SelectorList is a comma separated list of selectors.
type SelectorList struct {
	Base
	Children *List
}

// String is a string; Value is decoded.
type String struct {
	Base
	Value string
}

// StyleSheet is the root of a parsed stylesheet.
type StyleSheet struct {
	Base
	Children *List
}

// TypeSelector is an element or * selector with an optional namespace.
type TypeSelector struct {
	Base
	Name string
}

// UnicodeRange is a u+ unicode range.
type UnicodeRange struct {
	Base
	Value string
}

// Url is a url(); Value is decoded.
type Url struct { //nolint:revive // mirrors the CSS node type name.
	Base
	Value string
}

// Value is a declaration value.
type Value struct {
	Base
	Children *List
}

// WhiteSpace is significant whitespace.
type WhiteSpace struct {
	Base
	Value string
}

// NewWhiteSpace returns a single space node without location.
func NewWhiteSpace() *WhiteSpace {
	return &WhiteSpace{Value: " "}
}

// Kind implementations.

func (*AnPlusB) Kind() Kind               { return KindAnPlusB }
func (*Atrule) Kind() Kind                { return KindAtrule }
func (*AtrulePrelude) Kind() Kind         { return KindAtrulePrelude }
func (*AttributeSelector) Kind() Kind     { return KindAttributeSelector }
func (*Block) Kind() Kind                 { return KindBlock }
func (*Brackets) Kind() Kind              { return KindBrackets }
func (*CDC) Kind() Kind                   { return KindCDC }
func (*CDO) Kind() Kind                   { return KindCDO }
func (*ClassSelector) Kind() Kind         { return KindClassSelector }
func (*Combinator) Kind() Kind            { return KindCombinator }
func (*Comment) Kind() Kind               { return KindComment }
func (*Declaration) Kind() Kind           { return KindDeclaration }
func (*DeclarationList) Kind() Kind       { return KindDeclarationList }
func (*Dimension) Kind() Kind             { return KindDimension }
func (*Function) Kind() Kind              { return KindFunction }
func (*Hash) Kind() Kind                  { return KindHash }
func (*IdSelector) Kind() Kind            { return KindIdSelector }
func (*Identifier) Kind() Kind            { return KindIdentifier }
func (*MediaFeature) Kind() Kind          { return KindMediaFeature }
func (*MediaQuery) Kind() Kind            { return KindMediaQuery }
func (*MediaQueryList) Kind() Kind        { return KindMediaQueryList }
func (*NestingSelector) Kind() Kind       { return KindNestingSelector }
func (*Nth) Kind() Kind                   { return KindNth }
func (*Number) Kind() Kind                { return KindNumber }
func (*Operator) Kind() Kind              { return KindOperator }
func (*Parentheses) Kind() Kind           { return KindParentheses }
func (*Percentage) Kind() Kind            { return KindPercentage }
func (*PseudoClassSelector) Kind() Kind   { return KindPseudoClassSelector }
func (*PseudoElementSelector) Kind() Kind { return KindPseudoElementSelector }
func (*Ratio) Kind() Kind                 { return KindRatio }
func (*Raw) Kind() Kind                   { return KindRaw }
func (*Rule) Kind() Kind                  { return KindRule }
func (*Selector) Kind() Kind              { return KindSelector }
func (*SelectorList) Kind() Kind          { return KindSelectorList }
func (*String) Kind() Kind                { return KindString }
func (*StyleSheet) Kind() Kind            { return KindStyleSheet }
func (*TypeSelector) Kind() Kind          { return KindTypeSelector }
func (*UnicodeRange) Kind() Kind          { return KindUnicodeRange }
func (*Url) Kind() Kind                   { return KindUrl }
func (*Value) Kind() Kind                 { return KindValue }
func (*WhiteSpace) Kind() Kind            { return KindWhiteSpace }

// New returns an empty node of the given kind, or nil for an unknown kind.
// List fields of the new node are empty lists, except the nullable ones.
//
//nolint:cyclop,gocyclo // one case per node kind.
func New(kind Kind) Node {
	switch kind {
	case KindAnPlusB:
		return &AnPlusB{}
	case KindAtrule:
		return &Atrule{}
	case KindAtrulePrelude:
		return &AtrulePrelude{Children: NewList()}
	case KindAttributeSelector:
		return &AttributeSelector{}
	case KindBlock:
		return &Block{Children: NewList()}
	case KindBrackets:
		return &Brackets{Children: NewList()}
	case KindCDC:
		return &CDC{}
	case KindCDO:
		return &CDO{}
	case KindClassSelector:
		return &ClassSelector{}
	case KindCombinator:
		return &Combinator{}
	case KindComment:
		return &Comment{}
	case KindDeclaration:
		return &Declaration{}
	case KindDeclarationList:
		return &DeclarationList{Children: NewList()}
	case KindDimension:
		return &Dimension{}
	case KindFunction:
		return &Function{Children: NewList()}
	case KindHash:
		return &Hash{}
	case KindIdSelector:
		return &IdSelector{}
	case KindIdentifier:
		return &Identifier{}
	case KindMediaFeature:
		return &MediaFeature{}
	case KindMediaQuery:
		return &MediaQuery{Children: NewList()}
	case KindMediaQueryList:
		return &MediaQueryList{Children: NewList()}
	case KindNestingSelector:
		return &NestingSelector{}
	case KindNth:
		return &Nth{}
	case KindNumber:
		return &Number{}
	case KindOperator:
		return &Operator{}
	case KindParentheses:
		return &Parentheses{Children: NewList()}
	case KindPercentage:
		return &Percentage{}
	case KindPseudoClassSelector:
		return &PseudoClassSelector{}
	case KindPseudoElementSelector:
		return &PseudoElementSelector{}
	case KindRatio:
		return &Ratio{}
	case KindRaw:
		return &Raw{}
	case KindRule:
		return &Rule{}
	case KindSelector:
		return &Selector{Children: NewList()}
	case KindSelectorList:
		return &SelectorList{Children: NewList()}
	case KindString:
		return &String{}
	case KindStyleSheet:
		return &StyleSheet{Children: NewList()}
	case KindTypeSelector:
		return &TypeSelector{}
	case KindUnicodeRange:
		return &UnicodeRange{}
	case KindUrl:
		return &Url{}
	case KindValue:
		return &Value{Children: NewList()}
	case KindWhiteSpace:
		return &WhiteSpace{}
	default:
		return nil
	}
}
