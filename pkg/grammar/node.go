// Package grammar parses the CSS value definition syntax, e.g.
// "<length> | auto" or "[ <color> || <line-style> ]#", into a tree of
// terms, and writes such trees back as text.
package grammar

// Kind identifies the concrete type of a Node.
type Kind uint8

// Node kinds.
const (
	KindGroup Kind = iota + 1
	KindMultiplier
	KindType
	KindProperty
	KindKeyword
	KindAtKeyword
	KindFunction
	KindString
	KindToken
	KindComma
)

var kindNames = map[Kind]string{
	KindGroup:      "Group",
	KindMultiplier: "Multiplier",
	KindType:       "Type",
	KindProperty:   "Property",
	KindKeyword:    "Keyword",
	KindAtKeyword:  "AtKeyword",
	KindFunction:   "Function",
	KindString:     "String",
	KindToken:      "Token",
	KindComma:      "Comma",
}

// String returns the kind name.
func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}

	return "Unknown"
}

// Node is a term of a value definition.
type Node interface {
	Kind() Kind
}

// Combinator joins the terms of a group.
type Combinator string

// Combinators, from the tightest binding to the loosest.
const (
	// Juxtapose requires all terms in order.
	Juxtapose Combinator = " "
	// AllInAnyOrder requires all terms in any order.
	AllInAnyOrder Combinator = "&&"
	// OneOrMore requires at least one term, in any order.
	OneOrMore Combinator = "||"
	// OneOf requires exactly one term.
	OneOf Combinator = "|"
)

func (combinator Combinator) precedence() int {
	switch combinator {
	case Juxtapose:
		return 1
	case AllInAnyOrder:
		return 2
	case OneOrMore:
		return 3
	case OneOf:
		return 4
	default:
		return 0
	}
}

// Group is a sequence of terms joined by one combinator. Explicit groups
// were written in brackets; DisallowEmpty marks a trailing "!".
type Group struct {
	Terms         []Node
	Combinator    Combinator
	Explicit      bool
	DisallowEmpty bool
}

// Multiplier repeats Term between Min and Max times. Max 0 is unbounded.
// Comma requires a comma between repetitions.
type Multiplier struct {
	Min   int
	Max   int
	Comma bool
	Term  Node
}

// Bound is one end of a numeric range. Unit is set when the bound was
// written as a dimension, such as "0px".
type Bound struct {
	Value float64
	Unit  string
}

// Range restricts the numeric value of a type, as in <integer [1,∞]>. A
// nil bound is infinite.
type Range struct {
	Min *Bound
	Max *Bound
}

// Type references a named type such as <length> or <rgb()>.
type Type struct {
	Name  string
	Range *Range
}

// Property references the value syntax of a property: <'margin'>.
type Property struct {
	Name string
}

// Keyword is a literal identifier.
type Keyword struct {
	Name string
}

// AtKeyword is a literal at-keyword without the "@".
type AtKeyword struct {
	Name string
}

// Function is the opening of a function; Name excludes the "(". The
// closing parenthesis follows as a Token.
type Function struct {
	Name string
}

// String is a quoted literal; Value keeps its apostrophes.
type String struct {
	Value string
}

// Token is a single literal character such as "/" or ")".
type Token struct {
	Value string
}

// Comma is a literal comma.
type Comma struct{}

func (*Group) Kind() Kind      { return KindGroup }
func (*Multiplier) Kind() Kind { return KindMultiplier }
func (*Type) Kind() Kind       { return KindType }
func (*Property) Kind() Kind   { return KindProperty }
func (*Keyword) Kind() Kind    { return KindKeyword }
func (*AtKeyword) Kind() Kind  { return KindAtKeyword }
func (*Function) Kind() Kind   { return KindFunction }
func (*String) Kind() Kind     { return KindString }
func (*Token) Kind() Kind      { return KindToken }
func (*Comma) Kind() Kind      { return KindComma }

// Contains reports whether value passes the range check. Bounds with a
// unit are not checked.
func (r *Range) Contains(value float64) bool {
	if r == nil {
		return true
	}

	if r.Min != nil && r.Min.Unit == "" && value < r.Min.Value {
		return false
	}

	if r.Max != nil && r.Max.Unit == "" && value > r.Max.Value {
		return false
	}

	return true
}
