package ast

// Kind identifies the concrete type of a Node.
type Kind uint8

// Node kinds.
const (
	KindInvalid Kind = iota
	KindAnPlusB
	KindAtrule
	KindAtrulePrelude
	KindAttributeSelector
	KindBlock
	KindBrackets
	KindCDC
	KindCDO
	KindClassSelector
	KindCombinator
	KindComment
	KindDeclaration
	KindDeclarationList
	KindDimension
	KindFunction
	KindHash
	KindIdSelector
	KindIdentifier
	KindMediaFeature
	KindMediaQuery
	KindMediaQueryList
	KindNestingSelector
	KindNth
	KindNumber
	KindOperator
	KindParentheses
	KindPercentage
	KindPseudoClassSelector
	KindPseudoElementSelector
	KindRatio
	KindRaw
	KindRule
	KindSelector
	KindSelectorList
	KindString
	KindStyleSheet
	KindTypeSelector
	KindUnicodeRange
	KindUrl
	KindValue
	KindWhiteSpace

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:               "Invalid",
	KindAnPlusB:               "AnPlusB",
	KindAtrule:                "Atrule",
	KindAtrulePrelude:         "AtrulePrelude",
	KindAttributeSelector:     "AttributeSelector",
	KindBlock:                 "Block",
	KindBrackets:              "Brackets",
	KindCDC:                   "CDC",
	KindCDO:                   "CDO",
	KindClassSelector:         "ClassSelector",
	KindCombinator:            "Combinator",
	KindComment:               "Comment",
	KindDeclaration:           "Declaration",
	KindDeclarationList:       "DeclarationList",
	KindDimension:             "Dimension",
	KindFunction:              "Function",
	KindHash:                  "Hash",
	KindIdSelector:            "IdSelector",
	KindIdentifier:            "Identifier",
	KindMediaFeature:          "MediaFeature",
	KindMediaQuery:            "MediaQuery",
	KindMediaQueryList:        "MediaQueryList",
	KindNestingSelector:       "NestingSelector",
	KindNth:                   "Nth",
	KindNumber:                "Number",
	KindOperator:              "Operator",
	KindParentheses:           "Parentheses",
	KindPercentage:            "Percentage",
	KindPseudoClassSelector:   "PseudoClassSelector",
	KindPseudoElementSelector: "PseudoElementSelector",
	KindRatio:                 "Ratio",
	KindRaw:                   "Raw",
	KindRule:                  "Rule",
	KindSelector:              "Selector",
	KindSelectorList:          "SelectorList",
	KindString:                "String",
	KindStyleSheet:            "StyleSheet",
	KindTypeSelector:          "TypeSelector",
	KindUnicodeRange:          "UnicodeRange",
	KindUrl:                   "Url",
	KindValue:                 "Value",
	KindWhiteSpace:            "WhiteSpace",
}

var kindsByName = func() map[string]Kind {
	byName := make(map[string]Kind, kindCount)

	for kind := KindAnPlusB; kind < kindCount; kind++ {
		byName[kindNames[kind]] = kind
	}

	return byName
}()

// String returns the node type name, e.g. "Declaration".
func (kind Kind) String() string {
	if kind < kindCount {
		return kindNames[kind]
	}

	return kindNames[KindInvalid]
}

// KindByName resolves a node type name.
func KindByName(name string) (Kind, bool) {
	kind, ok := kindsByName[name]

	return kind, ok
}

// Kinds returns every valid node kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)

	for kind := KindAnPlusB; kind < kindCount; kind++ {
		kinds = append(kinds, kind)
	}

	return kinds
}

// WalkContext returns the walker context a node of this kind opens, or "".
func (kind Kind) WalkContext() string {
	switch kind {
	case KindStyleSheet:
		return "stylesheet"
	case KindAtrule:
		return "atrule"
	case KindAtrulePrelude:
		return "atrulePrelude"
	case KindRule:
		return "rule"
	case KindSelectorList:
		return "selector"
	case KindBlock:
		return "block"
	case KindDeclaration:
		return "declaration"
	case KindFunction, KindPseudoClassSelector, KindPseudoElementSelector:
		return "function"
	default:
		return ""
	}
}
