package lexer

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/names"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// GenericFunc matches the tokens at the current position and returns how
// many were consumed, or 0 for no match. Lookup returns the token at an
// offset from the current one, or nil past the end. Opts is the numeric
// range the enclosing type reference carries.
type GenericFunc func(token *Token, lookup func(offset int) *Token, opts *grammar.Range) int

// Unit groups known to dimension types.
var unitGroups = []string{"angle", "decibel", "frequency", "flex", "length", "resolution", "semitones", "time"}

var calcFunctions = []string{"calc(", "-moz-calc(", "-webkit-calc("}

var blockClosers = map[tokenizer.TokenType]tokenizer.TokenType{
	tokenizer.Function:          tokenizer.RightParenthesis,
	tokenizer.LeftParenthesis:   tokenizer.RightParenthesis,
	tokenizer.LeftSquareBracket: tokenizer.RightSquareBracket,
	tokenizer.LeftCurlyBracket:  tokenizer.RightCurlyBracket,
}

func charAt(str string, offset int) int {
	if offset < len(str) {
		return int(str[offset])
	}

	return 0
}

func equalFoldAny(str string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.EqualFold(str, candidate) {
			return true
		}
	}

	return false
}

// hasHackTail reports whether offset starts a "\0" or "\9" IE hack that
// ends str.
func hasHackTail(str string, offset int) bool {
	return offset == len(str)-2 && charAt(str, offset) == '\\' && tokenizer.IsDigit(charAt(str, offset+1))
}

func outOfRange(opts *grammar.Range, value string, end int) bool {
	if opts == nil {
		return false
	}

	number, err := strconv.ParseFloat(value[:end], 64)
	if err != nil {
		return true
	}

	return !opts.Contains(number)
}

// consumeFunction consumes a balanced function starting at token.
func consumeFunction(token *Token, lookup func(offset int) *Token) int {
	var stack []tokenizer.TokenType

	closer := tokenizer.EOF
	length := 0

	for ; token != nil; token = lookup(length) {
		switch token.Type {
		case tokenizer.RightCurlyBracket, tokenizer.RightParenthesis, tokenizer.RightSquareBracket:
			if token.Type != closer {
				return length
			}

			closer = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				return length + 1
			}
		case tokenizer.Function, tokenizer.LeftParenthesis, tokenizer.LeftSquareBracket, tokenizer.LeftCurlyBracket:
			stack = append(stack, closer)
			closer = blockClosers[token.Type]
		}

		length++
	}

	return length
}

// calc lets a numeric type also accept a calc() expression.
func calc(next GenericFunc) GenericFunc {
	return func(token *Token, lookup func(offset int) *Token, opts *grammar.Range) int {
		if token == nil {
			return 0
		}

		if token.Type == tokenizer.Function && equalFoldAny(token.Value, calcFunctions) {
			return consumeFunction(token, lookup)
		}

		return next(token, lookup, opts)
	}
}

func tokenType(tokenType tokenizer.TokenType) GenericFunc {
	return func(token *Token, _ func(int) *Token, _ *grammar.Range) int {
		if token == nil || token.Type != tokenType {
			return 0
		}

		return 1
	}
}

func customIdent(token *Token, _ func(int) *Token, _ *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Ident {
		return 0
	}

	if names.IsCSSWideKeyword(strings.ToLower(token.Value)) || strings.EqualFold(token.Value, "default") {
		return 0
	}

	return 1
}

func customPropertyName(token *Token, _ func(int) *Token, _ *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Ident || !names.IsCustomProperty(token.Value, 0) {
		return 0
	}

	return 1
}

func hexColor(token *Token, _ func(int) *Token, _ *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Hash {
		return 0
	}

	switch len(token.Value) {
	case 4, 5, 7, 9:
	default:
		return 0
	}

	for idx := 1; idx < len(token.Value); idx++ {
		if !tokenizer.IsHexDigit(charAt(token.Value, idx)) {
			return 0
		}
	}

	return 1
}

func idSelector(token *Token, _ func(int) *Token, _ *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Hash {
		return 0
	}

	value := token.Value
	if !tokenizer.IsIdentifierStart(charAt(value, 1), charAt(value, 2), charAt(value, 3)) {
		return 0
	}

	return 1
}

// scanValue consumes tokens up to an unbalanced closer. Stop reports
// tokens that end the value at the top level.
func scanValue(token *Token, lookup func(offset int) *Token, stop func(token *Token) bool) int {
	if token == nil {
		return 0
	}

	var stack []tokenizer.TokenType

	closer := tokenizer.EOF
	length := 0

scan:
	for ; token != nil; token = lookup(length) {
		switch token.Type {
		case tokenizer.BadString, tokenizer.BadUrl:
			break scan
		case tokenizer.RightCurlyBracket, tokenizer.RightParenthesis, tokenizer.RightSquareBracket:
			if token.Type != closer {
				break scan
			}

			closer = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case tokenizer.Function, tokenizer.LeftParenthesis, tokenizer.LeftSquareBracket, tokenizer.LeftCurlyBracket:
			stack = append(stack, closer)
			closer = blockClosers[token.Type]
		default:
			if closer == tokenizer.EOF && stop != nil && stop(token) {
				break scan
			}
		}

		length++
	}

	return length
}

func declarationValue(token *Token, lookup func(offset int) *Token, _ *grammar.Range) int {
	return scanValue(token, lookup, func(token *Token) bool {
		return token.Type == tokenizer.Semicolon || (token.Type == tokenizer.Delim && token.Value == "!")
	})
}

func anyValue(token *Token, lookup func(offset int) *Token, _ *grammar.Range) int {
	return scanValue(token, lookup, nil)
}

// dimension matches a dimension whose unit is one of units, or any unit
// when units is nil.
func dimension(units []string) GenericFunc {
	var known map[string]bool
	if units != nil {
		known = make(map[string]bool, len(units))
		for _, unit := range units {
			known[strings.ToLower(unit)] = true
		}
	}

	return func(token *Token, _ func(int) *Token, opts *grammar.Range) int {
		if token == nil || token.Type != tokenizer.Dimension {
			return 0
		}

		numberEnd := tokenizer.ConsumeNumber(token.Value, 0)

		if known != nil {
			unit := token.Value[numberEnd:]
			if hack := strings.IndexByte(token.Value[numberEnd:], '\\'); hack != -1 && hasHackTail(token.Value, numberEnd+hack) {
				unit = token.Value[numberEnd : numberEnd+hack]
			}

			if !known[strings.ToLower(unit)] {
				return 0
			}
		}

		if outOfRange(opts, token.Value, numberEnd) {
			return 0
		}

		return 1
	}
}

// zero accepts a number token equal to 0, falling back to next.
func zero(next GenericFunc) GenericFunc {
	return func(token *Token, lookup func(offset int) *Token, opts *grammar.Range) int {
		if token != nil && token.Type == tokenizer.Number {
			if number, err := strconv.ParseFloat(token.Value, 64); err == nil && number == 0 {
				return 1
			}
		}

		if next == nil {
			return 0
		}

		return next(token, lookup, opts)
	}
}

func percentage(token *Token, _ func(int) *Token, opts *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Percentage || outOfRange(opts, token.Value, len(token.Value)-1) {
		return 0
	}

	return 1
}

func number(token *Token, _ func(int) *Token, opts *grammar.Range) int {
	if token == nil {
		return 0
	}

	end := tokenizer.ConsumeNumber(token.Value, 0)
	if end != len(token.Value) && !hasHackTail(token.Value, end) {
		return 0
	}

	if outOfRange(opts, token.Value, end) {
		return 0
	}

	return 1
}

func integer(token *Token, _ func(int) *Token, opts *grammar.Range) int {
	if token == nil || token.Type != tokenizer.Number {
		return 0
	}

	idx := 0
	if first := charAt(token.Value, 0); first == '+' || first == '-' {
		idx = 1
	}

	for ; idx < len(token.Value); idx++ {
		if !tokenizer.IsDigit(charAt(token.Value, idx)) {
			return 0
		}
	}

	if outOfRange(opts, token.Value, idx) {
		return 0
	}

	return 1
}

// genericTypes returns the built-in generic types for the given unit
// groups.
func genericTypes(units map[string][]string) map[string]GenericFunc {
	types := make(map[string]GenericFunc, tokenizer.TokenTypeCount+len(unitGroups)+16)

	for idx := tokenizer.Ident; int(idx) < tokenizer.TokenTypeCount; idx++ {
		if idx == tokenizer.Comment {
			continue
		}

		types[idx.Name()] = tokenType(idx)
	}

	types["string"] = tokenType(tokenizer.String)
	types["ident"] = tokenType(tokenizer.Ident)
	types["percentage"] = calc(percentage)
	types["zero"] = zero(nil)
	types["number"] = calc(number)
	types["integer"] = calc(integer)
	types["custom-ident"] = customIdent
	types["custom-property-name"] = customPropertyName
	types["hex-color"] = hexColor
	types["id-selector"] = idSelector
	types["an-plus-b"] = anPlusB
	types["urange"] = urange
	types["declaration-value"] = declarationValue
	types["any-value"] = anyValue
	types["dimension"] = calc(dimension(nil))

	for _, group := range unitGroups {
		fn := dimension(append([]string{}, units[group]...))
		if group == "length" {
			fn = zero(fn)
		}

		types[group] = calc(fn)
	}

	return types
}
