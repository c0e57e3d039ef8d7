package lexer

import (
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

const (
	plusSign     = '+'
	hyphenMinus  = '-'
	questionMark = '?'
	letterN      = 'n'
	letterU      = 'u'
	maxHexDigits = 6
)

func isDelim(token *Token, code int) bool {
	return token != nil && token.Type == tokenizer.Delim && charAt(token.Value, 0) == code
}

func skipSC(token *Token, offset int, lookup func(int) *Token) int {
	for token != nil && (token.Type == tokenizer.WhiteSpace || token.Type == tokenizer.Comment) {
		offset++
		token = lookup(offset)
	}

	return offset
}

// checkInteger verifies that token holds digits from offset on, with an
// optional sign unless disallowSign is set. It returns consumed+1.
func checkInteger(token *Token, offset int, disallowSign bool, consumed int) int {
	if token == nil {
		return 0
	}

	if code := charAt(token.Value, offset); code == plusSign || code == hyphenMinus {
		if disallowSign {
			return 0
		}

		offset++
	}

	for ; offset < len(token.Value); offset++ {
		if !tokenizer.IsDigit(charAt(token.Value, offset)) {
			return 0
		}
	}

	return consumed + 1
}

// consumeB matches the optional "['+' | '-'] B" tail after an "n".
func consumeB(token *Token, offset int, lookup func(int) *Token) int {
	sign := false
	pos := skipSC(token, offset, lookup)

	token = lookup(pos)
	if token == nil {
		return offset
	}

	if token.Type != tokenizer.Number {
		if !isDelim(token, plusSign) && !isDelim(token, hyphenMinus) {
			return offset
		}

		sign = true
		pos++
		pos = skipSC(lookup(pos), pos, lookup)

		token = lookup(pos)
		if token == nil || token.Type != tokenizer.Number {
			return 0
		}
	}

	if !sign {
		if code := charAt(token.Value, 0); code != plusSign && code != hyphenMinus {
			return 0
		}

		return checkInteger(token, 1, false, pos)
	}

	return checkInteger(token, 0, true, pos)
}

// afterDash matches the "B" that follows "n-" written as separate tokens.
func afterDash(offset int, lookup func(int) *Token) int {
	offset++
	offset = skipSC(lookup(offset), offset, lookup)

	return checkInteger(lookup(offset), 0, true, offset)
}

// anPlusB matches the <an+b> microsyntax.
//
//nolint:cyclop,gocognit // one branch per token shape.
func anPlusB(token *Token, lookup func(int) *Token, _ *grammar.Range) int {
	if token == nil {
		return 0
	}

	offset := 0

	switch {
	case token.Type == tokenizer.Number:
		return checkInteger(token, 0, false, offset)

	case token.Type == tokenizer.Ident && charAt(token.Value, 0) == hyphenMinus:
		if !tokenizer.CmpChar(token.Value, 1, letterN) {
			return 0
		}

		switch len(token.Value) {
		case 2:
			return consumeB(lookup(offset+1), offset+1, lookup)
		case 3:
			if charAt(token.Value, 2) != hyphenMinus {
				return 0
			}

			return afterDash(offset, lookup)
		default:
			if charAt(token.Value, 2) != hyphenMinus {
				return 0
			}

			return checkInteger(token, 3, true, offset)
		}

	case token.Type == tokenizer.Ident || (isDelim(token, plusSign) && lookup(1) != nil && lookup(1).Type == tokenizer.Ident):
		if token.Type != tokenizer.Ident {
			offset++
			token = lookup(offset)
		}

		if token == nil || !tokenizer.CmpChar(token.Value, 0, letterN) {
			return 0
		}

		switch len(token.Value) {
		case 1:
			return consumeB(lookup(offset+1), offset+1, lookup)
		case 2:
			if charAt(token.Value, 1) != hyphenMinus {
				return 0
			}

			return afterDash(offset, lookup)
		default:
			if charAt(token.Value, 1) != hyphenMinus {
				return 0
			}

			return checkInteger(token, 2, true, offset)
		}

	case token.Type == tokenizer.Dimension:
		start := 0
		if code := charAt(token.Value, 0); code == plusSign || code == hyphenMinus {
			start = 1
		}

		idx := start
		for idx < len(token.Value) && tokenizer.IsDigit(charAt(token.Value, idx)) {
			idx++
		}

		if idx == start || !tokenizer.CmpChar(token.Value, idx, letterN) {
			return 0
		}

		switch {
		case idx+1 == len(token.Value):
			return consumeB(lookup(offset+1), offset+1, lookup)
		case charAt(token.Value, idx+1) != hyphenMinus:
			return 0
		case idx+2 == len(token.Value):
			return afterDash(offset, lookup)
		default:
			return checkInteger(token, idx+2, true, offset)
		}
	}

	return 0
}

// hexSequence counts hex digits of token from offset. With allowDash a
// dash after at least one digit starts a range end, which is checked too.
func hexSequence(token *Token, offset int, allowDash bool) int {
	length := 0

	for pos := offset; pos < len(token.Value); pos++ {
		code := charAt(token.Value, pos)

		if code == hyphenMinus && allowDash && length != 0 {
			if hexSequence(token, offset+length+1, false) == 0 {
				return 0
			}

			return maxHexDigits
		}

		if !tokenizer.IsHexDigit(code) {
			return 0
		}

		length++
		if length > maxHexDigits {
			return 0
		}
	}

	return length
}

// withQuestionMarks consumes trailing "?" delims while the total digit
// count stays within six.
func withQuestionMarks(digits, offset int, lookup func(int) *Token) int {
	if digits == 0 {
		return 0
	}

	for isDelim(lookup(offset), questionMark) {
		digits++
		if digits > maxHexDigits {
			return 0
		}

		offset++
	}

	return offset
}

// urange matches the <urange> microsyntax, e.g. "U+0025-00FF" or "u+4??".
func urange(token *Token, lookup func(int) *Token, _ *grammar.Range) int {
	offset := 0

	if token == nil || token.Type != tokenizer.Ident || !tokenizer.CmpChar(token.Value, 0, letterU) {
		return 0
	}

	offset++

	token = lookup(offset)
	if token == nil {
		return 0
	}

	switch {
	case isDelim(token, plusSign):
		offset++

		token = lookup(offset)
		if token == nil {
			return 0
		}

		if token.Type == tokenizer.Ident {
			return withQuestionMarks(hexSequence(token, 0, true), offset+1, lookup)
		}

		if isDelim(token, questionMark) {
			return withQuestionMarks(1, offset+1, lookup)
		}

		return 0

	case token.Type == tokenizer.Number:
		digits := hexSequence(token, 1, true)
		if digits == 0 {
			return 0
		}

		offset++

		next := lookup(offset)
		if next == nil {
			return offset
		}

		if next.Type == tokenizer.Dimension || next.Type == tokenizer.Number {
			if charAt(next.Value, 0) != hyphenMinus || hexSequence(next, 1, false) == 0 {
				return 0
			}

			return offset + 1
		}

		return withQuestionMarks(digits, offset, lookup)

	case token.Type == tokenizer.Dimension:
		return withQuestionMarks(hexSequence(token, 1, true), offset+1, lookup)
	}

	return 0
}
