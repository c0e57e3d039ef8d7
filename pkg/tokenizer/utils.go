package tokenizer

import (
	"strconv"
	"unicode/utf8"
)

const (
	// maxHexEscapeDigits is the number of hex digits an escape may carry.
	maxHexEscapeDigits = 6
	maxCodePoint       = 0x10FFFF
	surrogateFirst     = 0xD800
	surrogateLast      = 0xDFFF
	lowercaseBit       = 32
)

// CharAt returns the byte at offset as a code point, or 0 past the end.
func CharAt(source string, offset int) int {
	if offset >= 0 && offset < len(source) {
		return int(source[offset])
	}

	return 0
}

// NewlineLength returns 2 for a CRLF pair starting at offset, else 1.
func NewlineLength(source string, offset, code int) int {
	if code == charCarriageReturn && CharAt(source, offset+1) == charLineFeed {
		return 2
	}

	return 1
}

// CmpChar compares the byte at offset with a lowercase reference code,
// ignoring ASCII case.
func CmpChar(source string, offset, reference int) bool {
	if offset < 0 || offset >= len(source) {
		return false
	}

	code := int(source[offset])
	if IsUppercaseLetter(code) {
		code |= lowercaseBit
	}

	return code == reference
}

// CmpStr compares source[start:end] with a lowercase reference string,
// ignoring ASCII case.
func CmpStr(source string, start, end int, reference string) bool {
	if end-start != len(reference) || start < 0 || end > len(source) {
		return false
	}

	for idx := start; idx < end; idx++ {
		code := int(source[idx])
		if IsUppercaseLetter(code) {
			code |= lowercaseBit
		}

		if code != int(reference[idx-start]) {
			return false
		}
	}

	return true
}

// FindWhiteSpaceStart walks backwards from offset over whitespace and returns
// the offset of the first whitespace character of the run.
func FindWhiteSpaceStart(source string, offset int) int {
	for ; offset >= 0 && IsWhiteSpace(CharAt(source, offset)); offset-- {
	}

	return offset + 1
}

// FindWhiteSpaceEnd returns the offset just after the whitespace run at offset.
func FindWhiteSpaceEnd(source string, offset int) int {
	for ; offset < len(source) && IsWhiteSpace(int(source[offset])); offset++ {
	}

	return offset
}

// FindDecimalNumberEnd returns the offset just after the digit run at offset.
func FindDecimalNumberEnd(source string, offset int) int {
	for ; offset < len(source) && IsDigit(int(source[offset])); offset++ {
	}

	return offset
}

// ConsumeEscaped consumes an escape sequence whose backslash is at offset and
// returns the offset just after it. Hex escapes take up to six digits and
// one trailing whitespace.
func ConsumeEscaped(source string, offset int) int {
	offset += 2

	if IsHexDigit(CharAt(source, offset-1)) {
		limit := min(len(source), offset+maxHexEscapeDigits-1)
		for ; offset < limit && IsHexDigit(CharAt(source, offset)); offset++ {
		}

		code := CharAt(source, offset)
		if IsWhiteSpace(code) {
			offset += NewlineLength(source, offset, code)
		}
	}

	return offset
}

// ConsumeName consumes name code points and escapes starting at offset.
func ConsumeName(source string, offset int) int {
	for ; offset < len(source); offset++ {
		code := int(source[offset])

		if IsName(code) {
			continue
		}

		if IsValidEscape(code, CharAt(source, offset+1)) {
			offset = ConsumeEscaped(source, offset) - 1

			continue
		}

		break
	}

	return offset
}

// ConsumeNumber consumes a number (sign, digits, fraction, exponent)
// starting at offset.
func ConsumeNumber(source string, offset int) int {
	code := CharAt(source, offset)

	if code == charPlus || code == charHyphenMinus {
		offset++
		code = CharAt(source, offset)
	}

	if IsDigit(code) {
		offset = FindDecimalNumberEnd(source, offset+1)
		code = CharAt(source, offset)
	}

	if code == charFullStop && IsDigit(CharAt(source, offset+1)) {
		offset = FindDecimalNumberEnd(source, offset+2)
	}

	if CmpChar(source, offset, charLowerE) {
		sign := 0
		code = CharAt(source, offset+1)

		if code == charHyphenMinus || code == charPlus {
			sign = 1
			code = CharAt(source, offset+2)
		}

		if IsDigit(code) {
			offset = FindDecimalNumberEnd(source, offset+1+sign+1)
		}
	}

	return offset
}

// ConsumeBadURLRemnants skips to just past the closing parenthesis of a
// malformed url, honouring escapes.
func ConsumeBadURLRemnants(source string, offset int) int {
	for ; offset < len(source); offset++ {
		code := int(source[offset])

		if code == charRightParen {
			offset++

			break
		}

		if IsValidEscape(code, CharAt(source, offset+1)) {
			offset = ConsumeEscaped(source, offset)
		}
	}

	return offset
}

// DecodeEscaped decodes the body of an escape (without the backslash). A
// single non-hex character decodes to itself; hex digits decode to the code
// point, with zero, surrogates and out-of-range values mapped to U+FFFD.
func DecodeEscaped(escaped string) string {
	if len(escaped) == 1 && !IsHexDigit(int(escaped[0])) {
		return escaped
	}

	code, err := strconv.ParseUint(trimEscapeWhiteSpace(escaped), 16, 32)
	if err != nil || code == 0 || (code >= surrogateFirst && code <= surrogateLast) || code > maxCodePoint {
		return string(utf8.RuneError)
	}

	return string(rune(code))
}

// trimEscapeWhiteSpace drops the single whitespace that may follow hex digits.
func trimEscapeWhiteSpace(escaped string) string {
	end := len(escaped)
	for end > 0 && IsWhiteSpace(int(escaped[end-1])) {
		end--
	}

	return escaped[:end]
}
