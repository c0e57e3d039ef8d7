package tokenizer

// Character classes of the dispatch table. ASCII characters that do not
// fall into one of these classes are their own class.
const (
	classWhiteSpace   = 130
	classDigit        = 131
	classNameStart    = 132
	classNonPrintable = 133
)

const asciiLimit = 128

// Named code points used across the toolkit.
const (
	charTab            = 9
	charLineFeed       = 10
	charFormFeed       = 12
	charCarriageReturn = 13
	charSpace          = 32
	charQuotation      = 34
	charNumberSign     = 35
	charPercent        = 37
	charApostrophe     = 39
	charLeftParen      = 40
	charRightParen     = 41
	charAsterisk       = 42
	charPlus           = 43
	charComma          = 44
	charHyphenMinus    = 45
	charFullStop       = 46
	charSolidus        = 47
	charColon          = 58
	charSemicolon      = 59
	charLessThan       = 60
	charExclamation    = 33
	charCommercialAt   = 64
	charLeftBracket    = 91
	charBackslash      = 92
	charRightBracket   = 93
	charLowLine        = 95
	charLeftCurly      = 123
	charRightCurly     = 125
	charLowerE         = 101
	charDelete         = 127
)

var charClasses = buildCharClasses()

func buildCharClasses() [asciiLimit]int {
	var classes [asciiLimit]int

	for code := range asciiLimit {
		switch {
		case IsWhiteSpace(code):
			classes[code] = classWhiteSpace
		case IsDigit(code):
			classes[code] = classDigit
		case IsNameStart(code):
			classes[code] = classNameStart
		case IsNonPrintable(code):
			classes[code] = classNonPrintable
		default:
			classes[code] = code
		}
	}

	return classes
}

// charClass returns the dispatch class of a code point.
func charClass(code int) int {
	if code < asciiLimit {
		return charClasses[code]
	}

	return classNameStart
}

// IsDigit reports whether code is U+0030 DIGIT ZERO (0) .. U+0039 DIGIT NINE (9).
func IsDigit(code int) bool {
	return code >= '0' && code <= '9'
}

// IsHexDigit reports whether code is a digit or A-F / a-f.
func IsHexDigit(code int) bool {
	return IsDigit(code) || (code >= 'A' && code <= 'F') || (code >= 'a' && code <= 'f')
}

// IsUppercaseLetter reports whether code is A-Z.
func IsUppercaseLetter(code int) bool {
	return code >= 'A' && code <= 'Z'
}

// IsLowercaseLetter reports whether code is a-z.
func IsLowercaseLetter(code int) bool {
	return code >= 'a' && code <= 'z'
}

// IsLetter reports whether code is an ASCII letter.
func IsLetter(code int) bool {
	return IsUppercaseLetter(code) || IsLowercaseLetter(code)
}

// IsNonASCII reports whether code is outside the ASCII range. Every byte of a
// multi-byte UTF-8 sequence qualifies.
func IsNonASCII(code int) bool {
	return code >= asciiLimit
}

// IsNameStart reports whether code may start a name.
func IsNameStart(code int) bool {
	return IsLetter(code) || IsNonASCII(code) || code == charLowLine
}

// IsName reports whether code may continue a name.
func IsName(code int) bool {
	return IsNameStart(code) || IsDigit(code) || code == charHyphenMinus
}

// IsNonPrintable reports whether code is a non-printable control character.
func IsNonPrintable(code int) bool {
	return (code >= 0 && code <= 8) || code == 11 || (code >= 14 && code <= 31) || code == charDelete
}

// IsNewline reports whether code is LF, CR or FF.
func IsNewline(code int) bool {
	return code == charLineFeed || code == charCarriageReturn || code == charFormFeed
}

// IsWhiteSpace reports whether code is a newline, tab or space.
func IsWhiteSpace(code int) bool {
	return IsNewline(code) || code == charSpace || code == charTab
}

// IsValidEscape reports whether the two code points start a valid escape.
func IsValidEscape(first, second int) bool {
	if first != charBackslash {
		return false
	}

	return !IsNewline(second) && second != 0
}

// IsIdentifierStart reports whether three code points would start an identifier.
func IsIdentifierStart(first, second, third int) bool {
	switch {
	case first == charHyphenMinus:
		return IsNameStart(second) || second == charHyphenMinus || IsValidEscape(second, third)
	case IsNameStart(first):
		return true
	case first == charBackslash:
		return IsValidEscape(first, second)
	default:
		return false
	}
}

// IsNumberStart reports how many code points of the three start a number:
// 0 when they don't, otherwise the length of the prefix that was inspected.
func IsNumberStart(first, second, third int) int {
	switch {
	case first == charPlus || first == charHyphenMinus:
		if IsDigit(second) {
			return 2
		}

		if second == charFullStop && IsDigit(third) {
			return 3
		}

		return 0
	case first == charFullStop:
		if IsDigit(second) {
			return 2
		}

		return 0
	case IsDigit(first):
		return 1
	default:
		return 0
	}
}

// BOMLength returns the byte length of a byte order mark at the start of
// source, or zero.
func BOMLength(source string) int {
	// U+FEFF and U+FFFE encoded as UTF-8.
	if len(source) >= 3 && source[0] == 0xEF &&
		((source[1] == 0xBB && source[2] == 0xBF) || (source[1] == 0xBF && source[2] == 0xBE)) {
		return 3
	}

	return 0
}
