// Package escape converts identifiers, strings and urls between their CSS
// source form and their decoded value.
package escape

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

const (
	backslash      = '\\'
	quotation      = '"'
	apostrophe     = '\''
	leftParen      = '('
	rightParen     = ')'
	space          = ' '
	hyphenMinus    = '-'
	carriageReturn = '\r'
	lineFeed       = '\n'
	deleteChar     = 0x7F
	lastControl    = 0x1F
	urlPrefixLen   = len("url(")
	replacement    = "\uFFFD"
)

// decodeEscapes resolves the escapes of body. A backslash followed by a
// newline is dropped along with the newline, a trailing backslash is dropped.
func decodeEscapes(body string) string {
	if strings.IndexByte(body, backslash) < 0 {
		return body
	}

	var decoded strings.Builder

	decoded.Grow(len(body))

	last := len(body) - 1

	for idx := 0; idx < len(body); idx++ {
		code := body[idx]

		if code != backslash {
			decoded.WriteByte(code)

			continue
		}

		if idx == last {
			break
		}

		next := tokenizer.CharAt(body, idx+1)

		if tokenizer.IsValidEscape(backslash, next) {
			end := tokenizer.ConsumeEscaped(body, idx)
			decoded.WriteString(tokenizer.DecodeEscaped(body[idx+1 : end]))

			idx = end - 1

			continue
		}

		idx++

		if next == carriageReturn && tokenizer.CharAt(body, idx+1) == lineFeed {
			idx++
		}
	}

	return decoded.String()
}

func isControl(code byte) bool {
	return code <= lastControl || code == deleteChar
}

func hexEscape(code byte) string {
	return "\\" + strconv.FormatInt(int64(code), 16)
}

// DecodeIdent resolves the escapes of an identifier.
func DecodeIdent(ident string) string {
	return decodeEscapes(ident)
}

// EncodeIdent escapes value so it tokenizes as a single identifier.
func EncodeIdent(value string) string {
	if value == "-" {
		return `\-`
	}

	var encoded strings.Builder

	encoded.Grow(len(value))

	for idx := range len(value) {
		code := value[idx]

		switch {
		case code == 0:
			encoded.WriteString(replacement)
		case isControl(code),
			tokenizer.IsDigit(int(code)) && (idx == 0 || idx == 1 && value[0] == hyphenMinus):
			encoded.WriteString(hexEscape(code))
			encoded.WriteByte(space)
		case tokenizer.IsName(int(code)):
			encoded.WriteByte(code)
		default:
			encoded.WriteByte(backslash)
			encoded.WriteByte(code)
		}
	}

	return encoded.String()
}

// DecodeString strips the quotes of a string token and resolves its escapes.
// An unclosed string keeps everything after the opening quote.
func DecodeString(str string) string {
	if str == "" {
		return ""
	}

	start := 0
	end := len(str)
	quote := str[0]

	if quote == quotation || quote == apostrophe {
		start = 1

		if len(str) > 1 && str[len(str)-1] == quote {
			end--
		}
	}

	return decodeEscapes(str[start:end])
}

// EncodeString quotes value as a CSS string, using apostrophes when
// useApostrophe is set and double quotes otherwise.
func EncodeString(value string, useApostrophe bool) string {
	quote := byte(quotation)
	if useApostrophe {
		quote = apostrophe
	}

	var encoded strings.Builder

	encoded.Grow(len(value) + 2)
	encoded.WriteByte(quote)

	// A hex escape swallows a following hex digit or whitespace unless a
	// space separates them.
	wsBeforeHexIsNeeded := false

	for idx := range len(value) {
		code := value[idx]

		switch {
		case code == 0:
			encoded.WriteString(replacement)

			continue
		case isControl(code):
			encoded.WriteString(hexEscape(code))

			wsBeforeHexIsNeeded = true

			continue
		case code == quote || code == backslash:
			encoded.WriteByte(backslash)
			encoded.WriteByte(code)
		default:
			if wsBeforeHexIsNeeded && (tokenizer.IsHexDigit(int(code)) || tokenizer.IsWhiteSpace(int(code))) {
				encoded.WriteByte(space)
			}

			encoded.WriteByte(code)
		}

		wsBeforeHexIsNeeded = false
	}

	encoded.WriteByte(quote)

	return encoded.String()
}

// DecodeURL extracts the value of a url token: the text between "url(" and
// ")", trimmed of whitespace, with escapes resolved.
func DecodeURL(url string) string {
	if len(url) < urlPrefixLen {
		return ""
	}

	end := len(url)
	if url[end-1] == rightParen {
		end--
	}

	body := url[urlPrefixLen:max(end, urlPrefixLen)]
	body = strings.TrimFunc(body, func(r rune) bool {
		return r < 0x80 && tokenizer.IsWhiteSpace(int(r))
	})

	return decodeEscapes(body)
}

// EncodeURL renders value as an unquoted url token.
func EncodeURL(value string) string {
	var encoded strings.Builder

	encoded.Grow(len(value) + urlPrefixLen + 1)
	encoded.WriteString("url(")

	wsBeforeHexIsNeeded := false

	for idx := range len(value) {
		code := value[idx]

		switch {
		case code == 0:
			encoded.WriteString(replacement)

			continue
		case isControl(code):
			encoded.WriteString(hexEscape(code))

			wsBeforeHexIsNeeded = true

			continue
		case code == space, code == backslash, code == quotation, code == apostrophe,
			code == leftParen, code == rightParen:
			encoded.WriteByte(backslash)
			encoded.WriteByte(code)
		default:
			if wsBeforeHexIsNeeded && tokenizer.IsHexDigit(int(code)) {
				encoded.WriteByte(space)
			}

			encoded.WriteByte(code)
		}

		wsBeforeHexIsNeeded = false
	}

	encoded.WriteByte(rightParen)

	return encoded.String()
}
