package tokenizer

import (
	"iter"
	"strings"
)

// EmitFunc receives every token produced by Tokenize.
type EmitFunc func(tokenType TokenType, start, end int)

// scanner holds the state of a single tokenization pass.
type scanner struct {
	source    string
	offset    int
	tokenType TokenType
}

func (sc *scanner) char(offset int) int {
	return CharAt(sc.source, offset)
}

// Tokenize scans source once from left to right and reports each token to
// emit. It never fails: malformed input degrades to BadString, BadUrl or
// Delim tokens. A leading byte order mark is excluded from all ranges.
func Tokenize(source string, emit EmitFunc) {
	sc := &scanner{source: source}
	start := BOMLength(source)
	sc.offset = start

	for sc.offset < len(source) {
		sc.scanToken()
		emit(sc.tokenType, start, sc.offset)
		start = sc.offset
	}
}

// Tokens returns all tokens of source as a slice.
func Tokens(source string) []Token {
	var tokens []Token

	Tokenize(source, func(tokenType TokenType, start, end int) {
		tokens = append(tokens, Token{Type: tokenType, Start: start, End: end})
	})

	return tokens
}

// All returns a lazy, restartable sequence over the tokens of source.
func All(source string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		sc := &scanner{source: source}
		start := BOMLength(source)
		sc.offset = start

		for sc.offset < len(source) {
			sc.scanToken()

			if !yield(Token{Type: sc.tokenType, Start: start, End: sc.offset}) {
				return
			}

			start = sc.offset
		}
	}
}

//nolint:gocyclo,cyclop // one dispatch arm per character class.
func (sc *scanner) scanToken() {
	code := int(sc.source[sc.offset])

	switch charClass(code) {
	case classWhiteSpace:
		sc.tokenType = WhiteSpace
		sc.offset = FindWhiteSpaceEnd(sc.source, sc.offset+1)
	case charQuotation, charApostrophe:
		sc.consumeString()
	case charNumberSign:
		if IsName(sc.char(sc.offset+1)) || IsValidEscape(sc.char(sc.offset+1), sc.char(sc.offset+2)) {
			sc.tokenType = Hash
			sc.offset = ConsumeName(sc.source, sc.offset+1)
		} else {
			sc.delim()
		}
	case charLeftParen:
		sc.single(LeftParenthesis)
	case charRightParen:
		sc.single(RightParenthesis)
	case charPlus, charFullStop:
		if IsNumberStart(code, sc.char(sc.offset+1), sc.char(sc.offset+2)) != 0 {
			sc.consumeNumeric()
		} else {
			sc.delim()
		}
	case charComma:
		sc.single(Comma)
	case charHyphenMinus:
		sc.scanHyphenMinus(code)
	case charSolidus:
		if sc.char(sc.offset+1) == charAsterisk {
			sc.tokenType = Comment

			end := strings.Index(sc.source[sc.offset+2:], "*/")
			if end == -1 {
				sc.offset = len(sc.source)
			} else {
				sc.offset += 2 + end + 2
			}
		} else {
			sc.delim()
		}
	case charColon:
		sc.single(Colon)
	case charSemicolon:
		sc.single(Semicolon)
	case charLessThan:
		if sc.char(sc.offset+1) == charExclamation && sc.char(sc.offset+2) == charHyphenMinus &&
			sc.char(sc.offset+3) == charHyphenMinus {
			sc.tokenType = CDO
			sc.offset += 4
		} else {
			sc.delim()
		}
	case charCommercialAt:
		if IsIdentifierStart(sc.char(sc.offset+1), sc.char(sc.offset+2), sc.char(sc.offset+3)) {
			sc.tokenType = AtKeyword
			sc.offset = ConsumeName(sc.source, sc.offset+1)
		} else {
			sc.delim()
		}
	case charLeftBracket:
		sc.single(LeftSquareBracket)
	case charBackslash:
		if IsValidEscape(code, sc.char(sc.offset+1)) {
			sc.consumeIdentLike()
		} else {
			sc.delim()
		}
	case charRightBracket:
		sc.single(RightSquareBracket)
	case charLeftCurly:
		sc.single(LeftCurlyBracket)
	case charRightCurly:
		sc.single(RightCurlyBracket)
	case classDigit:
		sc.consumeNumeric()
	case classNameStart:
		sc.consumeIdentLike()
	default:
		sc.delim()
	}
}

func (sc *scanner) scanHyphenMinus(code int) {
	next, afterNext := sc.char(sc.offset+1), sc.char(sc.offset+2)

	switch {
	case IsNumberStart(code, next, afterNext) != 0:
		sc.consumeNumeric()
	case next == charHyphenMinus && afterNext == '>':
		sc.tokenType = CDC
		sc.offset += 3
	case IsIdentifierStart(code, next, afterNext):
		sc.consumeIdentLike()
	default:
		sc.delim()
	}
}

func (sc *scanner) single(tokenType TokenType) {
	sc.tokenType = tokenType
	sc.offset++
}

func (sc *scanner) delim() {
	sc.single(Delim)
}

// consumeNumeric produces a Number, Percentage or Dimension token.
func (sc *scanner) consumeNumeric() {
	sc.offset = ConsumeNumber(sc.source, sc.offset)

	if IsIdentifierStart(sc.char(sc.offset), sc.char(sc.offset+1), sc.char(sc.offset+2)) {
		sc.tokenType = Dimension
		sc.offset = ConsumeName(sc.source, sc.offset)

		return
	}

	if sc.char(sc.offset) == charPercent {
		sc.tokenType = Percentage
		sc.offset++

		return
	}

	sc.tokenType = Number
}

// consumeIdentLike produces an Ident, Function or Url token.
func (sc *scanner) consumeIdentLike() {
	nameStart := sc.offset
	sc.offset = ConsumeName(sc.source, sc.offset)

	if CmpStr(sc.source, nameStart, sc.offset, "url") && sc.char(sc.offset) == charLeftParen {
		sc.offset = FindWhiteSpaceEnd(sc.source, sc.offset+1)

		// A quoted url is a function whose argument is a string token.
		if code := sc.char(sc.offset); code == charQuotation || code == charApostrophe {
			sc.tokenType = Function
			sc.offset = nameStart + len("url(")

			return
		}

		sc.consumeURL()

		return
	}

	if sc.char(sc.offset) == charLeftParen {
		sc.tokenType = Function
		sc.offset++

		return
	}

	sc.tokenType = Ident
}

// consumeString produces a String or BadString token. The opening quote is
// at the current offset.
func (sc *scanner) consumeString() {
	quote := sc.char(sc.offset)
	sc.offset++
	sc.tokenType = String

	for ; sc.offset < len(sc.source); sc.offset++ {
		code := int(sc.source[sc.offset])

		switch charClass(code) {
		case quote:
			sc.offset++

			return
		case classWhiteSpace:
			if IsNewline(code) {
				sc.offset += NewlineLength(sc.source, sc.offset, code)
				sc.tokenType = BadString

				return
			}
		case charBackslash:
			if sc.offset == len(sc.source)-1 {
				continue
			}

			next := sc.char(sc.offset + 1)
			if IsNewline(next) {
				sc.offset += NewlineLength(sc.source, sc.offset+1, next)
			} else if IsValidEscape(code, next) {
				sc.offset = ConsumeEscaped(sc.source, sc.offset) - 1
			}
		}
	}
}

// consumeURL produces a Url or BadUrl token; the offset is just after
// "url(" and any following whitespace.
func (sc *scanner) consumeURL() {
	sc.tokenType = Url
	sc.offset = FindWhiteSpaceEnd(sc.source, sc.offset)

	for ; sc.offset < len(sc.source); sc.offset++ {
		code := int(sc.source[sc.offset])

		switch charClass(code) {
		case charRightParen:
			sc.offset++

			return
		case classWhiteSpace:
			sc.offset = FindWhiteSpaceEnd(sc.source, sc.offset)

			if sc.char(sc.offset) == charRightParen || sc.offset >= len(sc.source) {
				if sc.offset < len(sc.source) {
					sc.offset++
				}

				return
			}

			sc.badURL()

			return
		case charQuotation, charApostrophe, charLeftParen, classNonPrintable:
			sc.badURL()

			return
		case charBackslash:
			if IsValidEscape(code, sc.char(sc.offset+1)) {
				sc.offset = ConsumeEscaped(sc.source, sc.offset) - 1

				continue
			}

			sc.badURL()

			return
		}
	}
}

func (sc *scanner) badURL() {
	sc.offset = ConsumeBadURLRemnants(sc.source, sc.offset)
	sc.tokenType = BadUrl
}
