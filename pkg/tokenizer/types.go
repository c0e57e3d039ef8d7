// Package tokenizer implements CSS Syntax Level 3 tokenization and a
// cursor-based token stream used by the parser and the lexer.
package tokenizer

// TokenType identifies the kind of a CSS token.
type TokenType uint8

// Token types. The numeric values are stable and packed into the upper
// byte of stream entries.
const (
	EOF TokenType = iota
	Ident
	Function
	AtKeyword
	Hash
	String
	BadString
	Url
	BadUrl
	Delim
	Number
	Percentage
	Dimension
	WhiteSpace
	CDO
	CDC
	Colon
	Semicolon
	Comma
	LeftSquareBracket
	RightSquareBracket
	LeftParenthesis
	RightParenthesis
	LeftCurlyBracket
	RightCurlyBracket
	Comment
)

// TokenTypeCount is the number of token types.
const TokenTypeCount = int(Comment) + 1

var tokenNames = [TokenTypeCount]string{
	"EOF-token",
	"ident-token",
	"function-token",
	"at-keyword-token",
	"hash-token",
	"string-token",
	"bad-string-token",
	"url-token",
	"bad-url-token",
	"delim-token",
	"number-token",
	"percentage-token",
	"dimension-token",
	"whitespace-token",
	"CDO-token",
	"CDC-token",
	"colon-token",
	"semicolon-token",
	"comma-token",
	"[-token",
	"]-token",
	"(-token",
	")-token",
	"{-token",
	"}-token",
	"comment-token",
}

var typeNames = [TokenTypeCount]string{
	"EOF",
	"Ident",
	"Function",
	"AtKeyword",
	"Hash",
	"String",
	"BadString",
	"Url",
	"BadUrl",
	"Delim",
	"Number",
	"Percentage",
	"Dimension",
	"WhiteSpace",
	"CDO",
	"CDC",
	"Colon",
	"Semicolon",
	"Comma",
	"LeftSquareBracket",
	"RightSquareBracket",
	"LeftParenthesis",
	"RightParenthesis",
	"LeftCurlyBracket",
	"RightCurlyBracket",
	"Comment",
}

// Name returns the CSS Syntax name of the token type, e.g. "ident-token".
func (tt TokenType) Name() string {
	if int(tt) >= TokenTypeCount {
		return "unknown-token"
	}

	return tokenNames[tt]
}

// String returns the Go-style identifier of the token type.
func (tt TokenType) String() string {
	if int(tt) >= TokenTypeCount {
		return "Unknown"
	}

	return typeNames[tt]
}

// TypeByName resolves a token type by its CSS Syntax name ("ident-token").
func TypeByName(name string) (TokenType, bool) {
	for idx, tokenName := range tokenNames {
		if tokenName == name {
			return TokenType(idx), true
		}
	}

	return EOF, false
}

// Token is a single token with its byte range in the source.
type Token struct {
	Type  TokenType
	Start int
	End   int
}

// Value returns the token text within source.
func (tok Token) Value(source string) string {
	return source[tok.Start:tok.End]
}
