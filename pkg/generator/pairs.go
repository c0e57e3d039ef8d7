package generator

import "github.com/Sumatoshi-tech/csstree/pkg/tokenizer"

// A pair side is either a token type or a delimiter character. Characters
// are shifted past the token type range so both fit one int.
const nonASCIIDelim = 0x8000

func delim(char byte) int {
	return int(char) << 8
}

func tok(tokenType tokenizer.TokenType) int {
	return int(tokenType)
}

// sideOf returns the pair side of a token about to be written.
func sideOf(tokenType tokenizer.TokenType, value string) int {
	if tokenType != tokenizer.Delim || value == "" {
		return tok(tokenType)
	}

	if value[0] > 0x7f {
		return nonASCIIDelim
	}

	return delim(value[0])
}

type pair [2]int

// specPairs lists adjacent token pairs that would be read back as
// different tokens without whitespace between them.
var specPairs = []pair{
	{tok(tokenizer.Ident), tok(tokenizer.Ident)},
	{tok(tokenizer.Ident), tok(tokenizer.Function)},
	{tok(tokenizer.Ident), tok(tokenizer.Url)},
	{tok(tokenizer.Ident), tok(tokenizer.BadUrl)},
	{tok(tokenizer.Ident), delim('-')},
	{tok(tokenizer.Ident), tok(tokenizer.Number)},
	{tok(tokenizer.Ident), tok(tokenizer.Percentage)},
	{tok(tokenizer.Ident), tok(tokenizer.Dimension)},
	{tok(tokenizer.Ident), tok(tokenizer.CDC)},
	{tok(tokenizer.Ident), tok(tokenizer.LeftParenthesis)},

	{tok(tokenizer.AtKeyword), tok(tokenizer.Ident)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Function)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Url)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.BadUrl)},
	{tok(tokenizer.AtKeyword), delim('-')},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Number)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Percentage)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Dimension)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.CDC)},

	{tok(tokenizer.Hash), tok(tokenizer.Ident)},
	{tok(tokenizer.Hash), tok(tokenizer.Function)},
	{tok(tokenizer.Hash), tok(tokenizer.Url)},
	{tok(tokenizer.Hash), tok(tokenizer.BadUrl)},
	{tok(tokenizer.Hash), delim('-')},
	{tok(tokenizer.Hash), tok(tokenizer.Number)},
	{tok(tokenizer.Hash), tok(tokenizer.Percentage)},
	{tok(tokenizer.Hash), tok(tokenizer.Dimension)},
	{tok(tokenizer.Hash), tok(tokenizer.CDC)},

	{tok(tokenizer.Dimension), tok(tokenizer.Ident)},
	{tok(tokenizer.Dimension), tok(tokenizer.Function)},
	{tok(tokenizer.Dimension), tok(tokenizer.Url)},
	{tok(tokenizer.Dimension), tok(tokenizer.BadUrl)},
	{tok(tokenizer.Dimension), delim('-')},
	{tok(tokenizer.Dimension), tok(tokenizer.Number)},
	{tok(tokenizer.Dimension), tok(tokenizer.Percentage)},
	{tok(tokenizer.Dimension), tok(tokenizer.Dimension)},
	{tok(tokenizer.Dimension), tok(tokenizer.CDC)},

	{delim('#'), tok(tokenizer.Ident)},
	{delim('#'), tok(tokenizer.Function)},
	{delim('#'), tok(tokenizer.Url)},
	{delim('#'), tok(tokenizer.BadUrl)},
	{delim('#'), delim('-')},
	{delim('#'), tok(tokenizer.Number)},
	{delim('#'), tok(tokenizer.Percentage)},
	{delim('#'), tok(tokenizer.Dimension)},
	{delim('#'), tok(tokenizer.CDC)},

	{delim('-'), tok(tokenizer.Ident)},
	{delim('-'), tok(tokenizer.Function)},
	{delim('-'), tok(tokenizer.Url)},
	{delim('-'), tok(tokenizer.BadUrl)},
	{delim('-'), delim('-')},
	{delim('-'), tok(tokenizer.Number)},
	{delim('-'), tok(tokenizer.Percentage)},
	{delim('-'), tok(tokenizer.Dimension)},
	{delim('-'), tok(tokenizer.CDC)},

	{tok(tokenizer.Number), tok(tokenizer.Ident)},
	{tok(tokenizer.Number), tok(tokenizer.Function)},
	{tok(tokenizer.Number), tok(tokenizer.Url)},
	{tok(tokenizer.Number), tok(tokenizer.BadUrl)},
	{tok(tokenizer.Number), tok(tokenizer.Number)},
	{tok(tokenizer.Number), tok(tokenizer.Percentage)},
	{tok(tokenizer.Number), tok(tokenizer.Dimension)},
	{tok(tokenizer.Number), delim('%')},
	{tok(tokenizer.Number), tok(tokenizer.CDC)},

	{delim('@'), tok(tokenizer.Ident)},
	{delim('@'), tok(tokenizer.Function)},
	{delim('@'), tok(tokenizer.Url)},
	{delim('@'), tok(tokenizer.BadUrl)},
	{delim('@'), delim('-')},
	{delim('@'), tok(tokenizer.CDC)},

	{delim('.'), tok(tokenizer.Number)},
	{delim('.'), tok(tokenizer.Percentage)},
	{delim('.'), tok(tokenizer.Dimension)},

	{delim('+'), tok(tokenizer.Number)},
	{delim('+'), tok(tokenizer.Percentage)},
	{delim('+'), tok(tokenizer.Dimension)},

	{delim('/'), delim('*')},
}

// safePairs extends specPairs with pairs that older consumers misread.
var safePairs = append(append([]pair{}, specPairs...), []pair{
	{tok(tokenizer.Ident), tok(tokenizer.Hash)},
	{tok(tokenizer.Dimension), tok(tokenizer.Hash)},
	{tok(tokenizer.Hash), tok(tokenizer.Hash)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.LeftParenthesis)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.String)},
	{tok(tokenizer.AtKeyword), tok(tokenizer.Colon)},
	{tok(tokenizer.Percentage), tok(tokenizer.Percentage)},
	{tok(tokenizer.Percentage), tok(tokenizer.Dimension)},
	{tok(tokenizer.Percentage), tok(tokenizer.Function)},
	{tok(tokenizer.Percentage), delim('-')},
	{tok(tokenizer.RightParenthesis), tok(tokenizer.Ident)},
	{tok(tokenizer.RightParenthesis), tok(tokenizer.Function)},
	{tok(tokenizer.RightParenthesis), tok(tokenizer.Percentage)},
	{tok(tokenizer.RightParenthesis), tok(tokenizer.Dimension)},
	{tok(tokenizer.RightParenthesis), tok(tokenizer.Hash)},
	{tok(tokenizer.RightParenthesis), delim('-')},
}...)

type pairSet map[int]struct{}

func newPairSet(pairs []pair) pairSet {
	set := make(pairSet, len(pairs))
	for _, p := range pairs {
		set[p[0]<<16|p[1]] = struct{}{}
	}

	return set
}

var (
	specSet = newPairSet(specPairs)
	safeSet = newPairSet(safePairs)
)

// needsSpace reports whether whitespace must separate a token of side prev
// from the token about to be written.
func (set pairSet) needsSpace(prev int, tokenType tokenizer.TokenType, value string) bool {
	if value == "" {
		return false
	}

	first := value[0]

	if (first == '-' && tokenType != tokenizer.Ident && tokenType != tokenizer.Function && tokenType != tokenizer.CDC) ||
		first == '+' {
		_, ok := set[prev<<16|delim(first)]

		return ok
	}

	_, ok := set[prev<<16|sideOf(tokenType, value)]

	return ok
}
