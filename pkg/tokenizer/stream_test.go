package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

func TestStreamCursor(t *testing.T) {
	t.Parallel()

	stream := tokenizer.NewStream("a { color: red }")

	assert.Equal(t, 0, stream.TokenIndex)
	assert.Equal(t, tokenizer.Ident, stream.TokenType)
	assert.Equal(t, tokenizer.WhiteSpace, stream.LookupType(1))
	assert.Equal(t, tokenizer.LeftCurlyBracket, stream.LookupNonWSType(1))
	assert.True(t, stream.LookupValue(4, "color"))
	assert.False(t, stream.LookupValue(4, "colour"))

	stream.Next()
	stream.SkipSC()
	assert.Equal(t, tokenizer.LeftCurlyBracket, stream.TokenType)

	stream.Skip(3)
	assert.Equal(t, tokenizer.Colon, stream.TokenType)
	assert.Equal(t, ":", stream.Source()[stream.TokenStart:stream.TokenEnd])

	stream.Skip(100)
	assert.True(t, stream.EOF)
	assert.Equal(t, tokenizer.EOF, stream.TokenType)
	assert.Equal(t, len(stream.Source()), stream.TokenStart)
}

func TestStreamSkipMovesTokenStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		skips []int
		want  string
	}{
		{"one", []int{1}, " "},
		{"two", []int{2}, "{"},
		{"several", []int{4}, "color"},
		{"chained", []int{2, 2, 1}, ":"},
		{"to last", []int{9}, "}"},
		{"after next", []int{0, 7}, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stream := tokenizer.NewStream("a { color: red }")

			for _, count := range tt.skips {
				if count == 0 {
					stream.Next()

					continue
				}

				stream.Skip(count)
			}

			require.False(t, stream.EOF)
			assert.Equal(t, stream.GetTokenEnd(stream.TokenIndex-1), stream.TokenStart)
			assert.Equal(t, stream.GetTokenStart(stream.TokenIndex), stream.TokenStart)
			assert.Equal(t, tt.want, stream.Source()[stream.TokenStart:stream.TokenEnd])
		})
	}
}

func TestStreamBalance(t *testing.T) {
	t.Parallel()

	// 0:x 1:ws 2:( 3:b 4:ws 5:[ 6:c 7:] 8:ws 9:d 10:) 11:ws 12:e
	source := "x (b [c] d) e"
	stream := tokenizer.NewStream(source)

	require.Equal(t, 13, stream.TokenCount())
	assert.Equal(t, 10, stream.Balance(2))
	assert.Equal(t, 2, stream.Balance(10))
	assert.Equal(t, 7, stream.Balance(5))
	assert.Equal(t, 5, stream.Balance(7))
	assert.Equal(t, 10, stream.Balance(3))
	assert.Equal(t, 7, stream.Balance(6))
	assert.Equal(t, len(source), stream.Balance(0))
	assert.Equal(t, len(source), stream.Balance(12))
}

func TestStreamUnclosedBlocks(t *testing.T) {
	t.Parallel()

	source := "( [ )"
	stream := tokenizer.NewStream(source)

	for idx := range stream.TokenCount() {
		assert.Equal(t, len(source), stream.Balance(idx), "token %d", idx)
	}
}

func stopAtWhiteSpace(code int) tokenizer.StopAction {
	if code == ' ' {
		return tokenizer.StopBefore
	}

	return tokenizer.Continue
}

func TestSkipUntilBalancedLandsAfterCloser(t *testing.T) {
	t.Parallel()

	for depth := 1; depth <= 12; depth++ {
		for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}, {"f(", ")"}} {
			body := strings.Repeat(pair[0]+"a ; ", depth) + strings.Repeat(pair[1], depth)
			stream := tokenizer.NewStream(body + " tail")

			closer := stream.Balance(0)
			require.Less(t, closer, stream.TokenCount(), "depth %d %q", depth, pair[0])

			stream.SkipUntilBalanced(0, stopAtWhiteSpace)

			assert.Equal(t, closer+1, stream.TokenIndex, "depth %d %q", depth, pair[0])
			assert.Equal(t, tokenizer.WhiteSpace, stream.TokenType)
		}
	}
}

func TestSkipUntilBalancedStopsAtEnclosingCloser(t *testing.T) {
	t.Parallel()

	stream := tokenizer.NewStream("(a b) c")
	stream.Next() // a

	stream.SkipUntilBalanced(stream.TokenIndex, func(int) tokenizer.StopAction {
		return tokenizer.Continue
	})

	assert.Equal(t, tokenizer.RightParenthesis, stream.TokenType)
	assert.True(t, stream.IsBalanceEdge(1))
}

func TestSkipUntilBalancedStopAfter(t *testing.T) {
	t.Parallel()

	stream := tokenizer.NewStream("a: (;) b; c")

	stream.SkipUntilBalanced(0, func(code int) tokenizer.StopAction {
		if code == ';' {
			return tokenizer.StopAfter
		}

		return tokenizer.Continue
	})

	stream.SkipSC()
	assert.Equal(t, tokenizer.Ident, stream.TokenType)
	assert.Equal(t, "c", stream.Source()[stream.TokenStart:stream.TokenEnd])
}

func TestStreamDelimAndDump(t *testing.T) {
	t.Parallel()

	stream := tokenizer.NewStream("! a")

	assert.True(t, stream.IsDelim('!'))
	assert.False(t, stream.IsDelim('?'))
	assert.False(t, stream.IsDelimAt('!', 2))

	dump := stream.Dump()
	require.Len(t, dump, 3)
	assert.Equal(t, "delim-token", dump[0].Type)
	assert.Equal(t, "a", dump[2].Chunk)
}

func TestOffsetToLocation(t *testing.T) {
	t.Parallel()

	source := "a\r\nbé\fc\rd"
	converter := tokenizer.NewOffsetToLocation(source, 0, 1, 1)

	tests := []struct {
		offset int
		want   tokenizer.Position
	}{
		{0, tokenizer.Position{Offset: 0, Line: 1, Column: 1}},
		{3, tokenizer.Position{Offset: 3, Line: 2, Column: 1}},
		{4, tokenizer.Position{Offset: 4, Line: 2, Column: 2}},
		{6, tokenizer.Position{Offset: 6, Line: 2, Column: 3}},
		{7, tokenizer.Position{Offset: 7, Line: 3, Column: 1}},
		{9, tokenizer.Position{Offset: 9, Line: 4, Column: 1}},
		{10, tokenizer.Position{Offset: 10, Line: 4, Column: 2}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, converter.GetLocation(tt.offset), "offset %d", tt.offset)
	}

	shifted := tokenizer.NewOffsetToLocation("ab", 10, 5, 7)
	rng := shifted.GetLocationRange(0, 2, "in.css")
	assert.Equal(t, "in.css", rng.Source)
	assert.Equal(t, tokenizer.Position{Offset: 10, Line: 5, Column: 7}, rng.Start)
	assert.Equal(t, tokenizer.Position{Offset: 12, Line: 5, Column: 9}, rng.End)
}
