package tokenizer

import "fmt"

const (
	typeShift  = 24
	offsetMask = 1<<typeShift - 1

	// MaxSourceLength is the largest source a Stream can index.
	MaxSourceLength = offsetMask
)

// StopAction tells SkipUntilBalanced how to treat the current token.
type StopAction int

// Stop actions.
const (
	// Continue keeps scanning.
	Continue StopAction = iota
	// StopBefore stops with the cursor on the current token.
	StopBefore
	// StopAfter stops with the cursor after the current token.
	StopAfter
)

// StopFunc inspects the first code point of a token.
type StopFunc func(code int) StopAction

var closers = map[TokenType]TokenType{
	Function:          RightParenthesis,
	LeftParenthesis:   RightParenthesis,
	LeftSquareBracket: RightSquareBracket,
	LeftCurlyBracket:  RightCurlyBracket,
}

// IsOpener reports whether the token type opens a balanced block.
func IsOpener(tokenType TokenType) bool {
	_, ok := closers[tokenType]

	return ok
}

// Closer returns the closing token type of an opener.
func Closer(tokenType TokenType) (TokenType, bool) {
	closer, ok := closers[tokenType]

	return closer, ok
}

// Stream is a cursor over the tokens of a source. Token entries are packed as
// (type << 24) | end; a parallel balance table maps every opener to its
// closer (and back) and every other token to the closer of its enclosing
// block, or to the source length when there is none.
type Stream struct {
	source          string
	offsetAndType   []uint32
	balance         []int
	tokenCount      int
	firstCharOffset int

	// EOF reports whether the cursor moved past the last token.
	EOF bool
	// TokenIndex is the index of the current token.
	TokenIndex int
	// TokenType is the type of the current token.
	TokenType TokenType
	// TokenStart is the start offset of the current token.
	TokenStart int
	// TokenEnd is the end offset of the current token.
	TokenEnd int
}

type openBlock struct {
	index  int
	closer TokenType
}

// NewStream tokenizes source and positions the cursor on the first token.
func NewStream(source string) *Stream {
	stream := &Stream{}
	stream.SetSource(source)

	return stream
}

// SetSource replaces the stream contents and resets the cursor.
func (stream *Stream) SetSource(source string) {
	sourceLength := len(source)
	offsetAndType := make([]uint32, 0, sourceLength/2+1)
	balance := make([]int, 0, sourceLength/2+1)
	stack := make([]openBlock, 0, 16)
	firstCharOffset := -1

	Tokenize(source, func(tokenType TokenType, start, end int) {
		idx := len(offsetAndType)

		switch {
		case len(stack) > 0 && tokenType == stack[len(stack)-1].closer:
			opener := stack[len(stack)-1].index
			stack = stack[:len(stack)-1]

			balance = append(balance, opener)
			balance[opener] = idx

			for inner := opener + 1; inner < idx; inner++ {
				if balance[inner] == sourceLength {
					balance[inner] = idx
				}
			}
		case IsOpener(tokenType):
			closer, _ := Closer(tokenType)
			balance = append(balance, sourceLength)
			stack = append(stack, openBlock{index: idx, closer: closer})
		default:
			balance = append(balance, sourceLength)
		}

		offsetAndType = append(offsetAndType, uint32(tokenType)<<typeShift|uint32(end&offsetMask)) //nolint:gosec // bounded by MaxSourceLength.

		if firstCharOffset == -1 {
			firstCharOffset = start
		}
	})

	tokenCount := len(offsetAndType)

	// Sentinel EOF entry.
	offsetAndType = append(offsetAndType, uint32(EOF)<<typeShift|uint32(sourceLength&offsetMask)) //nolint:gosec // bounded by MaxSourceLength.
	balance = append(balance, sourceLength)

	stream.source = source
	stream.firstCharOffset = max(firstCharOffset, 0)
	stream.tokenCount = tokenCount
	stream.offsetAndType = offsetAndType
	stream.balance = balance
	stream.Reset()
	stream.Next()
}

// Source returns the tokenized source.
func (stream *Stream) Source() string {
	return stream.source
}

// TokenCount returns the number of tokens.
func (stream *Stream) TokenCount() int {
	return stream.tokenCount
}

// FirstCharOffset returns the start offset of the first token.
func (stream *Stream) FirstCharOffset() int {
	return stream.firstCharOffset
}

// Reset moves the cursor before the first token.
func (stream *Stream) Reset() {
	stream.EOF = false
	stream.TokenIndex = -1
	stream.TokenType = EOF
	stream.TokenStart = stream.firstCharOffset
	stream.TokenEnd = stream.firstCharOffset
}

func (stream *Stream) entryType(idx int) TokenType {
	return TokenType(stream.offsetAndType[idx] >> typeShift)
}

func (stream *Stream) entryEnd(idx int) int {
	return int(stream.offsetAndType[idx] & offsetMask)
}

// LookupType returns the type of the token offset positions ahead of the
// cursor, or EOF.
func (stream *Stream) LookupType(offset int) TokenType {
	idx := stream.TokenIndex + offset
	if idx >= 0 && idx < stream.tokenCount {
		return stream.entryType(idx)
	}

	return EOF
}

// LookupNonWSType is like LookupType but skips whitespace and comments.
func (stream *Stream) LookupNonWSType(offset int) TokenType {
	for idx := stream.TokenIndex + offset; idx < stream.tokenCount; idx++ {
		if idx < 0 {
			continue
		}

		tokenType := stream.entryType(idx)
		if tokenType != WhiteSpace && tokenType != Comment {
			return tokenType
		}
	}

	return EOF
}

// LookupOffset returns the start offset of the token offset positions ahead.
func (stream *Stream) LookupOffset(offset int) int {
	idx := stream.TokenIndex + offset
	if idx < stream.tokenCount {
		return stream.GetTokenStart(idx)
	}

	return len(stream.source)
}

// LookupValue compares the text of the token offset positions ahead with a
// lowercase reference, ignoring case.
func (stream *Stream) LookupValue(offset int, reference string) bool {
	idx := stream.TokenIndex + offset
	if idx < 0 || idx >= stream.tokenCount {
		return false
	}

	return CmpStr(stream.source, stream.GetTokenStart(idx), stream.entryEnd(idx), reference)
}

// GetTokenStart returns the start offset of the token at idx.
func (stream *Stream) GetTokenStart(idx int) int {
	switch {
	case idx == stream.TokenIndex:
		return stream.TokenStart
	case idx <= 0:
		return stream.firstCharOffset
	case idx < stream.tokenCount:
		return stream.entryEnd(idx - 1)
	default:
		return stream.entryEnd(stream.tokenCount)
	}
}

// GetTokenEnd returns the end offset of the token at idx.
func (stream *Stream) GetTokenEnd(idx int) int {
	if idx < 0 {
		return stream.firstCharOffset
	}

	if idx >= stream.tokenCount {
		return len(stream.source)
	}

	return stream.entryEnd(idx)
}

// GetTokenType returns the type of the token at idx.
func (stream *Stream) GetTokenType(idx int) TokenType {
	if idx < 0 || idx >= stream.tokenCount {
		return EOF
	}

	return stream.entryType(idx)
}

// Balance returns the balance entry of the token at idx.
func (stream *Stream) Balance(idx int) int {
	if idx < 0 || idx >= len(stream.balance) {
		return len(stream.source)
	}

	return stream.balance[idx]
}

// CharCodeAt returns the source byte at offset, or 0.
func (stream *Stream) CharCodeAt(offset int) int {
	return CharAt(stream.source, offset)
}

// Substring returns source[start:end] clamped to the source bounds.
func (stream *Stream) Substring(start, end int) string {
	start = max(0, min(start, len(stream.source)))
	end = max(start, min(end, len(stream.source)))

	return stream.source[start:end]
}

// SubstrToCursor returns the text from start to the current token start.
func (stream *Stream) SubstrToCursor(start int) string {
	return stream.Substring(start, stream.TokenStart)
}

// IsBalanceEdge reports whether the current token closes a block that was
// opened before pos.
func (stream *Stream) IsBalanceEdge(pos int) bool {
	return stream.Balance(stream.TokenIndex) < pos
}

// IsDelim reports whether the current token is a Delim with the given code.
func (stream *Stream) IsDelim(code int) bool {
	return stream.TokenType == Delim && stream.CharCodeAt(stream.TokenStart) == code
}

// IsDelimAt is IsDelim for the token offset positions ahead.
func (stream *Stream) IsDelimAt(code, offset int) bool {
	if offset == 0 {
		return stream.IsDelim(code)
	}

	return stream.LookupType(offset) == Delim && stream.CharCodeAt(stream.LookupOffset(offset)) == code
}

// Skip advances the cursor by count tokens.
func (stream *Stream) Skip(count int) {
	next := stream.TokenIndex + count

	if next < stream.tokenCount {
		// GetTokenStart(next) must run before TokenIndex moves, or it
		// answers with the current start.
		start := stream.GetTokenStart(next)

		stream.EOF = false
		stream.TokenIndex = next
		stream.TokenStart = start
		stream.TokenType = stream.entryType(next)
		stream.TokenEnd = stream.entryEnd(next)

		return
	}

	stream.TokenIndex = stream.tokenCount
	stream.Next()
}

// Next advances the cursor by one token.
func (stream *Stream) Next() {
	next := stream.TokenIndex + 1

	if next < stream.tokenCount {
		stream.TokenIndex = next
		stream.TokenStart = stream.TokenEnd
		stream.TokenType = stream.entryType(next)
		stream.TokenEnd = stream.entryEnd(next)

		return
	}

	stream.EOF = true
	stream.TokenIndex = stream.tokenCount
	stream.TokenType = EOF
	stream.TokenStart = len(stream.source)
	stream.TokenEnd = len(stream.source)
}

// SkipSC skips whitespace and comment tokens.
func (stream *Stream) SkipSC() {
	for stream.TokenType == WhiteSpace || stream.TokenType == Comment {
		stream.Next()
	}
}

// SkipUntilBalanced moves the cursor forward from startIdx, jumping over
// balanced blocks, until stop asks to stop or the enclosing block ends.
func (stream *Stream) SkipUntilBalanced(startIdx int, stop StopFunc) {
	idx := startIdx

loop:
	for ; idx < stream.tokenCount; idx++ {
		pair := stream.balance[idx]

		// Closing token of an enclosing block.
		if pair < startIdx {
			break
		}

		start := stream.firstCharOffset
		if idx > 0 {
			start = stream.entryEnd(idx - 1)
		}

		switch stop(stream.CharCodeAt(start)) {
		case StopBefore:
			break loop
		case StopAfter:
			idx++

			break loop
		case Continue:
			if pair < len(stream.balance) && stream.balance[pair] == idx {
				idx = pair
			}
		}
	}

	stream.Skip(idx - stream.TokenIndex)
}

// ForEachToken calls fn for every token in order.
func (stream *Stream) ForEachToken(fn func(tokenType TokenType, start, end, idx int)) {
	start := stream.firstCharOffset

	for idx := range stream.tokenCount {
		end := stream.entryEnd(idx)
		fn(stream.entryType(idx), start, end, idx)
		start = end
	}
}

// DumpEntry describes a token in a Dump.
type DumpEntry struct {
	Index   int    `json:"idx"`
	Type    string `json:"type"`
	Chunk   string `json:"chunk"`
	Balance int    `json:"balance"`
}

// Dump returns a description of every token, for debugging.
func (stream *Stream) Dump() []DumpEntry {
	entries := make([]DumpEntry, stream.tokenCount)

	stream.ForEachToken(func(tokenType TokenType, start, end, idx int) {
		entries[idx] = DumpEntry{
			Index:   idx,
			Type:    tokenType.Name(),
			Chunk:   stream.source[start:end],
			Balance: stream.balance[idx],
		}
	})

	return entries
}

// String renders the cursor position, for debugging.
func (stream *Stream) String() string {
	return fmt.Sprintf("%s@%d[%d:%d]", stream.TokenType, stream.TokenIndex, stream.TokenStart, stream.TokenEnd)
}
