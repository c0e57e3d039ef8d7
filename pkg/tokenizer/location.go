package tokenizer

// Position is a point in a source.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a span of a source.
type Range struct {
	Source string   `json:"source"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// OffsetToLocation converts byte offsets into line/column positions.
// LF, CR and FF end a line, CRLF counts once. Columns count code points.
type OffsetToLocation struct {
	source      string
	startOffset int
	startLine   int
	startColumn int
	lines       []int
	columns     []int
	computed    bool
}

// NewOffsetToLocation returns a converter for source whose first byte sits at
// the given absolute offset, line and column.
func NewOffsetToLocation(source string, startOffset, startLine, startColumn int) *OffsetToLocation {
	converter := &OffsetToLocation{}
	converter.SetSource(source, startOffset, startLine, startColumn)

	return converter
}

// SetSource resets the converter for a new source.
func (converter *OffsetToLocation) SetSource(source string, startOffset, startLine, startColumn int) {
	converter.source = source
	converter.startOffset = startOffset
	converter.startLine = startLine
	converter.startColumn = startColumn
	converter.computed = false
}

func (converter *OffsetToLocation) compute() {
	source := converter.source
	size := len(source)

	if cap(converter.lines) < size+1 {
		converter.lines = make([]int, size+1)
		converter.columns = make([]int, size+1)
	}

	lines := converter.lines[:size+1]
	columns := converter.columns[:size+1]
	line := converter.startLine
	column := converter.startColumn

	for idx := range BOMLength(source) {
		lines[idx] = line
		columns[idx] = column
	}

	for idx := BOMLength(source); idx < size; idx++ {
		code := int(source[idx])
		lines[idx] = line
		columns[idx] = column

		// UTF-8 continuation bytes share the column of their lead byte.
		if idx+1 >= size || source[idx+1]&0xC0 != 0x80 {
			column++
		}

		if IsNewline(code) {
			if code == charCarriageReturn && idx+1 < size && source[idx+1] == charLineFeed {
				idx++
				lines[idx] = line
				columns[idx] = column
			}

			line++
			column = 1
		}
	}

	lines[size] = line
	columns[size] = column
	converter.lines = lines
	converter.columns = columns
	converter.computed = true
}

func (converter *OffsetToLocation) position(offset int) Position {
	offset = max(0, min(offset, len(converter.source)))

	return Position{
		Offset: converter.startOffset + offset,
		Line:   converter.lines[offset],
		Column: converter.columns[offset],
	}
}

// GetLocation returns the position of offset within the source.
func (converter *OffsetToLocation) GetLocation(offset int) Position {
	if !converter.computed {
		converter.compute()
	}

	return converter.position(offset)
}

// GetLocationRange returns the range between two offsets.
func (converter *OffsetToLocation) GetLocationRange(start, end int, source string) Range {
	if !converter.computed {
		converter.compute()
	}

	return Range{
		Source: source,
		Start:  converter.position(start),
		End:    converter.position(end),
	}
}
