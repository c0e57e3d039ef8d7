package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
)

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		lines[idx] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// toProtocolPosition converts a 1-based line and code point column into
// an LSP position, which counts UTF-16 units.
func toProtocolPosition(lines []string, pos ast.Position) protocol.Position {
	line := max(pos.Line-1, 0)
	column := max(pos.Column-1, 0)

	if line >= len(lines) {
		return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(column)}
	}

	units := 0

	for _, r := range lines[line] {
		if column == 0 {
			break
		}

		units += utf16.RuneLen(r)
		column--
	}

	// Columns past the end of the line (line terminators) count one unit each.
	units += column

	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(units)}
}

// byteIndex returns the byte offset in line of an LSP character offset.
func byteIndex(line string, character int) int {
	units := 0

	for idx, r := range line {
		if units >= character {
			return idx
		}

		units += utf16.RuneLen(r)
	}

	return len(line)
}

func isWordByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' || ch == '@' || ch >= utf8.RuneSelf
}

// wordAt returns the word around an LSP position and the part of it
// before the cursor.
func wordAt(text string, pos protocol.Position) (word, prefix string) {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return "", ""
	}

	line := lines[pos.Line]
	cursor := byteIndex(line, int(pos.Character))

	start := cursor
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}

	end := cursor
	for end < len(line) && isWordByte(line[end]) {
		end++
	}

	return line[start:end], line[start:cursor]
}
