// Package textutil inspects raw input before it is handed to the parser:
// binary detection and line counting with CSS newline rules.
package textutil

import "strings"

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary reports whether text contains a null byte within the first
// BinarySniffLength bytes. Stylesheets never do; compressed trees and
// images do. Empty text is not binary.
func IsBinary(text string) bool {
	sniff := text
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return strings.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of lines in text. LF, CR and FF each end
// a line and CRLF counts once. Text without a trailing newline counts its
// last partial line; empty text has no lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}

	lines := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}

			lines++
		case '\n', '\f':
			lines++
		}
	}

	switch text[len(text)-1] {
	case '\n', '\r', '\f':
	default:
		lines++
	}

	return lines
}
