package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sentinel errors.
var (
	// ErrUnknownContext is returned for a parse context that has no entry point.
	ErrUnknownContext = errors.New("unknown context")
	// ErrInputTooLarge is returned when the source exceeds what a token stream can index.
	ErrInputTooLarge = errors.New("input too large")
)

const (
	fragmentMaxLineLength = 100
	fragmentOffsetShift   = 60
	fragmentTabReplace    = "    "
	fragmentContextLines  = 2
)

var lineBreak = regexp.MustCompile(`\r\n?|\n|\f`)

// SyntaxError reports malformed CSS at a source position. Line and Column
// are 1-based; Column counts code points.
type SyntaxError struct {
	Message string
	Source  string
	Offset  int
	Line    int
	Column  int
}

// Error implements error.
func (err *SyntaxError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", err.Line, err.Column, err.Message)
}

// SourceFragment renders the offending line with extraLines lines of
// context around it and a pointer at the error column.
func (err *SyntaxError) SourceFragment(extraLines int) string {
	return sourceFragment(err.Source, err.Line, err.Column, max(extraLines, 0))
}

// FormattedMessage is the message followed by a two line source fragment.
func (err *SyntaxError) FormattedMessage() string {
	return "Parse error: " + err.Message + "\n" + sourceFragment(err.Source, err.Line, err.Column, fragmentContextLines)
}

func runeSlice(str string, start, length int) string {
	runes := []rune(str)
	if start >= len(runes) || length <= 0 {
		return ""
	}

	return string(runes[start:min(len(runes), start+length)])
}

func sourceFragment(source string, line, column, extraLines int) string {
	lines := lineBreak.Split(source, -1)
	if line < 1 || line > len(lines) {
		return ""
	}

	startLine := max(1, line-extraLines) - 1
	endLine := min(line+extraLines, len(lines)+1)
	width := max(4, len(strconv.Itoa(endLine))) + 1
	cutLeft := 0

	prefix := runeSlice(lines[line-1], 0, column-1)
	column += (len(fragmentTabReplace) - 1) * strings.Count(prefix, "\t")

	if column > fragmentMaxLineLength {
		cutLeft = column - fragmentOffsetShift + 3
		column = fragmentOffsetShift - 2
	}

	for idx := startLine; idx <= endLine; idx++ {
		if idx < 0 || idx >= len(lines) {
			continue
		}

		text := strings.ReplaceAll(lines[idx], "\t", fragmentTabReplace)
		size := utf8.RuneCountInString(text)

		var builder strings.Builder

		if cutLeft > 0 && size > cutLeft {
			builder.WriteString("…")
		}

		builder.WriteString(runeSlice(text, cutLeft, fragmentMaxLineLength-2))

		if size > cutLeft+fragmentMaxLineLength-1 {
			builder.WriteString("…")
		}

		lines[idx] = builder.String()
	}

	render := func(from, to int) string {
		to = min(to, len(lines))
		if from >= to {
			return ""
		}

		rendered := make([]string, 0, to-from)
		for idx := from; idx < to; idx++ {
			number := strconv.Itoa(idx + 1)
			rendered = append(rendered, strings.Repeat(" ", max(0, width-len(number)))+number+" |"+lines[idx])
		}

		return strings.Join(rendered, "\n")
	}

	parts := []string{render(startLine, line), strings.Repeat("-", column+width+1) + "^", render(line, endLine)}

	nonEmpty := parts[:0]

	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}

	return strings.Join(nonEmpty, "\n")
}
