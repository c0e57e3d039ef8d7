package textutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/csstree/pkg/textutil"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"stylesheet", "a { color: red }\n", false},
		{"escaped null", `a::before { content: "\0" }`, false},
		{"null byte", "a{}\x00", true},
		{"null past sniff window", strings.Repeat("a", textutil.BinarySniffLength) + "\x00", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, textutil.IsBinary(tt.text), tt.name)
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single partial", "a{}", 1},
		{"trailing newline", "a{}\n", 1},
		{"lf", "a{}\nb{}", 2},
		{"crlf counts once", "a{}\r\nb{}\r\n", 2},
		{"cr and ff", "a\rb\fc", 3},
		{"blank lines", "\n\n", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, textutil.CountLines(tt.text), tt.name)
	}
}
