package sourcemap

import (
	"errors"
	"strings"
)

// Sentinel errors.
var (
	// ErrVLQTruncated is returned when a VLQ value ends mid-sequence.
	ErrVLQTruncated = errors.New("expected more digits in base 64 VLQ value")
	// ErrVLQDigit is returned for a character outside the base64 alphabet.
	ErrVLQDigit = errors.New("invalid base64 digit")
)

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Values = func() [256]int8 {
	var table [256]int8

	for i := range table {
		table[i] = -1
	}

	for i := range len(base64Alphabet) {
		table[base64Alphabet[i]] = int8(i) //nolint:gosec // alphabet has 64 entries.
	}

	return table
}()

// EncodeVLQ appends the base64 VLQ encoding of value to builder.
func EncodeVLQ(builder *strings.Builder, value int) {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}

	for {
		digit := vlq & vlqBaseMask
		vlq >>= vlqBaseShift

		if vlq > 0 {
			digit |= vlqContinuationBit
		}

		builder.WriteByte(base64Alphabet[digit])

		if vlq == 0 {
			return
		}
	}
}

// DecodeVLQ decodes one value from str starting at pos and returns it with
// the position after it.
func DecodeVLQ(str string, pos int) (value, next int, err error) {
	result := 0
	shift := 0

	for {
		if pos >= len(str) {
			return 0, pos, ErrVLQTruncated
		}

		digit := int(base64Values[str[pos]])
		if digit < 0 {
			return 0, pos, ErrVLQDigit
		}

		pos++

		result += (digit & vlqBaseMask) << shift
		shift += vlqBaseShift

		if digit&vlqContinuationBit == 0 {
			break
		}
	}

	if result&1 == 1 {
		return -(result >> 1), pos, nil
	}

	return result >> 1, pos, nil
}
