package parser

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

const maxHexDigits = 6

func (p *Parser) unsignedNumber() (string, error) {
	p.SkipSC()

	value, err := p.Consume(tokenizer.Number)
	if err != nil {
		return "", err
	}

	for i := range len(value) {
		code := int(value[i])
		if !tokenizer.IsDigit(code) && code != charFullStop {
			return "", p.Error("Unsigned number is expected", p.TokenStart-len(value)+i)
		}
	}

	if number, _ := strconv.ParseFloat(value, 64); number == 0 {
		return "", p.Error("Zero number is not allowed", p.TokenStart-len(value))
	}

	return value, nil
}

// Ratio parses "<number> / <number>" with positive unsigned numbers.
func (p *Parser) Ratio() (*ast.Ratio, error) {
	start := p.TokenStart

	left, err := p.unsignedNumber()
	if err != nil {
		return nil, err
	}

	p.SkipSC()

	err = p.EatDelim(charSolidus)
	if err != nil {
		return nil, err
	}

	right, err := p.unsignedNumber()
	if err != nil {
		return nil, err
	}

	return &ast.Ratio{Base: p.base(start, p.TokenStart), Left: left, Right: right}, nil
}

// checkInteger verifies that the current token holds an integer from
// offset on.
func (p *Parser) checkInteger(offset int, disallowSign bool) error {
	pos := p.TokenStart + offset

	if code := p.CharCodeAt(pos); code == charPlusSign || code == charHyphenMinus {
		if disallowSign {
			return p.Error("Number sign is not allowed", noOffset)
		}

		pos++
	}

	for ; pos < p.TokenEnd; pos++ {
		if !tokenizer.IsDigit(p.CharCodeAt(pos)) {
			return p.Error("Integer is expected", pos)
		}
	}

	return nil
}

func (p *Parser) expectCharCode(offset, code int) error {
	if p.CmpChar(p.TokenStart+offset, code) {
		return nil
	}

	message := ""

	switch code {
	case charLowercaseN:
		message = "N is expected"
	case charHyphenMinus:
		message = "HyphenMinus is expected"
	}

	return p.Error(message, p.TokenStart+offset)
}

func isSpaceOrComment(tokenType tokenizer.TokenType) bool {
	return tokenType == tokenizer.WhiteSpace || tokenType == tokenizer.Comment
}

// consumeB reads the optional "+ <integer>" or "- <integer>" tail of an
// an+b expression. An empty result means there is no b.
func (p *Parser) consumeB() (string, error) {
	offset := 0
	sign := 0
	tokenType := p.TokenType

	for isSpaceOrComment(tokenType) {
		offset++
		tokenType = p.LookupType(offset)
	}

	if tokenType != tokenizer.Number {
		if !p.IsDelimAt(charPlusSign, offset) && !p.IsDelimAt(charHyphenMinus, offset) {
			return "", nil
		}

		sign = charHyphenMinus
		if p.IsDelimAt(charPlusSign, offset) {
			sign = charPlusSign
		}

		for {
			offset++
			tokenType = p.LookupType(offset)

			if !isSpaceOrComment(tokenType) {
				break
			}
		}

		if tokenType != tokenizer.Number {
			p.Skip(offset)
			offset = 0

			err := p.checkInteger(0, true)
			if err != nil {
				return "", err
			}
		}
	}

	if offset > 0 {
		p.Skip(offset)
	}

	if sign == 0 {
		if code := p.CharCodeAt(p.TokenStart); code != charPlusSign && code != charHyphenMinus {
			return "", p.Error("Number sign is expected", noOffset)
		}
	}

	err := p.checkInteger(0, sign != 0)
	if err != nil {
		return "", err
	}

	number, err := p.Consume(tokenizer.Number)
	if err != nil {
		return "", err
	}

	if sign == charHyphenMinus {
		return "-" + number, nil
	}

	return number, nil
}

// negativeB reads "- <integer>" where the minus ended the previous token.
func (p *Parser) negativeB() (string, error) {
	p.Next()
	p.SkipSC()

	err := p.checkInteger(0, true)
	if err != nil {
		return "", err
	}

	number, err := p.Consume(tokenizer.Number)
	if err != nil {
		return "", err
	}

	return "-" + number, nil
}

// nTail parses what follows the "n" of an an+b expression whose n is at
// offset n within the current token.
func (p *Parser) nTail(n int, bStart int) (string, error) {
	switch p.TokenEnd - p.TokenStart {
	case n + 1:
		p.Next()

		return p.consumeB()
	case n + 2:
		err := p.expectCharCode(n+1, charHyphenMinus)
		if err != nil {
			return "", err
		}

		return p.negativeB()
	default:
		err := p.expectCharCode(n+1, charHyphenMinus)
		if err != nil {
			return "", err
		}

		err = p.checkInteger(n+2, true)
		if err != nil {
			return "", err
		}

		p.Next()

		return p.SubstrToCursor(bStart), nil
	}
}

// AnPlusB parses the an+b microsyntax of :nth-*() selectors, e.g. "2n+1",
// "-n+3" or "5". Either part may be absent and is then empty.
//
//nolint:cyclop,funlen // one branch per token shape of the microsyntax.
func (p *Parser) AnPlusB() (*ast.AnPlusB, error) {
	start := p.TokenStart

	var a, b string

	switch {
	case p.TokenType == tokenizer.Number:
		err := p.checkInteger(0, false)
		if err != nil {
			return nil, err
		}

		b, err = p.Consume(tokenizer.Number)
		if err != nil {
			return nil, err
		}
	case p.TokenType == tokenizer.Ident && p.CmpChar(p.TokenStart, charHyphenMinus):
		a = "-1"

		err := p.expectCharCode(1, charLowercaseN)
		if err != nil {
			return nil, err
		}

		b, err = p.nTail(1, start+2)
		if err != nil {
			return nil, err
		}
	case p.TokenType == tokenizer.Ident || (p.IsDelim(charPlusSign) && p.LookupType(1) == tokenizer.Ident):
		a = "1"
		sign := 0

		if p.IsDelim(charPlusSign) {
			sign = 1

			p.Next()
		}

		err := p.expectCharCode(0, charLowercaseN)
		if err != nil {
			return nil, err
		}

		b, err = p.nTail(0, start+sign+1)
		if err != nil {
			return nil, err
		}
	case p.TokenType == tokenizer.Dimension:
		digitsStart := p.TokenStart
		if code := p.CharCodeAt(p.TokenStart); code == charPlusSign || code == charHyphenMinus {
			digitsStart++
		}

		i := digitsStart
		for i < p.TokenEnd && tokenizer.IsDigit(p.CharCodeAt(i)) {
			i++
		}

		if i == digitsStart {
			return nil, p.Error("Integer is expected", digitsStart)
		}

		err := p.expectCharCode(i-p.TokenStart, charLowercaseN)
		if err != nil {
			return nil, err
		}

		a = p.Substring(start, i)

		b, err = p.nTail(i-p.TokenStart, i+1)
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.Error("", noOffset)
	}

	return &ast.AnPlusB{
		Base: p.base(start, p.TokenStart),
		A:    strings.TrimPrefix(a, "+"),
		B:    strings.TrimPrefix(b, "+"),
	}, nil
}

// eatHexSequence consumes the hex digits of the current token from offset
// on and returns their count. With allowDash a "-" after at least one digit
// starts the second half of a range, and -1 is returned.
func (p *Parser) eatHexSequence(offset int, allowDash bool) (int, error) {
	count := 0

	for pos := p.TokenStart + offset; pos < p.TokenEnd; pos++ {
		code := p.CharCodeAt(pos)

		if code == charHyphenMinus && allowDash && count != 0 {
			_, err := p.eatHexSequence(offset+count+1, false)

			return -1, err
		}

		if !tokenizer.IsHexDigit(code) {
			var message string

			switch {
			case allowDash && count != 0 && count < maxHexDigits:
				message = "Hyphen minus or hex digit is expected"
			case allowDash && count != 0:
				message = "Hyphen minus is expected"
			case count < maxHexDigits:
				message = "Hex digit is expected"
			default:
				message = "Unexpected input"
			}

			return 0, p.Error(message, pos)
		}

		count++
		if count > maxHexDigits {
			return 0, p.Error("Too many hex digits", pos)
		}
	}

	p.Next()

	return count, nil
}

func (p *Parser) eatQuestionMarkSequence(limit int) error {
	count := 0

	for p.IsDelim(charQuestionMark) {
		count++
		if count > limit {
			return p.Error("Too many question marks", noOffset)
		}

		p.Next()
	}

	return nil
}

func (p *Parser) hexWithWildcards(offset int) error {
	count, err := p.eatHexSequence(offset, true)
	if err != nil {
		return err
	}

	if count > 0 {
		return p.eatQuestionMarkSequence(maxHexDigits - count)
	}

	return nil
}

func (p *Parser) unicodeRangeBody() error {
	switch p.TokenType {
	case tokenizer.Number:
		count, err := p.eatHexSequence(1, true)
		if err != nil {
			return err
		}

		if p.IsDelim(charQuestionMark) {
			return p.eatQuestionMarkSequence(maxHexDigits - count)
		}

		if p.TokenType == tokenizer.Dimension || p.TokenType == tokenizer.Number {
			if p.CharCodeAt(p.TokenStart) != charHyphenMinus {
				return p.Error("Hyphen minus is expected", noOffset)
			}

			_, err = p.eatHexSequence(1, false)

			return err
		}

		return nil
	case tokenizer.Dimension:
		return p.hexWithWildcards(1)
	default:
		err := p.EatDelim(charPlusSign)
		if err != nil {
			return err
		}

		if p.TokenType == tokenizer.Ident {
			return p.hexWithWildcards(0)
		}

		if p.IsDelim(charQuestionMark) {
			p.Next()

			return p.eatQuestionMarkSequence(maxHexDigits - 1)
		}

		return p.Error("Hex digit or question mark is expected", noOffset)
	}
}

// UnicodeRange parses "u+XXXX", "u+XXXX-YYYY" or "u+XX??".
func (p *Parser) UnicodeRange() (*ast.UnicodeRange, error) {
	start := p.TokenStart

	err := p.EatIdent("u")
	if err != nil {
		return nil, err
	}

	err = p.unicodeRangeBody()
	if err != nil {
		return nil, err
	}

	return &ast.UnicodeRange{Base: p.base(start, p.TokenStart), Value: p.SubstrToCursor(start)}, nil
}
