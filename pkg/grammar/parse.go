package grammar

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

const infinity = "∞"

// SyntaxError reports malformed definition syntax.
type SyntaxError struct {
	Message string
	Input   string
	Offset  int
}

// Error renders the message with the input and a pointer under the
// offending position.
func (err *SyntaxError) Error() string {
	pad := err.Offset
	if pad == 0 {
		pad = len(err.Input)
	}

	return err.Message + "\n  " + err.Input + "\n--" + strings.Repeat("-", pad) + "^"
}

func isKeywordChar(code int) bool {
	return (code >= 'a' && code <= 'z') || (code >= 'A' && code <= 'Z') ||
		(code >= '0' && code <= '9') || code == '-'
}

func isSpace(code int) bool {
	return code == ' ' || code == '\t' || code == '\n' || code == '\r' || code == '\f'
}

// combinatorMark and spacesMark are transient terms of a group being read.
type combinatorMark struct {
	value Combinator
}

type spacesMark struct{}

func (*combinatorMark) Kind() Kind { return 0 }
func (spacesMark) Kind() Kind      { return 0 }

type scanner struct {
	str string
	pos int
}

func (sc *scanner) charAt(pos int) int {
	if pos >= 0 && pos < len(sc.str) {
		return int(sc.str[pos])
	}

	return 0
}

func (sc *scanner) char() int {
	return sc.charAt(sc.pos)
}

func (sc *scanner) nextChar() int {
	return sc.charAt(sc.pos + 1)
}

func (sc *scanner) wsEnd(pos int) int {
	for pos < len(sc.str) && isSpace(int(sc.str[pos])) {
		pos++
	}

	return pos
}

func (sc *scanner) cut(end int) string {
	value := sc.str[sc.pos:end]
	sc.pos = end

	return value
}

func (sc *scanner) skipSpaces() string {
	return sc.cut(sc.wsEnd(sc.pos))
}

func (sc *scanner) error(message string) *SyntaxError {
	return &SyntaxError{Message: message, Input: sc.str, Offset: sc.pos}
}

func (sc *scanner) eat(code byte) error {
	if sc.char() != int(code) {
		return sc.error("Expect `" + string(code) + "`")
	}

	sc.pos++

	return nil
}

// peek consumes one character.
func (sc *scanner) peek() string {
	if sc.pos >= len(sc.str) {
		return ""
	}

	_, size := utf8.DecodeRuneInString(sc.str[sc.pos:])

	return sc.cut(sc.pos + size)
}

func (sc *scanner) keyword() (string, error) {
	end := sc.pos
	for end < len(sc.str) && isKeywordChar(int(sc.str[end])) {
		end++
	}

	if end == sc.pos {
		return "", sc.error("Expect a keyword")
	}

	return sc.cut(end), nil
}

func (sc *scanner) number() (string, error) {
	end := sc.pos
	for end < len(sc.str) && sc.str[end] >= '0' && sc.str[end] <= '9' {
		end++
	}

	if end == sc.pos {
		return "", sc.error("Expect a number")
	}

	return sc.cut(end), nil
}

func (sc *scanner) quoted() (string, error) {
	idx := -1
	if sc.pos+1 <= len(sc.str) {
		idx = strings.IndexByte(sc.str[sc.pos+1:], '\'')
	}

	if idx == -1 {
		sc.pos = len(sc.str)

		return "", sc.error("Expect an apostrophe")
	}

	return sc.cut(sc.pos + 1 + idx + 1), nil
}

func (sc *scanner) atInfinity() bool {
	return strings.HasPrefix(sc.str[sc.pos:], infinity)
}

// Parse reads a value definition.
func Parse(source string) (*Group, error) {
	sc := &scanner{str: source}

	group, err := sc.readGroup()
	if err != nil {
		return nil, err
	}

	if sc.pos != len(source) {
		return nil, sc.error("Unexpected input")
	}

	if len(group.Terms) == 1 {
		if inner, ok := group.Terms[0].(*Group); ok {
			return inner, nil
		}
	}

	return group, nil
}

// MustParse is Parse for definitions known to be valid.
func MustParse(source string) *Group {
	group, err := Parse(source)
	if err != nil {
		panic(err)
	}

	return group
}

func isCombinatorTerm(node Node) bool {
	_, ok := node.(*combinatorMark)

	return ok
}

func (sc *scanner) readGroup() (*Group, error) {
	var (
		terms       []Node
		prev        Node
		termStart   = sc.pos
		combinators = map[Combinator]bool{}
	)

	for {
		term, err := sc.readTerm()
		if err != nil {
			return nil, err
		}

		if term == nil {
			break
		}

		if _, ok := term.(spacesMark); ok {
			continue
		}

		if mark, ok := term.(*combinatorMark); ok {
			if prev == nil || isCombinatorTerm(prev) {
				sc.pos = termStart

				return nil, sc.error("Unexpected combinator")
			}

			combinators[mark.value] = true
		} else if prev != nil && !isCombinatorTerm(prev) {
			combinators[Juxtapose] = true
			terms = append(terms, &combinatorMark{value: Juxtapose})
		}

		terms = append(terms, term)
		prev = term
		termStart = sc.pos
	}

	if prev != nil && isCombinatorTerm(prev) {
		sc.pos -= termStart

		return nil, sc.error("Unexpected combinator")
	}

	terms, combinator := regroup(terms, combinators)
	if combinator == "" {
		combinator = Juxtapose
	}

	return &Group{Terms: terms, Combinator: combinator}, nil
}

// regroup removes the combinator marks from terms, nesting runs joined by
// a tighter combinator into groups of their own. It returns the loosest
// combinator, which joins the remaining terms.
func regroup(terms []Node, present map[Combinator]bool) ([]Node, Combinator) {
	order := make([]Combinator, 0, len(present))
	for combinator := range present {
		order = append(order, combinator)
	}

	slices.SortFunc(order, func(a, b Combinator) int {
		return a.precedence() - b.precedence()
	})

	var current Combinator

	for len(order) > 0 {
		current, order = order[0], order[1:]

		start := 0
		idx := 0

		for ; idx < len(terms); idx++ {
			mark, ok := terms[idx].(*combinatorMark)
			if !ok {
				continue
			}

			if mark.value == current {
				if start == -1 {
					start = idx - 1
				}

				terms = slices.Delete(terms, idx, idx+1)
				idx--

				continue
			}

			if start != -1 && idx-start > 1 {
				group := &Group{Terms: slices.Clone(terms[start:idx]), Combinator: current}
				terms = slices.Replace(terms, start, idx, Node(group))
				idx = start + 1
			}

			start = -1
		}

		if start != -1 && len(order) > 0 {
			group := &Group{Terms: slices.Clone(terms[start:idx]), Combinator: current}
			terms = slices.Replace(terms, start, idx, Node(group))
		}
	}

	return terms, current
}

//nolint:cyclop // one case per leading character.
func (sc *scanner) readTerm() (Node, error) {
	code := sc.char()
	if code < utf8.RuneSelf && code != 0 && isKeywordChar(code) {
		return sc.keywordOrFunction()
	}

	switch code {
	case ']', '*', '+', '?', '#', '!':
		return nil, nil //nolint:nilnil // nil ends the group.
	case '[':
		group, err := sc.explicitGroup()
		if err != nil {
			return nil, err
		}

		return sc.withMultiplier(group)
	case '<':
		if sc.nextChar() == '\'' {
			return sc.property()
		}

		return sc.typeReference()
	case '|':
		end := sc.pos + 1
		if sc.nextChar() == '|' {
			end++
		}

		return &combinatorMark{value: Combinator(sc.cut(end))}, nil
	case '&':
		sc.pos++

		err := sc.eat('&')
		if err != nil {
			return nil, err
		}

		return &combinatorMark{value: AllInAnyOrder}, nil
	case ',':
		sc.pos++

		return &Comma{}, nil
	case '\'':
		value, err := sc.quoted()
		if err != nil {
			return nil, err
		}

		return sc.withMultiplier(&String{Value: value})
	case ' ', '\t', '\n', '\r', '\f':
		sc.skipSpaces()

		return spacesMark{}, nil
	case '@':
		if next := sc.nextChar(); next < utf8.RuneSelf && isKeywordChar(next) {
			sc.pos++

			name, err := sc.keyword()
			if err != nil {
				return nil, err
			}

			return &AtKeyword{Name: name}, nil
		}
	case '{':
		if next := sc.nextChar(); next >= '0' && next <= '9' {
			return nil, nil //nolint:nilnil // a multiplier here ends the group.
		}
	}

	return sc.token(), nil
}

func (sc *scanner) token() Node {
	value := sc.peek()
	if value == "" {
		return nil
	}

	return &Token{Value: value}
}

func (sc *scanner) keywordOrFunction() (Node, error) {
	name, err := sc.keyword()
	if err != nil {
		return nil, err
	}

	if sc.char() == '(' {
		sc.pos++

		return &Function{Name: name}, nil
	}

	return sc.withMultiplier(&Keyword{Name: name})
}

func (sc *scanner) explicitGroup() (*Group, error) {
	err := sc.eat('[')
	if err != nil {
		return nil, err
	}

	group, err := sc.readGroup()
	if err != nil {
		return nil, err
	}

	err = sc.eat(']')
	if err != nil {
		return nil, err
	}

	group.Explicit = true

	if sc.char() == '!' {
		sc.pos++
		group.DisallowEmpty = true
	}

	return group, nil
}

func (sc *scanner) property() (Node, error) {
	for _, code := range []byte{'<', '\''} {
		err := sc.eat(code)
		if err != nil {
			return nil, err
		}
	}

	name, err := sc.keyword()
	if err != nil {
		return nil, err
	}

	for _, code := range []byte{'\'', '>'} {
		err = sc.eat(code)
		if err != nil {
			return nil, err
		}
	}

	return sc.withMultiplier(&Property{Name: name})
}

func (sc *scanner) typeReference() (Node, error) {
	err := sc.eat('<')
	if err != nil {
		return nil, err
	}

	name, err := sc.keyword()
	if err != nil {
		return nil, err
	}

	if sc.char() == '(' && sc.nextChar() == ')' {
		sc.pos += 2
		name += "()"
	}

	node := &Type{Name: name}

	if sc.charAt(sc.wsEnd(sc.pos)) == '[' {
		sc.skipSpaces()

		node.Range, err = sc.rangeOpts()
		if err != nil {
			return nil, err
		}
	}

	err = sc.eat('>')
	if err != nil {
		return nil, err
	}

	return sc.withMultiplier(node)
}

func (sc *scanner) bound() (*Bound, error) {
	sign := 1.0

	if sc.char() == '-' {
		sc.pos++
		sign = -1
	}

	digits, err := sc.number()
	if err != nil {
		return nil, err
	}

	value, _ := strconv.ParseFloat(digits, 64)
	bound := &Bound{Value: sign * value}

	if code := sc.char(); code < utf8.RuneSelf && code != 0 && isKeywordChar(code) {
		bound.Unit, err = sc.keyword()
		if err != nil {
			return nil, err
		}
	}

	return bound, nil
}

func (sc *scanner) rangeOpts() (*Range, error) {
	err := sc.eat('[')
	if err != nil {
		return nil, err
	}

	result := &Range{}

	if sc.char() == '-' && strings.HasPrefix(sc.str[sc.pos+1:], infinity) {
		sc.pos += 1 + len(infinity)
	} else {
		result.Min, err = sc.bound()
		if err != nil {
			return nil, err
		}
	}

	sc.skipSpaces()

	err = sc.eat(',')
	if err != nil {
		return nil, err
	}

	sc.skipSpaces()

	if sc.atInfinity() {
		sc.pos += len(infinity)
	} else {
		result.Max, err = sc.bound()
		if err != nil {
			return nil, err
		}
	}

	err = sc.eat(']')
	if err != nil {
		return nil, err
	}

	return result, nil
}

// multiplier reads an optional multiplier; nil means there is none.
func (sc *scanner) multiplier() (*Multiplier, error) {
	switch sc.char() {
	case '*':
		sc.pos++

		return &Multiplier{Min: 0, Max: 0}, nil
	case '+':
		sc.pos++

		return &Multiplier{Min: 1, Max: 0}, nil
	case '?':
		sc.pos++

		return &Multiplier{Min: 0, Max: 1}, nil
	case '#':
		sc.pos++

		switch sc.char() {
		case '{':
			minimum, maximum, err := sc.repeatRange()
			if err != nil {
				return nil, err
			}

			return &Multiplier{Min: minimum, Max: maximum, Comma: true}, nil
		case '?':
			sc.pos++

			return &Multiplier{Min: 0, Max: 0, Comma: true}, nil
		default:
			return &Multiplier{Min: 1, Max: 0, Comma: true}, nil
		}
	case '{':
		minimum, maximum, err := sc.repeatRange()
		if err != nil {
			return nil, err
		}

		return &Multiplier{Min: minimum, Max: maximum}, nil
	default:
		return nil, nil //nolint:nilnil // no multiplier follows.
	}
}

// repeatRange reads "{m}", "{m,}" or "{m,n}".
func (sc *scanner) repeatRange() (int, int, error) {
	err := sc.eat('{')
	if err != nil {
		return 0, 0, err
	}

	minText, err := sc.number()
	if err != nil {
		return 0, 0, err
	}

	maxText := minText

	if sc.char() == ',' {
		sc.pos++
		maxText = ""

		if sc.char() != '}' {
			maxText, err = sc.number()
			if err != nil {
				return 0, 0, err
			}
		}
	}

	err = sc.eat('}')
	if err != nil {
		return 0, 0, err
	}

	minimum, _ := strconv.Atoi(minText)
	maximum, _ := strconv.Atoi(maxText)

	return minimum, maximum, nil
}

func (sc *scanner) withMultiplier(term Node) (Node, error) {
	multiplier, err := sc.multiplier()
	if err != nil {
		return nil, err
	}

	if multiplier == nil {
		return term, nil
	}

	multiplier.Term = term

	// "+#" stacks two multipliers.
	if sc.char() == '#' && sc.charAt(sc.pos-1) == '+' {
		return sc.withMultiplier(multiplier)
	}

	return multiplier, nil
}
