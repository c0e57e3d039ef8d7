package grammar

import (
	"errors"
	"strconv"
	"strings"
)

// DecorateFunc may rewrite the text generated for a node. Range text is
// passed with the Type it belongs to.
type DecorateFunc func(text string, node Node) string

type generateOptions struct {
	forceBraces bool
	compact     bool
	decorate    DecorateFunc
}

// GenerateOption configures Generate.
type GenerateOption func(*generateOptions)

// WithForceBraces brackets every group, not only explicit ones.
func WithForceBraces() GenerateOption {
	return func(o *generateOptions) {
		o.forceBraces = true
	}
}

// WithCompact drops optional whitespace.
func WithCompact() GenerateOption {
	return func(o *generateOptions) {
		o.compact = true
	}
}

// WithDecorate installs a text decorator.
func WithDecorate(decorate DecorateFunc) GenerateOption {
	return func(o *generateOptions) {
		if decorate != nil {
			o.decorate = decorate
		}
	}
}

// Generate writes node back as definition syntax.
func Generate(node Node, opts ...GenerateOption) string {
	cfg := generateOptions{decorate: func(text string, _ Node) string { return text }}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg.node(node)
}

// MultiplierText returns the suffix a multiplier is written with.
func MultiplierText(multiplier *Multiplier) string {
	switch {
	case multiplier.Min == 0 && multiplier.Max == 0:
		if multiplier.Comma {
			return "#?"
		}

		return "*"
	case multiplier.Min == 0 && multiplier.Max == 1:
		return "?"
	case multiplier.Min == 1 && multiplier.Max == 0:
		if multiplier.Comma {
			return "#"
		}

		return "+"
	case multiplier.Min == 1 && multiplier.Max == 1:
		return ""
	}

	var text strings.Builder

	if multiplier.Comma {
		text.WriteByte('#')
	}

	text.WriteByte('{')
	text.WriteString(strconv.Itoa(multiplier.Min))

	if multiplier.Min != multiplier.Max {
		text.WriteByte(',')

		if multiplier.Max != 0 {
			text.WriteString(strconv.Itoa(multiplier.Max))
		}
	}

	text.WriteByte('}')

	return text.String()
}

func formatBound(bound *Bound, infinite string) string {
	if bound == nil {
		return infinite
	}

	return strconv.FormatFloat(bound.Value, 'f', -1, 64) + bound.Unit
}

func rangeText(r *Range) string {
	return " [" + formatBound(r.Min, "-"+infinity) + "," + formatBound(r.Max, infinity) + "]"
}

func (cfg *generateOptions) group(group *Group) string {
	separator := string(group.Combinator)
	if group.Combinator != Juxtapose && !cfg.compact {
		separator = " " + separator + " "
	}

	terms := make([]string, len(group.Terms))
	for idx, term := range group.Terms {
		terms[idx] = cfg.node(term)
	}

	text := strings.Join(terms, separator)

	if !group.Explicit && !cfg.forceBraces {
		return text
	}

	if cfg.compact {
		return "[" + text + "]"
	}

	if strings.HasPrefix(text, ",") {
		return "[" + text + " ]"
	}

	return "[ " + text + " ]"
}

func (cfg *generateOptions) node(node Node) string {
	var text string

	switch n := node.(type) {
	case *Group:
		text = cfg.group(n)
		if n.DisallowEmpty {
			text += "!"
		}
	case *Multiplier:
		return cfg.node(n.Term) + cfg.decorate(MultiplierText(n), n)
	case *Type:
		text = "<" + n.Name
		if n.Range != nil {
			text += cfg.decorate(rangeText(n.Range), n)
		}

		text += ">"
	case *Property:
		text = "<'" + n.Name + "'>"
	case *Keyword:
		text = n.Name
	case *AtKeyword:
		text = "@" + n.Name
	case *Function:
		text = n.Name + "("
	case *String:
		text = n.Value
	case *Token:
		text = n.Value
	case *Comma:
		text = ","
	default:
		return ""
	}

	return cfg.decorate(text, node)
}

// ErrNoHandler is returned by Walk when neither handler is set.
var ErrNoHandler = errors.New("neither enter nor leave walker handler is set")

// WalkOptions configures Walk.
type WalkOptions struct {
	Enter func(node Node)
	Leave func(node Node)
}

// Walk visits node and its terms depth first.
func Walk(node Node, opts WalkOptions) error {
	if opts.Enter == nil && opts.Leave == nil {
		return ErrNoHandler
	}

	walk(node, opts)

	return nil
}

func walk(node Node, opts WalkOptions) {
	if opts.Enter != nil {
		opts.Enter(node)
	}

	switch n := node.(type) {
	case *Group:
		for _, term := range n.Terms {
			walk(term, opts)
		}
	case *Multiplier:
		walk(n.Term, opts)
	}

	if opts.Leave != nil {
		opts.Leave(node)
	}
}
