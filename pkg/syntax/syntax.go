// Package syntax bundles a parser, a generator and a lexer built from one
// syntax dictionary.
//
// Default returns the instance backed by the embedded dictionary. Fork
// derives a new instance with a Patch applied, leaving the receiver
// untouched.
package syntax

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/data"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
)

// ErrBadDictionary is returned when a dictionary cannot be decoded.
var ErrBadDictionary = errors.New("bad syntax dictionary")

type options struct {
	maxIterations int
	cacheSize     int
	onMatch       func(stats lexer.MatchStats)
	atrules       map[string]parser.AtrulePlugin
	pseudos       map[string]parser.PseudoPlugin
}

// Option configures the lexer or the parser of a Syntax.
type Option func(*options)

// WithMaxIterations caps the steps of a single match.
func WithMaxIterations(limit int) Option {
	return func(o *options) {
		o.maxIterations = limit
	}
}

// WithCacheSize bounds the cache of compiled ad hoc syntaxes.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithMatchObserver registers a callback run after every match.
func WithMatchObserver(fn func(stats lexer.MatchStats)) Option {
	return func(o *options) {
		o.onMatch = fn
	}
}

// WithAtrule installs a parser plugin for the at-rule name, given without
// "@". It replaces a built-in plugin of the same name.
func WithAtrule(name string, plugin parser.AtrulePlugin) Option {
	return func(o *options) {
		o.atrules = withEntry(o.atrules, strings.ToLower(name), plugin)
	}
}

// WithPseudo installs a parser plugin for the arguments of the functional
// pseudo class or element name, given without ":".
func WithPseudo(name string, plugin parser.PseudoPlugin) Option {
	return func(o *options) {
		o.pseudos = withEntry(o.pseudos, strings.ToLower(name), plugin)
	}
}

// withEntry copies table before writing so forks never share it.
func withEntry[V any](table map[string]V, name string, value V) map[string]V {
	clone := make(map[string]V, len(table)+1)
	maps.Copy(clone, table)
	clone[name] = value

	return clone
}

// Syntax is an immutable dictionary together with the lexer compiled
// from it. It is safe for concurrent use.
type Syntax struct {
	dict         lexer.Syntaxes
	opts         options
	lexer        *lexer.Lexer
	parserConfig parser.Config
}

var (
	defaultOnce   sync.Once
	defaultSyntax *Syntax
)

// Default returns the shared instance built from the embedded dictionary.
func Default() *Syntax {
	defaultOnce.Do(func() {
		syntax, err := Decode(data.SyntaxJSON())
		if err != nil {
			panic(err)
		}

		defaultSyntax = syntax
	})

	return defaultSyntax
}

// Decode builds a Syntax from a JSON dictionary.
func Decode(raw []byte, opts ...Option) (*Syntax, error) {
	var dict lexer.Syntaxes

	err := json.Unmarshal(raw, &dict)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDictionary, err)
	}

	return New(dict, opts...), nil
}

// New builds a Syntax from dict. The dictionary is copied.
func New(dict lexer.Syntaxes, opts ...Option) *Syntax {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return build(cloneSyntaxes(dict), o)
}

func build(dict lexer.Syntaxes, o options) *Syntax {
	config := parser.DefaultConfig()
	maps.Copy(config.Atrules, o.atrules)
	maps.Copy(config.Pseudos, o.pseudos)

	return &Syntax{
		dict: dict,
		opts: o,
		lexer: lexer.New(lexer.Config{
			Syntaxes:      dict,
			MaxIterations: o.maxIterations,
			CacheSize:     o.cacheSize,
			OnMatch:       o.onMatch,
		}),
		parserConfig: config,
	}
}

// Lexer returns the lexer of the dictionary.
func (syntax *Syntax) Lexer() *lexer.Lexer {
	return syntax.lexer
}

// Dictionary returns a copy of the dictionary.
func (syntax *Syntax) Dictionary() lexer.Syntaxes {
	return cloneSyntaxes(syntax.dict)
}

// Parse parses source with the built-in grammar tables plus the plugins
// installed by WithAtrule and WithPseudo. See parser.Parse.
func (syntax *Syntax) Parse(source string, opts ...parser.Option) (ast.Node, error) {
	return parser.New(syntax.parserConfig).Parse(source, opts...)
}

// Generate serializes node. See generator.Generate.
func (syntax *Syntax) Generate(node ast.Node, opts ...generator.Option) (string, error) {
	return generator.Generate(node, opts...)
}

// Fork returns a new Syntax with patch applied to a copy of the
// dictionary. Extra options override the ones of the receiver; parser
// plugins accumulate across forks.
func (syntax *Syntax) Fork(patch Patch, opts ...Option) *Syntax {
	return syntax.ForkFunc(patch.apply, opts...)
}

// ForkFunc is Fork with an arbitrary edit of the dictionary copy.
func (syntax *Syntax) ForkFunc(edit func(dict *lexer.Syntaxes), opts ...Option) *Syntax {
	dict := cloneSyntaxes(syntax.dict)
	edit(&dict)

	o := syntax.opts
	for _, opt := range opts {
		opt(&o)
	}

	return build(dict, o)
}

// AtrulePatch edits one at-rule. A nil Prelude keeps the current one.
type AtrulePatch struct {
	Prelude     *string           `json:"prelude,omitempty"     yaml:"prelude,omitempty"`
	Descriptors map[string]string `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
}

// Patch is an extension of a dictionary.
//
// A syntax starting with "|" is appended to the existing one as a new
// alternative; any other syntax replaces it. An empty syntax removes the
// entry, and a nil at-rule patch removes the whole at-rule. Units are
// replaced per dimension group.
type Patch struct {
	Generic    *bool                   `json:"generic,omitempty"    yaml:"generic,omitempty"`
	Units      map[string][]string     `json:"units,omitempty"      yaml:"units,omitempty"`
	Types      map[string]string       `json:"types,omitempty"      yaml:"types,omitempty"`
	Properties map[string]string       `json:"properties,omitempty" yaml:"properties,omitempty"`
	Atrules    map[string]*AtrulePatch `json:"atrules,omitempty"    yaml:"atrules,omitempty"`
}

var (
	appendPrefix      = regexp.MustCompile(`^\s*\|`)
	appendPrefixSpace = regexp.MustCompile(`^\s*\|\s*`)
)

// appendOrAssign merges an update into the current syntax text.
func appendOrAssign(current, update string) string {
	if !appendPrefix.MatchString(update) {
		return update
	}

	if current == "" {
		return appendPrefixSpace.ReplaceAllString(update, "")
	}

	return current + update
}

func mergeSyntaxes(dest map[string]string, updates map[string]string) map[string]string {
	if len(updates) == 0 {
		return dest
	}

	if dest == nil {
		dest = make(map[string]string, len(updates))
	}

	for name, update := range updates {
		merged := appendOrAssign(dest[name], update)
		if merged == "" {
			delete(dest, name)

			continue
		}

		dest[name] = merged
	}

	return dest
}

func (patch Patch) apply(dict *lexer.Syntaxes) {
	if patch.Generic != nil {
		dict.Generic = *patch.Generic
	}

	if len(patch.Units) > 0 && dict.Units == nil {
		dict.Units = make(map[string][]string, len(patch.Units))
	}

	for group, units := range patch.Units {
		dict.Units[group] = slices.Clone(units)
	}

	dict.Types = mergeSyntaxes(dict.Types, patch.Types)
	dict.Properties = mergeSyntaxes(dict.Properties, patch.Properties)

	if len(patch.Atrules) > 0 && dict.Atrules == nil {
		dict.Atrules = make(map[string]*lexer.AtruleSyntax, len(patch.Atrules))
	}

	for name, update := range patch.Atrules {
		if update == nil {
			delete(dict.Atrules, name)

			continue
		}

		entry := &lexer.AtruleSyntax{}
		if current := dict.Atrules[name]; current != nil {
			entry = cloneAtrule(current)
		}

		if update.Prelude != nil {
			entry.Prelude = appendOrAssign(entry.Prelude, *update.Prelude)
		}

		entry.Descriptors = mergeSyntaxes(entry.Descriptors, update.Descriptors)
		if len(entry.Descriptors) == 0 {
			entry.Descriptors = nil
		}

		dict.Atrules[name] = entry
	}
}

func cloneAtrule(atrule *lexer.AtruleSyntax) *lexer.AtruleSyntax {
	return &lexer.AtruleSyntax{Prelude: atrule.Prelude, Descriptors: maps.Clone(atrule.Descriptors)}
}

func cloneSyntaxes(dict lexer.Syntaxes) lexer.Syntaxes {
	clone := lexer.Syntaxes{
		Generic:    dict.Generic,
		Types:      maps.Clone(dict.Types),
		Properties: maps.Clone(dict.Properties),
	}

	if dict.Units != nil {
		clone.Units = make(map[string][]string, len(dict.Units))
		for group, units := range dict.Units {
			clone.Units[group] = slices.Clone(units)
		}
	}

	if dict.Atrules != nil {
		clone.Atrules = make(map[string]*lexer.AtruleSyntax, len(dict.Atrules))

		for name, atrule := range dict.Atrules {
			if atrule != nil {
				clone.Atrules[name] = cloneAtrule(atrule)
			}
		}
	}

	return clone
}
