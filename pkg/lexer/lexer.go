// Package lexer checks CSS values against value definition syntaxes.
//
// A Lexer holds a registry of named types, properties and at-rules. Each
// syntax is parsed with package grammar and compiled into a match graph on
// first use; a backtracking state machine then walks the graph over the
// tokens of a value. Matching never fails with an error return: the
// outcome, including any diagnostic, is carried by MatchResult.
package lexer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/cache"
	"github.com/Sumatoshi-tech/csstree/pkg/grammar"
	"github.com/Sumatoshi-tech/csstree/pkg/names"
)

// DefaultUnits are the units each dimension type accepts.
var DefaultUnits = map[string][]string{
	"angle":     {"deg", "grad", "rad", "turn"},
	"decibel":   {"db"},
	"flex":      {"fr"},
	"frequency": {"hz", "khz"},
	"length": {
		"cm", "mm", "q", "in", "pt", "pc", "px", "em", "rem", "ex", "rex", "cap", "rcap", "ch", "rch",
		"ic", "ric", "lh", "rlh", "vw", "svw", "lvw", "dvw", "vh", "svh", "lvh", "dvh", "vi", "svi",
		"lvi", "dvi", "vb", "svb", "lvb", "dvb", "vmin", "svmin", "lvmin", "dvmin", "vmax", "svmax",
		"lvmax", "dvmax", "cqw", "cqh", "cqi", "cqb", "cqmin", "cqmax",
	},
	"resolution": {"dpi", "dpcm", "dppx", "x"},
	"semitones":  {"st"},
	"time":       {"s", "ms"},
}

// AtruleSyntax is the dictionary entry of an at-rule. An empty Prelude
// means the at-rule takes none.
type AtruleSyntax struct {
	Prelude     string            `json:"prelude"     yaml:"prelude"`
	Descriptors map[string]string `json:"descriptors" yaml:"descriptors"`
}

// Syntaxes is a syntax dictionary.
type Syntaxes struct {
	Generic    bool                     `json:"generic"    yaml:"generic"`
	Units      map[string][]string      `json:"units"      yaml:"units"`
	Types      map[string]string        `json:"types"      yaml:"types"`
	Properties map[string]string        `json:"properties" yaml:"properties"`
	Atrules    map[string]*AtruleSyntax `json:"atrules"    yaml:"atrules"`
}

// MatchStats describes one finished match.
type MatchStats struct {
	// Kind is what was matched: "property", "type", "atrule-prelude",
	// "atrule-descriptor" or "syntax".
	Kind       string
	Name       string
	Matched    bool
	Iterations int
}

// Config configures New.
type Config struct {
	Syntaxes

	// MaxIterations caps the steps of one match; 0 means
	// DefaultMaxIterations.
	MaxIterations int
	// CacheSize bounds the cache of compiled ad hoc syntaxes given to
	// Match; 0 means cache.DefaultLRUSize.
	CacheSize int
	// OnMatch, when set, is called after every match.
	OnMatch func(stats MatchStats)
}

// Lexer matches values against a syntax registry. It is safe for
// concurrent use.
type Lexer struct {
	generic    bool
	units      map[string][]string
	types      map[string]*Descriptor
	properties map[string]*Descriptor
	atrules    map[string]*Atrule

	maxIterations int
	onMatch       func(stats MatchStats)
	adhoc         *cache.LRU[string, *Descriptor]

	cssWideOnce  sync.Once
	cssWideGraph *matchGraph
}

// New builds a lexer from cfg.
func New(cfg Config) *Lexer {
	lex := &Lexer{
		generic:       cfg.Generic,
		units:         maps.Clone(DefaultUnits),
		types:         make(map[string]*Descriptor),
		properties:    make(map[string]*Descriptor),
		atrules:       make(map[string]*Atrule),
		maxIterations: cfg.MaxIterations,
		onMatch:       cfg.OnMatch,
		adhoc:         cache.NewLRU[string, *Descriptor](cfg.CacheSize),
	}

	if lex.maxIterations <= 0 {
		lex.maxIterations = DefaultMaxIterations
	}

	for group, units := range cfg.Units {
		if _, known := DefaultUnits[group]; known && units != nil {
			lex.units[group] = slices.Clone(units)
		}
	}

	for name, source := range cfg.Types {
		if source != "" {
			lex.types[name] = newDescriptor(KindType, name, "", source)
		}
	}

	if cfg.Generic {
		for name, fn := range genericTypes(lex.units) {
			lex.types[name] = newGenericDescriptor(name, fn)
		}
	}

	for name, atrule := range cfg.Atrules {
		if atrule == nil {
			continue
		}

		entry := &Atrule{Name: name}

		if atrule.Prelude != "" {
			entry.Prelude = newDescriptor(KindAtrulePrelude, name, "", atrule.Prelude)
		}

		if atrule.Descriptors != nil {
			entry.Descriptors = make(map[string]*Descriptor, len(atrule.Descriptors))

			for descriptor, source := range atrule.Descriptors {
				entry.Descriptors[descriptor] = newDescriptor(KindAtruleDescriptor, descriptor, name, source)
			}
		}

		lex.atrules[name] = entry
	}

	for name, source := range cfg.Properties {
		if source != "" {
			lex.properties[name] = newDescriptor(KindProperty, name, "", source)
		}
	}

	return lex
}

func (lex *Lexer) typeGraph(name string) (*matchGraph, error) {
	desc, ok := lex.types[name]
	if !ok {
		return nil, newReferenceError("Bad syntax reference", "<"+name+">")
	}

	return desc.matchGraph()
}

func (lex *Lexer) propertyGraph(name string) (*matchGraph, error) {
	desc, ok := lex.properties[name]
	if !ok {
		return nil, newReferenceError("Bad syntax reference", "<'"+name+"'>")
	}

	return desc.matchGraph()
}

func (lex *Lexer) cssWideKeywords() *matchGraph {
	lex.cssWideOnce.Do(func() {
		syntax := grammar.MustParse(strings.Join(names.CSSWideKeywords(), " | "))

		graph, err := compileGraph(syntax, nil)
		if err != nil {
			panic(err)
		}

		lex.cssWideGraph = graph
	})

	return lex.cssWideGraph
}

func (lex *Lexer) report(kind, name string, result *MatchResult) *MatchResult {
	if lex.onMatch != nil {
		lex.onMatch(MatchStats{Kind: kind, Name: name, Matched: result.Matched != nil, Iterations: result.Iterations})
	}

	return result
}

// matchValue runs desc against value. CSS-wide keywords are tried first
// when cssWide is set.
func (lex *Lexer) matchValue(desc *Descriptor, value Value, cssWide bool) *MatchResult {
	if value == nil {
		value = CSS("")
	}

	tokens, err := value.tokens()
	if err != nil {
		return &MatchResult{Error: err}
	}

	if hasVar(tokens) {
		return &MatchResult{Error: ErrVarNotSupported}
	}

	graph, err := desc.matchGraph()
	if err != nil {
		return &MatchResult{Error: err}
	}

	var run *matchRun

	if cssWide {
		run = internalMatch(tokens, lex.cssWideKeywords(), lex, lex.maxIterations)
	}

	if run == nil || run.match == nil {
		run = internalMatch(tokens, graph, lex, lex.maxIterations)
	}

	if run.referenceErrs != nil {
		return &MatchResult{Error: run.referenceErrs, Iterations: run.iterations, Reason: run.reason}
	}

	if run.match == nil {
		var syntax grammar.Node

		if desc.generic == nil {
			syntax, _ = desc.Syntax()
		}

		return &MatchResult{
			Error:      newMatchError(run.reason, syntax, value.root(), tokens, run.longestMatch),
			Iterations: run.iterations,
			Reason:     run.reason,
		}
	}

	return &MatchResult{
		Matched:    buildTree(run.match, graph.syntax),
		Iterations: run.iterations,
		Reason:     run.reason,
	}
}

// Match matches value against a syntax given as text, such as
// "<length>{2,4}". Compiled syntaxes are cached.
func (lex *Lexer) Match(syntax string, value Value) *MatchResult {
	if strings.TrimSpace(syntax) == "" {
		return lex.report("syntax", syntax, &MatchResult{Error: newReferenceError("Bad syntax", "")})
	}

	desc := lex.adhoc.GetOrCompute(syntax, func() *Descriptor {
		return newDescriptor(KindType, "anonymous", "", syntax)
	})

	return lex.report("syntax", syntax, lex.matchValue(desc, value, false))
}

// MatchSyntax matches value against a parsed syntax.
func (lex *Lexer) MatchSyntax(syntax *grammar.Group, value Value) *MatchResult {
	if syntax == nil {
		return lex.report("syntax", "", &MatchResult{Error: newReferenceError("Bad syntax", "")})
	}

	desc := &Descriptor{Kind: KindType, Name: "anonymous", Source: grammar.Generate(syntax)}
	desc.parseOnce.Do(func() { desc.syntax = syntax })

	return lex.report("syntax", desc.Source, lex.matchValue(desc, value, false))
}

// MatchAsTree matches value against syntax text and returns the match
// tree, or the error that prevented a match.
func (lex *Lexer) MatchAsTree(syntax string, value Value) (*MatchTree, error) {
	result := lex.Match(syntax, value)
	if result.Error != nil {
		return nil, result.Error
	}

	return result.Matched, nil
}

// MatchProperty matches value against the syntax of a property. Vendor
// prefixed names fall back to the unprefixed property.
func (lex *Lexer) MatchProperty(property string, value Value) *MatchResult {
	if names.PropertyOf(property).Custom {
		return lex.report("property", property, &MatchResult{Error: ErrCustomProperty})
	}

	if err := lex.CheckPropertyName(property); err != nil {
		return lex.report("property", property, &MatchResult{Error: err})
	}

	return lex.report("property", property, lex.matchValue(lex.GetProperty(property, true), value, true))
}

// MatchType matches value against a named type.
func (lex *Lexer) MatchType(name string, value Value) *MatchResult {
	desc := lex.GetType(name)
	if desc == nil {
		return lex.report("type", name, &MatchResult{Error: newReferenceError("Unknown type", name)})
	}

	return lex.report("type", name, lex.matchValue(desc, value, false))
}

// MatchAtrulePrelude matches the prelude of an at-rule. A nil prelude
// stands for an at-rule written without one.
func (lex *Lexer) MatchAtrulePrelude(atrule string, prelude Value) *MatchResult {
	if err := lex.CheckAtrulePrelude(atrule, prelude); err != nil {
		return lex.report("atrule-prelude", atrule, &MatchResult{Error: err})
	}

	entry := lex.GetAtrule(atrule, true)
	if entry.Prelude == nil {
		return lex.report("atrule-prelude", atrule, &MatchResult{})
	}

	return lex.report("atrule-prelude", atrule, lex.matchValue(entry.Prelude, prelude, false))
}

// MatchAtruleDescriptor matches the value of an at-rule descriptor.
func (lex *Lexer) MatchAtruleDescriptor(atrule, descriptor string, value Value) *MatchResult {
	if err := lex.CheckAtruleDescriptorName(atrule, descriptor); err != nil {
		return lex.report("atrule-descriptor", descriptor, &MatchResult{Error: err})
	}

	desc := lex.GetAtruleDescriptor(atrule, descriptor)

	return lex.report("atrule-descriptor", descriptor, lex.matchValue(desc, value, false))
}

// MatchDeclaration matches the value of a Declaration node.
func (lex *Lexer) MatchDeclaration(node ast.Node) *MatchResult {
	decl, ok := node.(*ast.Declaration)
	if !ok {
		return &MatchResult{Error: ErrNotDeclaration}
	}

	return lex.MatchProperty(decl.Property, Tree(decl.Value))
}

// GetAtrule returns the at-rule entry for name. With fallbackBasename a
// vendor prefixed name falls back to the unprefixed at-rule.
func (lex *Lexer) GetAtrule(name string, fallbackBasename bool) *Atrule {
	keyword := names.KeywordOf(name)

	if entry, ok := lex.atrules[keyword.Name]; ok {
		return entry
	}

	if keyword.Vendor != "" && fallbackBasename {
		return lex.atrules[keyword.Basename]
	}

	return nil
}

// GetAtrulePrelude returns the prelude descriptor of an at-rule.
func (lex *Lexer) GetAtrulePrelude(name string, fallbackBasename bool) *Descriptor {
	if entry := lex.GetAtrule(name, fallbackBasename); entry != nil {
		return entry.Prelude
	}

	return nil
}

// GetAtruleDescriptor returns a descriptor of an at-rule, trying the
// unprefixed descriptor name as well.
func (lex *Lexer) GetAtruleDescriptor(atrule, name string) *Descriptor {
	entry := lex.GetAtrule(atrule, true)
	if entry == nil || entry.Descriptors == nil {
		return nil
	}

	keyword := names.KeywordOf(name)

	if desc, ok := entry.Descriptors[keyword.Name]; ok {
		return desc
	}

	return entry.Descriptors[keyword.Basename]
}

// GetProperty returns the descriptor of a property. With
// fallbackBasename a vendor prefixed name falls back to the unprefixed
// property.
func (lex *Lexer) GetProperty(name string, fallbackBasename bool) *Descriptor {
	property := names.PropertyOf(name)

	if desc, ok := lex.properties[property.Name]; ok {
		return desc
	}

	if property.Vendor != "" && fallbackBasename {
		return lex.properties[property.Basename]
	}

	return nil
}

// GetType returns the descriptor of a named type.
func (lex *Lexer) GetType(name string) *Descriptor {
	return lex.types[name]
}

// Properties returns the registered property names, sorted.
func (lex *Lexer) Properties() []string {
	return slices.Sorted(maps.Keys(lex.properties))
}

// Types returns the registered type names, sorted.
func (lex *Lexer) Types() []string {
	return slices.Sorted(maps.Keys(lex.types))
}

// Atrules returns the registered at-rule names, sorted.
func (lex *Lexer) Atrules() []string {
	return slices.Sorted(maps.Keys(lex.atrules))
}

// CheckAtruleName reports an unknown at-rule.
func (lex *Lexer) CheckAtruleName(name string) error {
	if lex.GetAtrule(name, true) == nil {
		return newReferenceError("Unknown at-rule", "@"+name)
	}

	return nil
}

func isEmptyValue(value Value) bool {
	if value == nil {
		return true
	}

	css, ok := value.(CSS)

	return ok && css == ""
}

// CheckAtrulePrelude reports a prelude given to an at-rule that takes
// none, or a missing prelude the at-rule requires.
func (lex *Lexer) CheckAtrulePrelude(name string, prelude Value) error {
	if err := lex.CheckAtruleName(name); err != nil {
		return err
	}

	entry := lex.GetAtrule(name, true)
	empty := isEmptyValue(prelude)

	if entry.Prelude == nil && !empty {
		return fmt.Errorf("At-rule `@%s` %w", name, ErrUnexpectedPrelude)
	}

	if entry.Prelude != nil && empty && lex.matchValue(entry.Prelude, CSS(""), false).Matched == nil {
		return fmt.Errorf("At-rule `@%s` %w", name, ErrMissingPrelude)
	}

	return nil
}

// CheckAtruleDescriptorName reports an unknown at-rule or descriptor.
func (lex *Lexer) CheckAtruleDescriptorName(atrule, descriptor string) error {
	if err := lex.CheckAtruleName(atrule); err != nil {
		return err
	}

	entry := lex.GetAtrule(atrule, true)
	if entry.Descriptors == nil {
		return fmt.Errorf("At-rule `@%s` %w", atrule, ErrNoDescriptors)
	}

	if lex.GetAtruleDescriptor(atrule, descriptor) == nil {
		return newReferenceError("Unknown at-rule descriptor", descriptor)
	}

	return nil
}

// CheckPropertyName reports an unknown property.
func (lex *Lexer) CheckPropertyName(name string) error {
	if lex.GetProperty(name, true) == nil {
		return newReferenceError("Unknown property", name)
	}

	return nil
}
