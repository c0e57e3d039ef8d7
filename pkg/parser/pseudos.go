package parser

import "github.com/Sumatoshi-tech/csstree/pkg/ast"

func defaultPseudos() map[string]PseudoPlugin {
	selectorList := func(p *Parser) (*ast.List, error) { return single(p.SelectorList()) }
	selector := func(p *Parser) (*ast.List, error) { return single(p.Selector()) }
	identifier := func(p *Parser) (*ast.List, error) { return single(p.Identifier()) }
	nth := func(p *Parser) (*ast.List, error) { return single(p.Nth()) }

	return map[string]PseudoPlugin{
		"dir":              identifier,
		"has":              selectorList,
		"lang":             identifier,
		"matches":          selectorList,
		"is":               selectorList,
		"-moz-any":         selectorList,
		"-webkit-any":      selectorList,
		"where":            selectorList,
		"not":              selectorList,
		"nth-child":        nth,
		"nth-last-child":   nth,
		"nth-last-of-type": nth,
		"nth-of-type":      nth,
		"slotted":          selector,
		"host":             selector,
		"host-context":     selector,
	}
}
