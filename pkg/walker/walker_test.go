package walker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/list"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

func parse(t *testing.T, source string) ast.Node {
	t.Helper()

	root, err := parser.Parse(source)
	require.NoError(t, err)

	return root
}

func kinds(t *testing.T, root ast.Node, opts walker.Options) []string {
	t.Helper()

	var visited []string

	opts.Enter = func(_ *walker.Context, node ast.Node, _ walker.Item) walker.Action {
		visited = append(visited, node.Kind().String())

		return walker.Continue
	}

	require.NoError(t, walker.Walk(root, opts))

	return visited
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	root := parse(t, "a{color:red}")

	assert.Equal(t, []string{
		"StyleSheet", "Rule", "SelectorList", "Selector", "TypeSelector",
		"Block", "Declaration", "Value", "Identifier",
	}, kinds(t, root, walker.Options{}))

	assert.Equal(t, []string{
		"StyleSheet", "Rule", "Block", "Declaration", "Value", "Identifier",
		"SelectorList", "Selector", "TypeSelector",
	}, kinds(t, root, walker.Options{Reverse: true}))
}

func TestWalkLeave(t *testing.T) {
	t.Parallel()

	var order []string

	err := walker.Walk(parse(t, "a{}"), walker.Options{
		Leave: func(_ *walker.Context, node ast.Node, _ walker.Item) walker.Action {
			order = append(order, node.Kind().String())

			return walker.Continue
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TypeSelector", "Selector", "SelectorList", "Block", "Rule", "StyleSheet"}, order)
}

func TestWalkSkipAndBreak(t *testing.T) {
	t.Parallel()

	root := parse(t, "a{color:red}b{}")

	var visited []string

	err := walker.Walk(root, walker.Options{Enter: func(_ *walker.Context, node ast.Node, _ walker.Item) walker.Action {
		visited = append(visited, node.Kind().String())

		if node.Kind() == ast.KindSelectorList {
			return walker.Skip
		}

		if node.Kind() == ast.KindDeclaration {
			return walker.Break
		}

		return walker.Continue
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"StyleSheet", "Rule", "SelectorList", "Block", "Declaration"}, visited)
}

func TestWalkVisit(t *testing.T) {
	t.Parallel()

	root := parse(t, "@media print{a{color:red}}b{width:0;height:calc(1px + 2px)}")

	var properties []string

	err := walker.Walk(root, walker.Options{
		Visit: ast.KindDeclaration,
		Enter: func(ctx *walker.Context, node ast.Node, _ walker.Item) walker.Action {
			decl, ok := node.(*ast.Declaration)
			require.True(t, ok)
			require.NotNil(t, ctx.Rule)
			require.NotNil(t, ctx.Block)

			properties = append(properties, decl.Property)

			return walker.Continue
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "width", "height"}, properties)

	assert.Equal(t, []string{"Rule", "Rule"}, kinds(t, root, walker.Options{Visit: ast.KindRule}))
	assert.Equal(t, []string{"Dimension", "Dimension"}, kinds(t, root, walker.Options{Visit: ast.KindDimension}))
}

func TestWalkContext(t *testing.T) {
	t.Parallel()

	root := parse(t, "@media print{a{width:calc(1px)}}")

	var seen *walker.Context

	err := walker.Walk(root, walker.Options{Enter: func(ctx *walker.Context, node ast.Node, _ walker.Item) walker.Action {
		if node.Kind() == ast.KindDimension {
			snapshot := *ctx
			seen = &snapshot
		}

		return walker.Continue
	}})
	require.NoError(t, err)
	require.NotNil(t, seen)

	assert.Equal(t, root, seen.Root)
	assert.Equal(t, root, seen.StyleSheet)
	assert.Equal(t, ast.KindAtrule, seen.Atrule.Kind())
	assert.Equal(t, ast.KindRule, seen.Rule.Kind())
	assert.Equal(t, ast.KindDeclaration, seen.Declaration.Kind())
	assert.Equal(t, ast.KindFunction, seen.Function.Kind())
	assert.Nil(t, seen.Selector)
}

func TestWalkErrors(t *testing.T) {
	t.Parallel()

	root := parse(t, "a{}")

	require.ErrorIs(t, walker.Walk(root, walker.Options{}), walker.ErrNoHandler)

	noop := func(*walker.Context, ast.Node, walker.Item) walker.Action { return walker.Continue }
	require.ErrorIs(t, walker.Walk(root, walker.Options{Enter: noop, Visit: ast.Kind(200)}), walker.ErrBadVisit)
}

func TestWalkRemove(t *testing.T) {
	t.Parallel()

	root := parse(t, "a{color:red;width:0;height:0}")

	err := walker.Walk(root, walker.Options{
		Visit: ast.KindDeclaration,
		Enter: func(_ *walker.Context, node ast.Node, item walker.Item) walker.Action {
			if decl, ok := node.(*ast.Declaration); ok && decl.Property == "width" {
				require.NoError(t, item.Remove())
			}

			return walker.Continue
		},
	})
	require.NoError(t, err)

	var remaining []string

	for _, node := range walker.FindAll(root, func(_ *walker.Context, node ast.Node, _ walker.Item) bool {
		return node.Kind() == ast.KindDeclaration
	}) {
		decl, ok := node.(*ast.Declaration)
		require.True(t, ok)

		remaining = append(remaining, decl.Property)
	}

	assert.Equal(t, []string{"color", "height"}, remaining)
	assert.ErrorIs(t, walker.Item{}.Remove(), list.ErrNotInList)
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := parse(t, ".a{}.b{}.c{}")

	isClass := func(_ *walker.Context, node ast.Node, _ walker.Item) bool {
		return node.Kind() == ast.KindClassSelector
	}

	assert.Equal(t, &ast.ClassSelector{Name: "a"}, walker.Find(root, isClass))
	assert.Equal(t, &ast.ClassSelector{Name: "c"}, walker.FindLast(root, isClass))
	assert.Len(t, walker.FindAll(root, isClass), 3)
	assert.Nil(t, walker.Find(root, func(*walker.Context, ast.Node, walker.Item) bool { return false }))
}
