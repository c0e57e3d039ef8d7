// Package walker traverses the CSS syntax tree in source order, driven by
// the per-kind structure tables of package ast.
package walker

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/list"
)

// Sentinel errors.
var (
	// ErrNoHandler is returned when neither Enter nor Leave is set.
	ErrNoHandler = errors.New("neither enter nor leave walker handler is set")
	// ErrBadVisit is returned for a Visit kind that does not exist.
	ErrBadVisit = errors.New("bad value for visit option")
)

// Action tells the walker how to proceed after a handler returns.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// Skip leaves the node's children unvisited. Returned from Enter it also
	// suppresses Leave for the node.
	Skip
	// Break stops the walk.
	Break
)

// Item locates a node inside its parent's child list. Nodes held by a plain
// field, and the root, have a zero Item.
type Item struct {
	List   *ast.List
	Handle list.Handle
}

// InList reports whether the node is a list member.
func (item Item) InList() bool {
	return item.List != nil && item.Handle != list.Nil
}

// Remove deletes the node from its parent list. The walk continues with the
// next sibling.
func (item Item) Remove() error {
	if !item.InList() {
		return list.ErrNotInList
	}

	_, err := item.List.Remove(item.Handle)

	return err
}

// Replace swaps the node for another one in the parent list. The
// replacement is not visited.
func (item Item) Replace(node ast.Node) error {
	if !item.InList() {
		return list.ErrNotInList
	}

	_, err := item.List.Replace(item.Handle, node)

	return err
}

// Context holds the closest enclosing node of each tracked kind. A field is
// set while the walker is inside that node's children.
type Context struct {
	Root          ast.Node
	StyleSheet    ast.Node
	Atrule        ast.Node
	AtrulePrelude ast.Node
	Rule          ast.Node
	Selector      ast.Node
	Block         ast.Node
	Declaration   ast.Node
	Function      ast.Node
}

func (ctx *Context) slot(name string) *ast.Node {
	switch name {
	case "stylesheet":
		return &ctx.StyleSheet
	case "atrule":
		return &ctx.Atrule
	case "atrulePrelude":
		return &ctx.AtrulePrelude
	case "rule":
		return &ctx.Rule
	case "selector":
		return &ctx.Selector
	case "block":
		return &ctx.Block
	case "declaration":
		return &ctx.Declaration
	case "function":
		return &ctx.Function
	default:
		return nil
	}
}

// Handler is called for each visited node.
type Handler func(ctx *Context, node ast.Node, item Item) Action

// Options configures a walk.
type Options struct {
	// Enter is called before a node's children are walked.
	Enter Handler
	// Leave is called after a node's children are walked.
	Leave Handler
	// Visit restricts the handlers to nodes of one kind. For Atrule, Rule
	// and Declaration the walker also avoids descending into subtrees that
	// cannot contain such nodes.
	Visit ast.Kind
	// Reverse walks children from last to first.
	Reverse bool
}

// containers lists the kinds worth descending into when looking for a
// particular kind.
var containers = map[ast.Kind][]ast.Kind{
	ast.KindAtrule:      {ast.KindStyleSheet, ast.KindAtrule, ast.KindRule, ast.KindBlock},
	ast.KindRule:        {ast.KindStyleSheet, ast.KindAtrule, ast.KindRule, ast.KindBlock},
	ast.KindDeclaration: {ast.KindStyleSheet, ast.KindAtrule, ast.KindRule, ast.KindBlock, ast.KindDeclarationList},
}

type walk struct {
	ctx     Context
	enter   Handler
	leave   Handler
	visit   ast.Kind
	reverse bool
	descend map[ast.Kind]bool
}

// Walk visits root and all of its descendants.
func Walk(root ast.Node, opts Options) error {
	if opts.Enter == nil && opts.Leave == nil {
		return ErrNoHandler
	}

	w := &walk{enter: opts.Enter, leave: opts.Leave, reverse: opts.Reverse}

	if opts.Visit != ast.KindInvalid {
		if _, ok := ast.KindByName(opts.Visit.String()); !ok {
			return fmt.Errorf("%w: %d", ErrBadVisit, opts.Visit)
		}

		w.visit = opts.Visit

		if kinds, ok := containers[opts.Visit]; ok {
			w.descend = make(map[ast.Kind]bool, len(kinds))
			for _, kind := range kinds {
				w.descend[kind] = true
			}
		}
	}

	if root == nil {
		return nil
	}

	w.ctx.Root = root
	w.node(root, Item{})

	return nil
}

func (w *walk) call(handler Handler, node ast.Node, item Item) Action {
	if handler == nil || (w.visit != ast.KindInvalid && node.Kind() != w.visit) {
		return Continue
	}

	return handler(&w.ctx, node, item)
}

// node walks one subtree and reports whether the walk was broken.
func (w *walk) node(node ast.Node, item Item) bool {
	switch w.call(w.enter, node, item) {
	case Break:
		return true
	case Skip:
		return false
	case Continue:
	}

	if w.children(node) {
		return true
	}

	return w.call(w.leave, node, item) == Break
}

func (w *walk) children(node ast.Node) bool {
	if w.descend != nil && !w.descend[node.Kind()] {
		return false
	}

	fields := ast.Fields(node)
	if w.reverse {
		for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
			fields[i], fields[j] = fields[j], fields[i]
		}
	}

	slot := w.ctx.slot(node.Kind().WalkContext())

	var saved ast.Node

	if slot != nil {
		saved = *slot
		*slot = node
	}

	for _, f := range fields {
		if !f.Spec().HoldsNodes() {
			continue
		}

		if f.Spec().List {
			if w.list(f.List()) {
				return true
			}

			continue
		}

		if child := f.Child(); child != nil && w.node(child, Item{}) {
			return true
		}
	}

	if slot != nil {
		*slot = saved
	}

	return false
}

func (w *walk) list(children *ast.List) bool {
	if children == nil {
		return false
	}

	broken := false
	visit := func(child ast.Node, handle list.Handle) bool {
		broken = w.node(child, Item{List: children, Handle: handle})

		return broken
	}

	if w.reverse {
		children.PrevUntil(children.Tail(), visit)
	} else {
		children.NextUntil(children.Head(), visit)
	}

	return broken
}

// Predicate selects nodes for the Find family.
type Predicate func(ctx *Context, node ast.Node, item Item) bool

// Find returns the first node in walk order matching fn, or nil.
func Find(root ast.Node, fn Predicate) ast.Node {
	var found ast.Node

	_ = Walk(root, Options{Enter: func(ctx *Context, node ast.Node, item Item) Action {
		if fn(ctx, node, item) {
			found = node

			return Break
		}

		return Continue
	}})

	return found
}

// FindLast returns the last node in walk order matching fn, or nil.
func FindLast(root ast.Node, fn Predicate) ast.Node {
	var found ast.Node

	_ = Walk(root, Options{Reverse: true, Enter: func(ctx *Context, node ast.Node, item Item) Action {
		if fn(ctx, node, item) {
			found = node

			return Break
		}

		return Continue
	}})

	return found
}

// FindAll returns every node matching fn in walk order.
func FindAll(root ast.Node, fn Predicate) []ast.Node {
	var found []ast.Node

	_ = Walk(root, Options{Enter: func(ctx *Context, node ast.Node, item Item) Action {
		if fn(ctx, node, item) {
			found = append(found, node)
		}

		return Continue
	}})

	return found
}
