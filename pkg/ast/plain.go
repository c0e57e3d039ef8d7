package ast

import (
	"errors"
	"fmt"
)

// Conversion errors.
var (
	ErrUnknownType = errors.New("unknown node type")
	ErrBadPlain    = errors.New("bad plain node")
)

// ToPlain converts a node to a tree of maps and slices suitable for JSON
// encoding. Lists become slices; nullable fields that are absent become nil.
func ToPlain(node Node) map[string]any {
	if node == nil {
		return nil
	}

	plain := map[string]any{"type": node.Kind().String()}

	if loc := node.Location(); loc != nil {
		plain["loc"] = locationToPlain(loc)
	}

	for _, f := range node.fields() {
		plain[f.spec.Name] = fieldToPlain(f)
	}

	return plain
}

func fieldToPlain(f field) any {
	switch {
	case f.spec.Boolean:
		switch *f.text {
		case "":
			return false
		case ImportantFlag:
			return true
		default:
			return *f.text
		}
	case f.text != nil:
		if f.spec.Nullable && *f.text == "" {
			return nil
		}

		return *f.text
	case f.list != nil:
		if *f.list == nil {
			return nil
		}

		items := make([]any, 0, (*f.list).Len())
		for child := range (*f.list).All() {
			items = append(items, ToPlain(child))
		}

		return items
	default:
		child := f.get()
		if child == nil {
			return nil
		}

		return ToPlain(child)
	}
}

func locationToPlain(loc *Location) map[string]any {
	position := func(pos Position) map[string]any {
		return map[string]any{"offset": pos.Offset, "line": pos.Line, "column": pos.Column}
	}

	return map[string]any{
		"source": loc.Source,
		"start":  position(loc.Start),
		"end":    position(loc.End),
	}
}

// FromPlain builds a node from the output of ToPlain or its JSON decoding.
func FromPlain(plain map[string]any) (Node, error) {
	typeName, _ := plain["type"].(string)

	kind, ok := KindByName(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}

	node := New(kind)

	if rawLoc, present := plain["loc"]; present && rawLoc != nil {
		loc, err := locationFromPlain(rawLoc)
		if err != nil {
			return nil, fmt.Errorf("%s.loc: %w", typeName, err)
		}

		node.SetLocation(loc)
	}

	for _, f := range node.fields() {
		err := fieldFromPlain(f, plain[f.spec.Name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, f.spec.Name, err)
		}
	}

	return node, nil
}

//nolint:gocognit,cyclop // one branch per field shape.
func fieldFromPlain(f field, value any) error {
	switch {
	case f.spec.Boolean:
		switch typed := value.(type) {
		case nil:
			*f.text = ""
		case bool:
			*f.text = ""
			if typed {
				*f.text = ImportantFlag
			}
		case string:
			*f.text = typed
		default:
			return fmt.Errorf("%w: %T", ErrBadPlain, value)
		}
	case f.text != nil:
		switch typed := value.(type) {
		case nil:
			*f.text = ""
		case string:
			*f.text = typed
		default:
			return fmt.Errorf("%w: %T", ErrBadPlain, value)
		}
	case f.list != nil:
		if value == nil {
			if f.spec.Nullable {
				*f.list = nil
			}

			return nil
		}

		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%w: %T", ErrBadPlain, value)
		}

		children := NewList()

		for _, item := range items {
			itemMap, isMap := item.(map[string]any)
			if !isMap {
				return fmt.Errorf("%w: list item %T", ErrBadPlain, item)
			}

			child, err := FromPlain(itemMap)
			if err != nil {
				return err
			}

			children.Push(child)
		}

		*f.list = children
	default:
		if value == nil {
			f.set(nil)

			return nil
		}

		childMap, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %T", ErrBadPlain, value)
		}

		child, err := FromPlain(childMap)
		if err != nil {
			return err
		}

		if !f.set(child) {
			return fmt.Errorf("%w: %s", ErrBadFieldValue, child.Kind())
		}
	}

	return nil
}

func locationFromPlain(value any) (*Location, error) {
	plain, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrBadPlain, value)
	}

	loc := &Location{}
	loc.Source, _ = plain["source"].(string)

	var err error

	loc.Start, err = positionFromPlain(plain["start"])
	if err != nil {
		return nil, err
	}

	loc.End, err = positionFromPlain(plain["end"])
	if err != nil {
		return nil, err
	}

	return loc, nil
}

func positionFromPlain(value any) (Position, error) {
	plain, ok := value.(map[string]any)
	if !ok {
		return Position{}, fmt.Errorf("%w: position %T", ErrBadPlain, value)
	}

	var pos Position

	for _, part := range []struct {
		name string
		dst  *int
	}{
		{"offset", &pos.Offset},
		{"line", &pos.Line},
		{"column", &pos.Column},
	} {
		switch num := plain[part.name].(type) {
		case int:
			*part.dst = num
		case float64:
			*part.dst = int(num)
		default:
			return Position{}, fmt.Errorf("%w: %s %T", ErrBadPlain, part.name, plain[part.name])
		}
	}

	return pos, nil
}

// Clone returns a deep copy of node. Locations are shared.
func Clone(node Node) Node {
	if node == nil {
		return nil
	}

	clone := New(node.Kind())
	clone.SetLocation(node.Location())

	src := node.fields()
	dst := clone.fields()

	for idx, f := range src {
		switch {
		case f.text != nil:
			*dst[idx].text = *f.text
		case f.list != nil:
			if *f.list == nil {
				*dst[idx].list = nil

				continue
			}

			children := NewList()
			for child := range (*f.list).All() {
				children.Push(Clone(child))
			}

			*dst[idx].list = children
		default:
			dst[idx].set(Clone(f.get()))
		}
	}

	return clone
}
