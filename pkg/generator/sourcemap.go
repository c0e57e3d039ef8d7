package generator

import (
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/sourcemap"
)

const unknownSource = "<unknown>"

func mapped(kind ast.Kind) bool {
	return kind == ast.KindAtrule || kind == ast.KindSelector || kind == ast.KindDeclaration
}

// mapTracker follows the generated position and records a mapping at the
// start of every mapped node. After a mapped node ends, the next mapped
// node starts with an unmapped segment so text in between is not
// attributed to the previous source range.
type mapTracker struct {
	gen       *sourcemap.Generator
	line      int
	column    int
	original  sourcemap.Position
	closing   sourcemap.Position
	activated bool
	err       error
}

func newMapTracker(gen *sourcemap.Generator) *mapTracker {
	return &mapTracker{
		gen:     gen,
		line:    1,
		closing: sourcemap.Position{Line: 1},
	}
}

func (tracker *mapTracker) add(mapping sourcemap.Mapping) {
	if err := tracker.gen.AddMapping(mapping); err != nil && tracker.err == nil {
		tracker.err = err
	}
}

func (tracker *mapTracker) enter(node ast.Node) {
	loc := node.Location()
	if loc == nil || !mapped(node.Kind()) {
		return
	}

	original := sourcemap.Position{Line: loc.Start.Line, Column: loc.Start.Column - 1}
	if original == tracker.original {
		return
	}

	tracker.original = original
	generated := sourcemap.Position{Line: tracker.line, Column: tracker.column}

	if tracker.activated {
		tracker.activated = false

		if generated != tracker.closing {
			tracker.add(sourcemap.Mapping{Generated: tracker.closing})
		}
	}

	tracker.activated = true

	source := loc.Source
	if source == "" {
		source = unknownSource
	}

	tracker.add(sourcemap.Mapping{Generated: generated, Original: &original, Source: source})
}

func (tracker *mapTracker) leave(node ast.Node) {
	if tracker.activated && mapped(node.Kind()) {
		tracker.closing = sourcemap.Position{Line: tracker.line, Column: tracker.column}
	}
}

func (tracker *mapTracker) advance(chunk string) {
	for _, char := range chunk {
		if char == '\n' {
			tracker.line++
			tracker.column = 0

			continue
		}

		tracker.column++
	}
}

func (tracker *mapTracker) finish() {
	if tracker.activated {
		tracker.add(sourcemap.Mapping{Generated: tracker.closing})
	}
}
