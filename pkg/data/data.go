// Package data embeds the default CSS syntax dictionary: generic flag,
// dimension units, and the value syntaxes of types, properties and
// at-rules.
package data

import (
	_ "embed"
)

//go:embed syntax.json
var syntaxJSON []byte

// SyntaxJSON returns the raw dictionary document. The slice is shared and
// must not be modified.
func SyntaxJSON() []byte {
	return syntaxJSON
}
