package names

import (
	"slices"
	"strings"
)

// DefaultSuggestDistance is the edit distance Suggest accepts by default.
const DefaultSuggestDistance = 2

// Suggest returns the candidates within maxDistance edits of name, closest
// first and alphabetical among equals. The comparison ignores ASCII case.
func Suggest(name string, candidates []string, maxDistance int) []string {
	if maxDistance <= 0 {
		maxDistance = DefaultSuggestDistance
	}

	type scored struct {
		name     string
		distance int
	}

	needle := strings.ToLower(name)

	var matches []scored

	for _, candidate := range candidates {
		distance := Distance(needle, strings.ToLower(candidate))
		if distance <= maxDistance && distance > 0 {
			matches = append(matches, scored{name: candidate, distance: distance})
		}
	}

	slices.SortFunc(matches, func(left, right scored) int {
		if left.distance != right.distance {
			return left.distance - right.distance
		}

		return strings.Compare(left.name, right.name)
	})

	result := make([]string, len(matches))
	for idx, match := range matches {
		result[idx] = match.name
	}

	return result
}
