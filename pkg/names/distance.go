// Copyright (c) 2015, Arbo von Monkiewitsch All rights reserved.
// Use of this source code is governed by a BSD-style
// license.

package names

// Distance returns the Levenshtein distance between two strings counted in
// code points: the minimum number of insertions, deletions and
// substitutions that turn one into the other.
func Distance(str1, str2 string) int {
	s1 := []rune(str1)
	s2 := []rune(str2)

	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}

	if len(s2) == 0 {
		return len(s1)
	}

	// One column of the edit matrix; column[0] is filled at the start of
	// each row before it is read.
	column := make([]int, len(s2)+1)
	for idx := range column {
		column[idx] = idx
	}

	for row, r1 := range s1 {
		lastDiag := column[0]
		column[0] = row + 1

		for col, r2 := range s2 {
			oldDiag := column[col+1]

			cost := 1
			if r1 == r2 {
				cost = 0
			}

			column[col+1] = min(column[col+1]+1, column[col]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len(s2)]
}
