// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package meta

// matchRatio computes a similarity ratio in [0,1] between two strings:
// twice the total length of matching blocks divided by the combined
// length. Matching blocks are found by locating the longest common
// substring and recursing on the unmatched portions either side, which
// makes the measure robust to insertions and reorderings without the
// full cost of edit distance.
func matchRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := matchingBlockLen([]rune(a), []rune(b))
	return 2.0 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

func matchingBlockLen(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlockLen(a[:ai], b[:bi])
	total += matchingBlockLen(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonSubstring returns the start offsets and length of the
// longest run of runes common to a and b, using a rolling single-row
// dynamic program.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return ai, bi, size
}
