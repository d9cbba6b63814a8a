// Package textmatch implements Ratcliff/Obershelp sequence similarity,
// used to warn about near-duplicate event names.
package textmatch

import "strings"

// Ratio returns the similarity of two strings in [0, 1]. Comparison is
// case-insensitive. Identical strings score 1, disjoint strings score 0.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if len(a)+len(b) == 0 {
		return 1
	}
	matches := matchingBlocks([]rune(a), []rune(b))
	return 2 * float64(matches) / float64(len([]rune(a))+len([]rune(b)))
}

// matchingBlocks counts matched runes by recursively taking the longest
// common substring and matching the pieces to its left and right.
func matchingBlocks(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocks(a[:ai], b[:bi])
	total += matchingBlocks(a[ai+size:], b[bi+size:])
	return total
}

func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	// lengths[j] holds the match length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}
