package genrematch

// Ratio scores the similarity of a and b in [0, 1] as 2*M/T, where M is the
// number of runes in matching blocks found by recursive longest-common-substring
// search and T is the total length of both strings.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestMatch finds the longest common block; ties go to the earliest start in a, then in b.
func longestMatch(a, b []rune) (int, int, int) {
	best, bestI, bestJ := 0, 0, 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > best {
				best = cur[j]
				bestI = i - best
				bestJ = j - best
			}
		}
		prev = cur
	}
	return bestI, bestJ, best
}
