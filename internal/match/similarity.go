package match

// Similarity returns a bounded [0,1] similarity between two normalized
// strings using a longest-common-subsequence ratio over runes:
//
//	2 * LCS(a, b) / (len(a) + len(b))
//
// The measure is symmetric, returns 1.0 for identical non-empty strings,
// and decreases as the shared content shrinks. Two empty strings score 1.0
// by convention; one empty against one non-empty scores 0.0.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	ra, rb := []rune(a), []rune(b)
	l := lcsLength(ra, rb)
	return float64(2*l) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest common subsequence length with a two-row DP
// table, O(len(a)*len(b)) time and O(min side) space.
func lcsLength(a, b []rune) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
