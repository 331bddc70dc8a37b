package correlate

// Match reports whether s matches pattern under glob semantics: '*' matches
// any run of characters (including none), '?' matches exactly one character,
// and the match is anchored over the full string. Both sides are compared
// rune-wise, so '?' consumes one character even when it is multi-byte.
// Backtracks to the most recent '*' on mismatch, so patterns with several
// wildcards stay linear in practice.
func Match(pattern, s string) bool {
	p := []rune(pattern)
	in := []rune(s)
	pi, si := 0, 0
	star, mark := -1, 0

	for si < len(in) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == in[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
