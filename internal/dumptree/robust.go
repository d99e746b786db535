package dumptree

// UnparsedKey is the sentinel key holding raw lines that could not be
// parsed. Concatenating its value back onto the parsed prefix reconstructs
// a suffix of the original input, so nothing is silently lost.
const UnparsedKey = "UNPARSED"

// Parse parses a block of dump text and never fails. When the full input
// parses, the result is returned directly. Otherwise Parse binary-searches
// for the longest prefix of the line list that parses cleanly and stores
// the remaining raw lines under UnparsedKey.
//
// The bisection assumes parseability is monotonic in line count. That is
// not strictly true (a later line could close a broken level), but it is
// the pragmatic behavior for real dumps, where failures come from a
// truncated or corrupted tail.
func Parse(lines []string) *Node {
	node, err := parseLines(lines)
	if err == nil {
		return node
	}

	n := longestValidPrefix(lines, 0, len(lines)) - 1
	if n < 0 {
		n = 0
	}
	node, err = parseLines(lines[:n])
	if err != nil {
		// Even the empty prefix failed; keep everything raw.
		node = NewMap()
		node.Set(UnparsedKey, rawLines(lines))
		return node
	}

	rest := rawLines(lines[n:])
	if node.Kind() == KindList {
		wrapper := NewMap()
		wrapper.Set(UnparsedKey, rest)
		node.Append(wrapper)
		return node
	}
	if node.Kind() != KindMap {
		wrapper := NewMap()
		wrapper.Set(UnparsedKey, rest)
		return wrapper
	}
	node.Set(UnparsedKey, rest)
	return node
}

// longestValidPrefix bisects over [s, e) for the first prefix length whose
// parse fails, returning that boundary.
func longestValidPrefix(lines []string, s, e int) int {
	if s == e {
		return s
	}
	mid := (s + e) / 2
	if _, err := parseLines(lines[:mid]); err == nil {
		return longestValidPrefix(lines, mid+1, e)
	}
	return longestValidPrefix(lines, s, mid)
}

func rawLines(lines []string) *Node {
	l := NewList()
	for _, line := range lines {
		l.Append(NewLeaf(line))
	}
	return l
}
