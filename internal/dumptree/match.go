package dumptree

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchKeys queries the tree with a "//"-delimited sequence of regular
// expressions, one per level. Each segment selects the keys of the current
// map (or of a list's first element) whose text matches at the start of
// the key. The result mirrors the tree's shape: intermediate levels are
// maps keyed by the matched key, and the final level is a list of matched
// key leaves.
//
// Reaching a leaf while segments remain yields an empty branch rather than
// an error, so queries stay robust against format drift between Android
// versions.
func MatchKeys(n *Node, pattern string) (*Node, error) {
	return MatchKeySegments(n, strings.Split(pattern, "//"))
}

// MatchKeySegments is MatchKeys with an explicit segment list
func MatchKeySegments(n *Node, segments []string) (*Node, error) {
	if len(segments) == 0 {
		return NewList(), nil
	}
	patterns := make([]*regexp.Regexp, len(segments))
	for i, seg := range segments {
		re, err := regexp.Compile(`\A(?:` + seg + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern segment %q: %w", seg, err)
		}
		patterns[i] = re
	}
	return matchSegments(n, patterns), nil
}

func matchSegments(n *Node, patterns []*regexp.Regexp) *Node {
	keys := matchOne(n, patterns[0])
	if len(patterns) == 1 {
		l := NewList()
		for _, k := range keys {
			l.Append(NewLeaf(k))
		}
		return l
	}

	result := NewMap()
	target := n.First()
	for _, k := range keys {
		child, ok := target.Get(k)
		if !ok {
			continue
		}
		switch child.Kind() {
		case KindMap, KindList:
			result.Set(k, matchSegments(child, patterns[1:]))
		default:
			// Leaf reached with segments remaining: dead branch.
			result.Set(k, NewMap())
		}
	}
	return result
}

// matchOne returns the keys of n (or of its first element when n is a
// list) that match the pattern
func matchOne(n *Node, re *regexp.Regexp) []string {
	m := n.First()
	if m.Kind() != KindMap {
		return nil
	}
	var keys []string
	for _, k := range m.Keys() {
		if re.MatchString(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// PruneEmptyLeaves removes every path of a match result that bottoms out
// in an empty branch. Lists are returned unchanged; they are already the
// terminal matched-key sets.
func PruneEmptyLeaves(n *Node) *Node {
	if n.Kind() != KindMap {
		return n
	}
	pruned := NewMap()
	for _, k := range n.Keys() {
		child, _ := n.Get(k)
		child = PruneEmptyLeaves(child)
		if !child.Empty() {
			pruned.Set(k, child)
		}
	}
	return pruned
}

// Extract co-walks a match result against the original tree and returns
// the values sitting under the matched keys. The match result only names
// keys; the data comes from the real document.
func Extract(data, matched *Node) []*Node {
	src := data.First()
	if src.Kind() != KindMap || matched == nil {
		return nil
	}
	switch matched.Kind() {
	case KindList:
		var out []*Node
		for _, e := range matched.Elems() {
			if child, ok := src.Get(e.Value()); ok {
				out = append(out, child)
			}
		}
		return out
	case KindMap:
		var out []*Node
		for _, k := range matched.Keys() {
			sub, _ := matched.Get(k)
			if child, ok := src.Get(k); ok {
				out = append(out, Extract(child, sub)...)
			}
		}
		return out
	default:
		return nil
	}
}
