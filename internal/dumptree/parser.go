package dumptree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// maxDepth caps nesting for one section. Real dumpsys output stays
	// well below this; blowing the cap means the indentation is garbage
	// and the robust wrapper should take over.
	maxDepth = 20

	// tabWidth matches the tab rendering of the tool that produced the
	// dump. Android's service dumps mix tabs and spaces, and 5 columns
	// is what keeps sibling lines at equal depth.
	tabWidth = 5
)

// errTooDeep signals nesting beyond maxDepth levels
var errTooDeep = errors.New("dumptree: nesting exceeds depth limit")

// parseLines builds the raw tree for one block of text. Nesting is inferred
// from leading whitespace: a line indented at least two columns further than
// the previous one opens a level keyed by that previous line's text, and a
// two-column decrease pops back out. Blank lines are skipped.
//
// The returned tree is normalized with pruneEmptyKeys. Errors indicate
// input the indentation model cannot represent; callers should fall back
// to Parse, which never fails.
func parseLines(lines []string) (*Node, error) {
	root := NewMap()
	indents := []int{0}
	levels := make([]string, maxDepth)
	level := 0

	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line := strings.ReplaceAll(raw, "\t", strings.Repeat(" ", tabWidth))
		indent := leadingSpaces(line)

		if indent >= indents[len(indents)-1]+2 {
			level++
			indents = append(indents, indent)
		}
		for len(indents) > 0 && indents[len(indents)-1] > 0 && indent <= indents[len(indents)-1]-2 {
			level--
			indents = indents[:len(indents)-1]
		}
		if len(indents) == 0 || level < 0 {
			return nil, fmt.Errorf("dumptree: indent stack underflow at %q", raw)
		}
		if indents[len(indents)-1] > 0 {
			indents[len(indents)-1] = indent
		}
		if level >= maxDepth {
			return nil, errTooDeep
		}

		cur := nodeAt(root, levels[:level])
		key := strings.TrimRight(strings.TrimSpace(line), ":")
		levels[level] = key
		cur.Set(key, NewMap())
	}

	return pruneEmptyKeys(root), nil
}

// leadingSpaces returns the column of the first non-space character
func leadingSpaces(line string) int {
	for i, r := range line {
		if r != ' ' {
			return i
		}
	}
	return len(line)
}

// nodeAt walks the map path given by keys, creating missing levels. A level
// that was already collapsed to a non-map is replaced with a fresh map.
func nodeAt(root *Node, keys []string) *Node {
	cur := root
	for _, k := range keys {
		child, ok := cur.Get(k)
		if !ok || child.Kind() != KindMap {
			child = NewMap()
			cur.Set(k, child)
		}
		cur = child
	}
	return cur
}

// pruneEmptyKeys normalizes a freshly built tree:
//
//   - a map whose values are all empty collapses to a list of its keys,
//     recovering bullet lists of value-less items;
//   - a "name=value" key with an empty child flattens to {name: value},
//     recovering Android's inline equals-delimited settings. The flattened
//     name wins over an existing sibling of the same name (last write).
//
// The pass is idempotent: running it on an already-normalized tree returns
// an equal tree.
func pruneEmptyKeys(n *Node) *Node {
	if n.Kind() != KindMap {
		return n
	}
	allEmpty := true
	for _, k := range n.Keys() {
		if child, _ := n.Get(k); !child.Empty() {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		l := NewList()
		for _, k := range n.Keys() {
			l.Append(NewLeaf(k))
		}
		return l
	}

	var flatten []string
	for _, k := range n.Keys() {
		child, _ := n.Get(k)
		if _, _, ok := splitPair(k); ok && child.Empty() {
			flatten = append(flatten, k)
			continue
		}
		n.Set(k, pruneEmptyKeys(child))
	}
	for _, k := range flatten {
		name, value, _ := splitPair(k)
		n.Delete(k)
		n.Set(name, NewLeaf(value))
	}
	return n
}

// splitPair recognizes keys of the exact shape "name=value"
func splitPair(key string) (name, value string, ok bool) {
	if strings.Count(key, "=") != 1 {
		return "", "", false
	}
	i := strings.Index(key, "=")
	return key[:i], key[i+1:], true
}
