package dumptree

// Kind identifies the shape of a Node.
type Kind int

const (
	// KindLeaf is a plain string value
	KindLeaf Kind = iota
	// KindList is an ordered sequence of nodes
	KindList
	// KindMap is an ordered string-keyed mapping of nodes
	KindMap
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Node is one value in a parsed dump tree: a string leaf, a list, or an
// ordered map. The zero value is an empty leaf.
type Node struct {
	kind     Kind
	leaf     string
	elems    []*Node
	keys     []string
	children map[string]*Node
}

// NewLeaf creates a leaf node holding the given string
func NewLeaf(value string) *Node {
	return &Node{kind: KindLeaf, leaf: value}
}

// NewList creates a list node with the given elements
func NewList(elems ...*Node) *Node {
	return &Node{kind: KindList, elems: elems}
}

// NewMap creates an empty ordered-map node
func NewMap() *Node {
	return &Node{kind: KindMap, children: make(map[string]*Node)}
}

// Kind returns the shape of the node
func (n *Node) Kind() Kind {
	if n == nil {
		return KindLeaf
	}
	return n.kind
}

// Value returns the string held by a leaf node ("" for lists and maps)
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.leaf
}

// Elems returns the elements of a list node (nil for other kinds)
func (n *Node) Elems() []*Node {
	if n == nil {
		return nil
	}
	return n.elems
}

// Append adds an element to the end of a list node. It is a no-op for
// other kinds.
func (n *Node) Append(child *Node) {
	if n == nil || n.kind != KindList {
		return
	}
	n.elems = append(n.elems, child)
}

// Keys returns the keys of a map node in insertion order (nil otherwise)
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return n.keys
}

// Get looks up a key in a map node
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindMap {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Child looks up a key in a map node, returning nil when absent. When the
// node is a list, the lookup is performed against its first element; dump
// sections sometimes arrive as a single-record list.
func (n *Node) Child(key string) *Node {
	m := n.First()
	child, _ := m.Get(key)
	return child
}

// Set stores key→child in a map node, preserving the key's original
// position when it already exists (later duplicate headers overwrite).
// It is a no-op for other kinds.
func (n *Node) Set(key string, child *Node) {
	if n == nil || n.kind != KindMap {
		return
	}
	if _, exists := n.children[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// Delete removes a key from a map node
func (n *Node) Delete(key string) {
	if n == nil || n.kind != KindMap {
		return
	}
	if _, exists := n.children[key]; !exists {
		return
	}
	delete(n.children, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of elements (list), keys (map), or bytes (leaf)
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindList:
		return len(n.elems)
	case KindMap:
		return len(n.keys)
	default:
		return len(n.leaf)
	}
}

// Empty reports whether the node holds nothing: an empty string, an empty
// list, or a map with no keys. A nil node is empty.
func (n *Node) Empty() bool {
	return n.Len() == 0
}

// First returns the node itself, or its first element when the node is a
// list. Dump sections occasionally parse as a one-record list, and callers
// that expect a map use the first record as the representative one.
func (n *Node) First() *Node {
	if n == nil {
		return nil
	}
	if n.kind == KindList {
		if len(n.elems) == 0 {
			return nil
		}
		return n.elems[0]
	}
	return n
}

// Equal reports whether two nodes have identical shape and content,
// including map key order.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a.Empty() && b.Empty()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindLeaf:
		return a.leaf == b.leaf
	case KindList:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	default:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if b.keys[i] != k {
				return false
			}
			if !Equal(a.children[k], b.children[k]) {
				return false
			}
		}
		return true
	}
}

// Leaves returns every string leaf reachable from n, flattening lists and
// maps in document order.
func Leaves(n *Node) []string {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindLeaf:
		return []string{n.leaf}
	case KindList:
		var out []string
		for _, e := range n.elems {
			out = append(out, Leaves(e)...)
		}
		return out
	default:
		var out []string
		for _, k := range n.keys {
			out = append(out, Leaves(n.children[k])...)
		}
		return out
	}
}
