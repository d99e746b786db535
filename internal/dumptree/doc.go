// Package dumptree parses indentation-structured diagnostic dumps into a
// generic tree of nested values and provides pattern-based queries over it.
//
// Android service dumps (dumpsys output) are semi-structured text: nesting
// is expressed purely through leading whitespace, headers may or may not
// carry a trailing colon, and individual sections are frequently truncated
// or malformed. This package recovers as much structure as possible without
// ever failing the whole document.
//
// # The Node type
//
// A Node is a tagged union of three shapes:
//   - Leaf: a plain string value
//   - List: an ordered sequence of child nodes
//   - Map: an ordered mapping from string keys to child nodes
//
// Maps preserve insertion order, which matters because the tree is cached
// as JSON and must round-trip exactly. Writing a key that already exists
// replaces the value but keeps the key's original position.
//
// # Parsing
//
//	node := dumptree.Parse(lines)
//
// Parse never fails. It first attempts a full parse; when the input is
// malformed it binary-searches for the longest parseable prefix and stores
// the remaining raw lines under the "UNPARSED" key, so a corrupted tail
// never discards the valid head of a section.
//
// # Queries
//
// MatchKeys walks the tree level by level with one regular expression per
// level, tolerating list-versus-map ambiguity at each step:
//
//	m, err := dumptree.MatchKeys(doc, `^batterystats$//^Statistics since last charge$//^Uid u0a12:.*`)
//	values := dumptree.Extract(doc, dumptree.PruneEmptyLeaves(m))
//
// Leaves flattens every string leaf under a node, in document order.
package dumptree
