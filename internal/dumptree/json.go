package dumptree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the node as plain JSON: leaves become strings, lists
// become arrays, and maps become objects with keys in insertion order.
// This is the caching contract: a parsed document serialized to a sidecar
// file must reload into a structurally identical tree.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	switch n.kind {
	case KindLeaf:
		return json.Marshal(n.leaf)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range n.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := n.children[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
}

// UnmarshalJSON decodes JSON into a node, preserving object key order.
// Non-string scalars (numbers, booleans, null) are stored as their literal
// text; the parser itself only ever produces string leaves, but sidecar
// files edited by other tools should still load.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	decoded, err := decodeNode(dec)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			return m, nil
		case '[':
			l := NewList()
			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				l.Append(child)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return l, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return NewLeaf(t), nil
	case json.Number:
		return NewLeaf(t.String()), nil
	case bool:
		if t {
			return NewLeaf("true"), nil
		}
		return NewLeaf("false"), nil
	case nil:
		return NewLeaf(""), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
