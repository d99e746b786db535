package dumptree

import (
	"reflect"
	"sort"
	"testing"
)

// fixture builds the nested document
// {"a": {"bc1": {"cd11": ["1","3"]}, "bc2": {"cd21": ["2"]}}, "aa": {}}
func fixture() *Node {
	cd11 := NewList(NewLeaf("1"), NewLeaf("3"))
	cd21 := NewList(NewLeaf("2"))
	bc1 := NewMap()
	bc1.Set("cd11", cd11)
	bc2 := NewMap()
	bc2.Set("cd21", cd21)
	a := NewMap()
	a.Set("bc1", bc1)
	a.Set("bc2", bc2)
	doc := NewMap()
	doc.Set("a", a)
	doc.Set("aa", NewMap())
	return doc
}

func TestMatchKeysSingleSegment(t *testing.T) {
	doc := fixture()

	tests := []struct {
		pattern string
		want    []string
	}{
		{"^a$", []string{"a"}},
		{"a", []string{"a", "aa"}}, // start-anchored, not end-anchored
		{"^x", nil},
		{".*", []string{"a", "aa"}},
	}
	for _, tt := range tests {
		m, err := MatchKeys(doc, tt.pattern)
		if err != nil {
			t.Fatalf("MatchKeys(%q) error = %v", tt.pattern, err)
		}
		if got := Leaves(m); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MatchKeys(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestMatchExtractComposition(t *testing.T) {
	doc := fixture()

	m, err := MatchKeys(doc, "^a$//^b.*$//^.*d11$")
	if err != nil {
		t.Fatalf("MatchKeys() error = %v", err)
	}
	values := Extract(doc, PruneEmptyLeaves(m))
	if len(values) != 1 {
		t.Fatalf("Extract() returned %d values, want 1", len(values))
	}
	if got := Leaves(values[0]); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("extracted leaves = %v, want [1 3]", got)
	}
}

func TestMatchKeysLeafMidPathIsGraceful(t *testing.T) {
	doc := NewMap()
	doc.Set("top", NewLeaf("scalar"))

	m, err := MatchKeys(doc, "^top$//^deeper$")
	if err != nil {
		t.Fatalf("MatchKeys() error = %v", err)
	}
	if got := Leaves(PruneEmptyLeaves(m)); len(got) != 0 {
		t.Errorf("expected empty result through a leaf, got %v", got)
	}
}

func TestMatchKeysListUsesFirstElement(t *testing.T) {
	rec := NewMap()
	rec.Set("field", NewLeaf("v"))
	doc := NewMap()
	doc.Set("section", NewList(rec))

	m, err := MatchKeys(doc, "^section$//^field$")
	if err != nil {
		t.Fatalf("MatchKeys() error = %v", err)
	}
	if got := Leaves(m); !reflect.DeepEqual(got, []string{"field"}) {
		t.Errorf("leaves = %v, want [field]", got)
	}
}

func TestMatchKeysBadPattern(t *testing.T) {
	if _, err := MatchKeys(fixture(), "("); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestLeavesFlattening(t *testing.T) {
	got := Leaves(fixture())
	sort.Strings(got)
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Leaves() = %v, want %v", got, want)
	}
}
