package sets_test

import (
	"strings"
	"testing"

	"github.com/kestrelmods/resolver/pkg/sets"
)

func TestMakeSetDeduplicates(t *testing.T) {
	set := sets.MakeSet([]string{"a", "b", "a"})
	if len(set) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(set))
	}
	if _, ok := set["a"]; !ok {
		t.Error("expected \"a\" in set")
	}
	if _, ok := set["b"]; !ok {
		t.Error("expected \"b\" in set")
	}
}

func TestMakeSliceIsSorted(t *testing.T) {
	set := sets.MakeSet([]string{"banana", "apple", "cherry"})
	slice := sets.MakeSlice(set)
	if strings.Join(slice, ",") != "apple,banana,cherry" {
		t.Fatalf("got %v, want sorted order", slice)
	}
}

func TestMakeSliceEmpty(t *testing.T) {
	slice := sets.MakeSlice(sets.Set{})
	if len(slice) != 0 {
		t.Fatalf("expected empty slice, got %v", slice)
	}
}
