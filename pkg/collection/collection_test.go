package collection_test

import (
	"strconv"
	"testing"

	"github.com/shashiranjanraj/campusmart/pkg/collection"
)

func TestMap(t *testing.T) {
	got := collection.Map([]int{1, 2, 3}, strconv.Itoa)
	want := []string{"1", "2", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Map[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterReject(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }

	if got := collection.Filter([]int{1, 2, 3, 4}, even); len(got) != 2 {
		t.Fatalf("Filter returned %v", got)
	}
	if got := collection.Reject([]int{1, 2, 3, 4}, even); len(got) != 2 || got[0] != 1 {
		t.Fatalf("Reject returned %v", got)
	}
}

func TestFirstContains(t *testing.T) {
	v, ok := collection.First([]int{5, 6, 7}, func(n int) bool { return n > 5 })
	if !ok || v != 6 {
		t.Fatalf("First = (%d, %v)", v, ok)
	}
	if _, ok := collection.First([]int{5}, func(n int) bool { return n > 5 }); ok {
		t.Fatal("First matched nothing but reported ok")
	}
	if !collection.Contains([]int{5, 6}, func(n int) bool { return n == 6 }) {
		t.Fatal("Contains missed an element")
	}
}

func TestUnique(t *testing.T) {
	got := collection.Unique([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Unique returned %v", got)
	}
}

func TestKeyBy(t *testing.T) {
	type item struct{ ID, Name string }
	got := collection.KeyBy([]item{{"1", "a"}, {"2", "b"}, {"1", "c"}}, func(i item) string { return i.ID })
	if len(got) != 2 {
		t.Fatalf("KeyBy returned %d keys", len(got))
	}
	if got["1"].Name != "c" {
		t.Fatalf("KeyBy last-write-wins violated: %v", got["1"])
	}
}

func TestSum(t *testing.T) {
	total := collection.Sum([]int{1, 2, 3}, func(n int) float64 { return float64(n) * 10 })
	if total != 60 {
		t.Fatalf("Sum = %v", total)
	}
	if collection.Sum(nil, func(n int) float64 { return 1 }) != 0 {
		t.Fatal("Sum of empty slice should be 0")
	}
}
