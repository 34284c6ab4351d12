package attr

import "testing"

func TestBagSetGetDelete(t *testing.T) {
	var b Bag
	if b.Len() != 0 {
		t.Fatalf("zero bag must be empty")
	}
	b.Set("licensee_name", "Example Broadcasting LLC")
	got, ok := b.Get("licensee_name")
	if !ok || got != "Example Broadcasting LLC" {
		t.Fatalf("get: %q %v", got, ok)
	}
	b.Delete("licensee_name")
	if b.Has("licensee_name") {
		t.Fatalf("delete did not remove the key")
	}
}

func TestBagEmptyValueDistinctFromAbsent(t *testing.T) {
	var b Bag
	b.Set("flag", "")
	if !b.Has("flag") {
		t.Fatalf("empty-valued key must be present")
	}
	got, ok := b.Get("flag")
	if !ok || got != "" {
		t.Fatalf("get empty value: %q %v", got, ok)
	}
	if _, ok := b.Get("missing"); ok {
		t.Fatalf("absent key reported present")
	}
}

func TestBagCopyIsolation(t *testing.T) {
	var b Bag
	b.Set("a", "1")
	cp := b.Copy()
	cp.Set("a", "2")
	cp.Set("b", "3")
	if got, _ := b.Get("a"); got != "1" {
		t.Fatalf("copy mutation leaked into the original")
	}
	if b.Has("b") {
		t.Fatalf("copy addition leaked into the original")
	}
}

func TestBagEncodeDecodeRoundTrip(t *testing.T) {
	var b Bag
	b.Set("licensee_name", "A & B Broadcasting, Inc.")
	b.Set("is_baseline", "true")
	b.Set("note", "")

	back, err := Decode(b.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Equal(b) {
		t.Fatalf("round trip lost data: %q vs %q", back.Encode(), b.Encode())
	}
}

func TestDecodeEmptyString(t *testing.T) {
	b, err := Decode("")
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("empty encoding must decode to an empty bag")
	}
}

func TestBagEqual(t *testing.T) {
	var a, b Bag
	if !a.Equal(b) {
		t.Fatalf("two empty bags must be equal")
	}
	a.Set("k", "v")
	if a.Equal(b) {
		t.Fatalf("bags with different keys compared equal")
	}
	b.Set("k", "v")
	if !a.Equal(b) {
		t.Fatalf("identical bags compared unequal")
	}
	b.Set("k", "")
	if a.Equal(b) {
		t.Fatalf("empty value must differ from a set value")
	}
}

func TestKeysSorted(t *testing.T) {
	var b Bag
	for _, k := range []string{"zebra", "alpha", "mid"} {
		b.Set(k, "x")
	}
	keys := b.Keys()
	want := []string{"alpha", "mid", "zebra"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
