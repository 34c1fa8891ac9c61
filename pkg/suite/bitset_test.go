package suite

import "testing"

func TestBitset(t *testing.T) {
	b := newBitset(130)
	if len(b) != 3 {
		t.Fatalf("len = %d, want 3 words", len(b))
	}

	for _, i := range []int{0, 63, 64, 129} {
		b.set(i)
	}
	for _, i := range []int{0, 63, 64, 129} {
		if !b.has(i) {
			t.Errorf("has(%d) = false, want true", i)
		}
	}
	if b.has(1) || b.has(128) {
		t.Error("has() reported an unset index")
	}
	if b.count() != 4 {
		t.Errorf("count() = %d, want 4", b.count())
	}
}

func TestBitsetSubset(t *testing.T) {
	small := newBitset(70)
	small.set(1)
	small.set(65)

	big := newBitset(70)
	big.set(1)
	big.set(2)
	big.set(65)

	equal := newBitset(70)
	equal.set(1)
	equal.set(65)

	tests := []struct {
		name       string
		a, b       bitset
		subset     bool
		strictSubs bool
	}{
		{"small in big", small, big, true, true},
		{"big in small", big, small, false, false},
		{"equal sets", small, equal, true, false},
		{"empty in small", newBitset(70), small, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.subsetOf(tt.b); got != tt.subset {
				t.Errorf("subsetOf() = %v, want %v", got, tt.subset)
			}
			if got := tt.a.strictSubsetOf(tt.b); got != tt.strictSubs {
				t.Errorf("strictSubsetOf() = %v, want %v", got, tt.strictSubs)
			}
		})
	}
}
