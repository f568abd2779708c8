package fortytwo

import (
	"errors"
	"slices"
	"testing"
)

func sortDominoes(ds Dominoes) Dominoes {
	out := ds.Clone()
	slices.SortFunc(out, func(a, b Domino) int {
		if a.High != b.High {
			return int(a.High) - int(b.High)
		}
		return int(a.Low) - int(b.Low)
	})
	return out
}

func TestNewDomino(t *testing.T) {
	tests := []struct {
		name    string
		high    int
		low     int
		wantErr bool
	}{
		{"double blank", 0, 0, false},
		{"six four", 6, 4, false},
		{"double six", 6, 6, false},
		{"pip too high", 7, 0, true},
		{"negative pip", 3, -1, true},
		{"low above high", 2, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDomino(tt.high, tt.low)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDomino) {
					t.Fatalf("NewDomino(%d, %d) error = %v, want ErrInvalidDomino", tt.high, tt.low, err)
				}
				if KindOf(err) != KindConstruction {
					t.Errorf("KindOf() = %v, want %v", KindOf(err), KindConstruction)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDomino(%d, %d) unexpected error: %v", tt.high, tt.low, err)
			}
			if int(d.High) != tt.high || int(d.Low) != tt.low {
				t.Errorf("NewDomino() = %v", d)
			}
		})
	}
}

func TestDomino_PointValue(t *testing.T) {
	want := map[Domino]int{
		{5, 0}: 5,
		{4, 1}: 5,
		{3, 2}: 5,
		{6, 4}: 10,
		{5, 5}: 10,
	}

	total, counts := 0, 0
	for _, d := range FullSet() {
		if got := d.PointValue(); got != want[d] {
			t.Errorf("%v.PointValue() = %d, want %d", d, got, want[d])
		}
		if d.IsCount() != (want[d] > 0) {
			t.Errorf("%v.IsCount() = %v", d, d.IsCount())
		}
		total += d.PointValue()
		if d.IsCount() {
			counts++
		}
	}
	if total != CountTotal {
		t.Errorf("total points = %d, want %d", total, CountTotal)
	}
	if counts != 5 {
		t.Errorf("count dominoes = %d, want 5", counts)
	}
}

func TestFullSet(t *testing.T) {
	set := FullSet()
	if len(set) != 28 {
		t.Fatalf("expected 28 dominoes, got %d", len(set))
	}

	seen := make(map[Domino]bool)
	for _, d := range set {
		if !d.Valid() {
			t.Errorf("invalid domino %v", d)
		}
		if seen[d] {
			t.Errorf("duplicate domino %v", d)
		}
		seen[d] = true
	}

	if set[0] != (Domino{0, 0}) || set[27] != (Domino{6, 6}) {
		t.Errorf("unexpected canonical order: first %v, last %v", set[0], set[27])
	}

	// 每次调用都是独立的切片
	other := FullSet()
	other[0] = Domino{6, 6}
	if set[0] != (Domino{0, 0}) {
		t.Error("FullSet results must not alias")
	}
}

func TestShuffled(t *testing.T) {
	a := Shuffled(42)
	b := Shuffled(42)
	if !slices.Equal(a, b) {
		t.Error("same seed should produce the same order")
	}
	if slices.Equal(a, Shuffled(43)) {
		t.Error("different seeds should produce different orders")
	}
	if !slices.Equal(sortDominoes(a), FullSet()) {
		t.Error("shuffle must be a permutation of the full set")
	}
}

func TestDominoes_Shuffle(t *testing.T) {
	ds := FullSet()
	ds.Shuffle(nil)
	if !slices.Equal(sortDominoes(ds), FullSet()) {
		t.Error("shuffle must be a permutation of the full set")
	}
}

func TestDominoes_Deal(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		boneyard := Shuffled(seed)
		hands, err := boneyard.Deal()
		if err != nil {
			t.Fatalf("seed %d: Deal() error = %v", seed, err)
		}

		var union Dominoes
		seen := make(map[Domino]bool)
		for i, hand := range hands {
			if len(hand) != HandSize {
				t.Errorf("seed %d: hand %d has %d dominoes", seed, i, len(hand))
			}
			if !slices.Equal(hand, boneyard[i*HandSize:(i+1)*HandSize]) {
				t.Errorf("seed %d: hand %d is not dealt in rotation order", seed, i)
			}
			for _, d := range hand {
				if seen[d] {
					t.Errorf("seed %d: %v dealt twice", seed, d)
				}
				seen[d] = true
			}
			union = append(union, hand...)
		}
		if !slices.Equal(sortDominoes(union), FullSet()) {
			t.Errorf("seed %d: union of hands differs from the set", seed)
		}
	}
}

func TestDominoes_Deal_InvalidSize(t *testing.T) {
	_, err := FullSet()[:27].Deal()
	if !errors.Is(err, ErrInvalidBoneyard) {
		t.Errorf("Deal() error = %v, want ErrInvalidBoneyard", err)
	}
}

func TestDominoes_Remove(t *testing.T) {
	hand := Dominoes{{6, 4}, {5, 5}, {1, 0}}

	out, ok := hand.Remove(Domino{5, 5})
	if !ok {
		t.Fatal("expected 5-5 to be removed")
	}
	if !slices.Equal(out, Dominoes{{6, 4}, {1, 0}}) {
		t.Errorf("Remove() = %v", out)
	}
	if len(hand) != 3 {
		t.Error("Remove must not modify the receiver")
	}

	if _, ok := hand.Remove(Domino{3, 3}); ok {
		t.Error("removing a missing domino should fail")
	}
}

func TestDomino_String(t *testing.T) {
	if got := MustDomino(6, 4).String(); got != "6-4" {
		t.Errorf("String() = %q, want %q", got, "6-4")
	}
}
