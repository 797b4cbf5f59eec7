package keyword

import (
	"errors"
	"testing"
)

type mapDictionary struct {
	terms map[string]int
	err   error
}

func (m mapDictionary) TermFrequencies() (map[string]int, error) {
	return m.terms, m.err
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"cook", "cook", 0},
		{"", "cook", 4},
		{"cooks", "", 5},
		{"cook", "cooks", 1},
		{"machinist", "machinsit", 1},
		{"developr", "developers", 2},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := EditDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := EditDistance(tt.b, tt.a); got != tt.want {
				t.Errorf("EditDistance(%q, %q) = %d, want %d (symmetric)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpellChecker_Suggest(t *testing.T) {
	sc, err := NewSpellChecker(mapDictionary{terms: map[string]int{
		"managers":   5,
		"manager":    1,
		"machinists": 1,
		"cooks":      1,
	}})
	if err != nil {
		t.Fatal(err)
	}

	got := sc.Suggest("managrs")
	if len(got) == 0 || got[0].Term != "managers" {
		t.Fatalf("Suggest(managrs) = %+v, want managers first", got)
	}
	if got[0].Distance != 1 {
		t.Errorf("Distance = %d, want 1", got[0].Distance)
	}

	if got := sc.Suggest("zzzzzzzz"); len(got) != 0 {
		t.Errorf("Suggest(zzzzzzzz) = %+v, want none", got)
	}
}

func TestSpellChecker_Correct(t *testing.T) {
	sc, err := NewSpellChecker(mapDictionary{terms: map[string]int{
		"financial": 2,
		"managers":  5,
		"cooks":     1,
	}}, WithMaxDistance(2), WithMinTermLength(4))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query       string
		want        string
		wantChanged bool
	}{
		{"Finacial managrs", "financial managers", true},
		{"financial managers", "financial managers", false},
		{"cok", "cok", false},
		{"21234", "21234", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, changed := sc.Correct(tt.query)
			if got != tt.want || changed != tt.wantChanged {
				t.Errorf("Correct(%q) = (%q, %v), want (%q, %v)", tt.query, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}

func TestSpellChecker_Options(t *testing.T) {
	sc, err := NewSpellChecker(mapDictionary{terms: map[string]int{}},
		WithMaxDistance(3), WithMinTermLength(6), WithMaxCorrections(2))
	if err != nil {
		t.Fatal(err)
	}
	if sc.maxDistance != 3 || sc.minLength != 6 || sc.maxResults != 2 {
		t.Errorf("options not applied: %+v", sc)
	}
}

func TestNewSpellChecker_DictionaryError(t *testing.T) {
	if _, err := NewSpellChecker(mapDictionary{err: errors.New("boom")}); err == nil {
		t.Error("expected dictionary error")
	}
}
