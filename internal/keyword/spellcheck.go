package keyword

import (
	"sort"
	"strings"
)

// TermDictionary supplies the known vocabulary with document frequencies.
type TermDictionary interface {
	TermFrequencies() (map[string]int, error)
}

// Correction is a candidate replacement for an unknown term.
type Correction struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellChecker corrects query terms against a fixed vocabulary.
type SpellChecker struct {
	terms       map[string]int
	maxDistance int
	minLength   int
	maxResults  int
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for corrections.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinTermLength sets the shortest term that is checked. Shorter terms are left alone.
func WithMinTermLength(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithMaxCorrections sets how many candidates Suggest returns per term.
func WithMaxCorrections(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewSpellChecker loads the vocabulary from dict once.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) (*SpellChecker, error) {
	terms, err := dict.TermFrequencies()
	if err != nil {
		return nil, err
	}
	s := &SpellChecker{
		terms:       terms,
		maxDistance: 2,
		minLength:   4,
		maxResults:  5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Known reports whether term is in the vocabulary.
func (s *SpellChecker) Known(term string) bool {
	_, ok := s.terms[strings.ToLower(term)]
	return ok
}

// Suggest returns corrections for term, best first: smaller distance and higher frequency win,
// ties go to the alphabetically first term.
func (s *SpellChecker) Suggest(term string) []Correction {
	term = strings.ToLower(term)
	out := make([]Correction, 0)
	for candidate, freq := range s.terms {
		if candidate == term {
			continue
		}
		diff := len([]rune(candidate)) - len([]rune(term))
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		d := EditDistance(term, candidate)
		if d > s.maxDistance {
			continue
		}
		out = append(out, Correction{
			Term:      candidate,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxResults {
		out = out[:s.maxResults]
	}
	return out
}

// Correct replaces unknown terms of query with their best correction. It returns the
// lowercased corrected query and whether anything changed.
func (s *SpellChecker) Correct(query string) (string, bool) {
	terms := tokenizeQuery(query)
	changed := false
	for i, term := range terms {
		if len([]rune(term)) < s.minLength || isDigits(term) || s.Known(term) {
			continue
		}
		if c := s.Suggest(term); len(c) > 0 {
			terms[i] = c[0].Term
			changed = true
		}
	}
	return strings.Join(terms, " "), changed
}
