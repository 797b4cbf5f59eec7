// Package keyword provides the in-memory title index behind occupation suggestions.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/canoeh/nocs/internal/models"
)

// DefaultSuggestLimit is used when a caller passes a non-positive limit.
const DefaultSuggestLimit = 10

const (
	titleField = "title"
	codeField  = "code"
)

// document is what gets indexed for each occupation.
type document struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Index is a read-only Bleve index over occupation titles. It is built once per snapshot.
type Index struct {
	index   bleve.Index
	titles  map[string]string
	speller *SpellChecker
}

// NewIndex indexes the titles of records in memory.
func NewIndex(records []*models.Occupation) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	titleMapping := bleve.NewTextFieldMapping()
	// Standard analyzer lowercases without stemming, so prefixes line up with what users type.
	titleMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(titleField, titleMapping)
	docMapping.AddFieldMappingsAt(codeField, bleve.NewKeywordFieldMapping())
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}

	titles := make(map[string]string, len(records))
	batch := index.NewBatch()
	for _, o := range records {
		if err := batch.Index(o.Code, document{Code: o.Code, Title: o.Title}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index %s: %w", o.Code, err)
		}
		titles[o.Code] = o.Title
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index occupations: %w", err)
		}
	}

	idx := &Index{index: index, titles: titles}
	speller, err := NewSpellChecker(idx)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to build spell checker: %w", err)
	}
	idx.speller = speller
	return idx, nil
}

// Suggest returns up to limit occupations whose titles best match q, tolerating typos and
// partial words. A numeric q also matches code prefixes. Ties are broken by code.
func (b *Index) Suggest(ctx context.Context, q string, limit int) (*models.SuggestResponse, error) {
	resp := &models.SuggestResponse{Query: q, Suggestions: []*models.Suggestion{}}
	terms := tokenizeQuery(q)
	if len(terms) == 0 {
		return resp, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	req := bleve.NewSearchRequestOptions(buildSuggestQuery(strings.TrimSpace(q), terms), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	for _, hit := range results.Hits {
		resp.Suggestions = append(resp.Suggestions, &models.Suggestion{
			Code:  hit.ID,
			Title: b.titles[hit.ID],
			Score: hit.Score,
		})
	}

	if corrected, ok := b.speller.Correct(q); ok {
		resp.DidYouMean = corrected
	}
	return resp, nil
}

// buildSuggestQuery ORs, per term, an exact match, a prefix match and a fuzzy match on the
// title. Exact hits are boosted over prefix hits, which are boosted over fuzzy ones.
func buildSuggestQuery(raw string, terms []string) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(terms)*3+1)
	for _, term := range terms {
		mq := bleve.NewMatchQuery(term)
		mq.SetField(titleField)
		mq.SetBoost(3)
		queries = append(queries, mq)

		pq := bleve.NewPrefixQuery(term)
		pq.SetField(titleField)
		pq.SetBoost(2)
		queries = append(queries, pq)

		if f := fuzzinessFor(term); f > 0 {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetField(titleField)
			fq.SetFuzziness(f)
			queries = append(queries, fq)
		}
	}
	if isDigits(raw) {
		cq := bleve.NewPrefixQuery(raw)
		cq.SetField(codeField)
		cq.SetBoost(4)
		queries = append(queries, cq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// fuzzinessFor scales the allowed edit distance with term length.
func fuzzinessFor(term string) int {
	n := len([]rune(term))
	switch {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tokenizeQuery splits query into lowercase terms on anything that is not a letter or digit.
func tokenizeQuery(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TermFrequencies returns every indexed title term with the number of titles containing it.
func (b *Index) TermFrequencies() (map[string]int, error) {
	dict, err := b.index.FieldDict(titleField)
	if err != nil {
		return nil, err
	}
	defer dict.Close()

	terms := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		terms[entry.Term] = int(entry.Count)
	}
	return terms, nil
}

// DocCount returns the number of indexed occupations.
func (b *Index) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close releases the index.
func (b *Index) Close() error {
	return b.index.Close()
}
