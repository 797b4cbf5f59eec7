package models

// Pagination describes where a page sits in the filtered sequence.
// Total counts the sequence before slicing.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// Page is one slice of occupations plus its pagination metadata.
type Page struct {
	Data       []*Occupation `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// Suggestion is a ranked, typo-tolerant title match.
type Suggestion struct {
	Code  string  `json:"code"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SuggestResponse is the response for a suggestion request.
type SuggestResponse struct {
	Query       string        `json:"query"`
	Suggestions []*Suggestion `json:"suggestions"`
	// DidYouMean is a spelling-corrected query, set only when it differs from Query.
	DidYouMean string `json:"didYouMean,omitempty"`
}
