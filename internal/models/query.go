package models

// Pagination defaults applied when a config does not override them.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListQuery is a request for a page of occupations, optionally filtered by a search term.
type ListQuery struct {
	Search string `json:"search,omitempty"`
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Normalize coerces page and limit into range. Values that are missing or not positive fall
// back to defaults; limit is capped at maxLimit. Zero defaultLimit or maxLimit use the
// package defaults.
func (q *ListQuery) Normalize(defaultLimit, maxLimit int) {
	if maxLimit <= 0 {
		maxLimit = MaxPageLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}
