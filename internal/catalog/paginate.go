package catalog

import "github.com/canoeh/nocs/internal/models"

// Paginate slices source into the requested page using the package default and maximum page
// sizes. Missing or invalid page and limit values fall back to defaults; a page past the end
// has no data but still reports the total.
func Paginate(source []*models.Occupation, page, limit int) models.Page {
	return paginate(source, page, limit, models.DefaultPageLimit, models.MaxPageLimit)
}

func paginate(source []*models.Occupation, page, limit, defaultLimit, maxLimit int) models.Page {
	q := models.ListQuery{Page: page, Limit: limit}
	q.Normalize(defaultLimit, maxLimit)

	total := len(source)
	totalPages := (total + q.Limit - 1) / q.Limit

	data := []*models.Occupation{}
	if q.Page <= totalPages {
		start := (q.Page - 1) * q.Limit
		end := min(start+q.Limit, total)
		data = source[start:end:end]
	}

	return models.Page{
		Data: data,
		Pagination: models.Pagination{
			Total:       total,
			Page:        q.Page,
			Limit:       q.Limit,
			TotalPages:  totalPages,
			HasNext:     q.Page < totalPages,
			HasPrevious: q.Page > 1,
		},
	}
}
