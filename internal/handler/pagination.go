package handler

import (
	"net/http"
	"strconv"

	"github.com/contactdesk/admin-server/internal/config"
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit. Pages below 1 are clamped to 1; a
// limit outside 1..MaxLimit falls back to the default.
func ParsePagination(r *http.Request) PaginationParams {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = config.DefaultPage
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > config.MaxLimit {
		limit = config.DefaultLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
