package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

// positiveQueryInt reads an integer query parameter, ignoring values
// below min or anything unparsable.
func positiveQueryInt(r *http.Request, name string, fallback, min int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

// ParsePagination reads limit and offset from the query string.
// Malformed values fall back to the defaults; limit is clamped to
// maxLimit when one is given.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := positiveQueryInt(r, "limit", defaultLimit, 1)
	offset := positiveQueryInt(r, "offset", 0, 0)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}
}
