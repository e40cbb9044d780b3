package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryBool reads a boolean query parameter; absent or malformed values
// fall back to the default.
func QueryBool(r *http.Request, name string, fallback bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// PositiveInt validates an optional numeric field. Zero means absent
// and is returned as-is; negatives and garbage add an issue.
func (v *Validator) PositiveInt(field string, value int) int {
	if value < 0 {
		v.Add(field, "must be a positive number")
		return 0
	}
	return value
}
