package shared

import "time"

// dateLayouts are tried in order. Scheduling payloads mostly send bare
// dates; RFC3339 covers clients that serialize full timestamps.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate parses a date field. An empty value yields the zero time
// with no error so optional fields can fall through.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
