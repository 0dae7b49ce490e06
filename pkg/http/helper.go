package http

import (
	"net/http"
	"strconv"
	"time"

	"hyrra/pkg/config"
	apperrors "hyrra/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses an optional query parameter holding a calendar date in
// either RFC3339 or plain YYYY-MM-DD form. Returns nil when absent.
func ExtractDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}
	if parsed, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return &parsed, nil
	}

	return nil, apperrors.InvalidInput("invalid " + name + " parameter, must be RFC3339 or YYYY-MM-DD")
}
