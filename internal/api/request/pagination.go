package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/edvin/machines/internal/model"
)

// Machine listings page by machine ID. MaxPageSize matches the bulk
// terminate cap so a full page can be terminated in one call.
const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// ParseListParams reads limit and cursor for a machine listing. A limit
// that is missing or not a positive number falls back to DefaultPageSize.
// The cursor must be a machine ID.
func ParseListParams(r *http.Request) (model.ListParams, error) {
	q := r.URL.Query()
	p := model.ListParams{Limit: DefaultPageSize, Cursor: q.Get("cursor")}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxPageSize)
	}

	if p.Cursor != "" {
		if err := uuid.Validate(p.Cursor); err != nil {
			return p, fmt.Errorf("invalid cursor %q: must be a machine ID", p.Cursor)
		}
	}
	return p, nil
}
