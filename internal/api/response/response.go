package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse reports the outcome of a terminate.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// WriteJSON writes v as the response body. Machine state goes stale within
// minutes, so responses are never cached by intermediaries.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// PaginatedResponse wraps one page of a listing.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePage writes items as one page. When more pages follow, the cursor
// of the last item becomes next_cursor. A nil slice is written as [].
func WritePage[T any](w http.ResponseWriter, items []T, hasMore bool, cursor func(T) string) {
	if items == nil {
		items = []T{}
	}
	page := PaginatedResponse{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		page.NextCursor = cursor(items[len(items)-1])
	}
	WriteJSON(w, http.StatusOK, page)
}
