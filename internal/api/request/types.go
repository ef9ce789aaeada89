package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mcoot/screenpong/internal/model"
)

// Limits for list endpoints
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Limit parses the ?limit= query parameter. A missing value gives
// DefaultLimit; values above MaxLimit are clamped.
func Limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", model.ErrInvalidPayload)
	}
	return min(n, MaxLimit), nil
}
