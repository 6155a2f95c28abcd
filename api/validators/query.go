package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/loopplatform/merchant-pulse/pkg/errors"
)

// ParseQueryInt reads an integer query parameter with a default and an
// inclusive range. The reporting surface takes all its numeric inputs
// (window, min_days_live, limit) through here so out-of-range values
// fail uniformly as coded validation errors.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
