package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter bounded by [min, max].
// Failures carry a field -> message detail like body validation does.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, fmt.Sprintf("%s must be a whole number", key))
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("%s must be between %d and %d", key, min, max))
	}
	return value, nil
}

// ParseQueryString reads an optional text query parameter, trimmed of
// surrounding whitespace. Values longer than maxLen bytes are rejected rather
// than shortened.
func ParseQueryString(r *http.Request, key string, maxLen int) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen > 0 && len(value) > maxLen {
		return "", queryError(key, fmt.Sprintf("%s must be at most %d characters", key, maxLen))
	}
	return value, nil
}

func queryError(key, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]string{key: msg})
}
