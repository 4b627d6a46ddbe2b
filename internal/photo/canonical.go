package photo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalPhotoNumber renders a photo identifier in the form used for key
// comparison. Strings are kept verbatim so "7" and "07" stay distinct. Numbers
// keep their literal digits, so 1.5 and 1.50 are distinct keys too, and never
// pass through float64.
func CanonicalPhotoNumber(v any) (string, error) {
	s, err := CanonicalValue(v)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("photo number is empty")
	}
	return s, nil
}

// CanonicalValue renders a scalar attribute value as a string. A missing value
// (nil) renders as the empty string.
func CanonicalValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return canonicalDecimal(val.String())
	case decimal.Decimal:
		return val.String(), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	case float32, float64:
		return "", fmt.Errorf("binary floating-point value %v cannot be rendered exactly", val)
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// canonicalDecimal checks that raw is a decimal literal and returns it as
// written. Trailing zeros and exponents are significant.
func canonicalDecimal(raw string) (string, error) {
	if _, err := decimal.NewFromString(raw); err != nil {
		return "", fmt.Errorf("parse number %q: %w", raw, err)
	}
	return raw, nil
}
