package dispatch

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Param normalization. The planner is instructed to emit plain numbers,
// but model output drifts: prices arrive as "1.500.000", ids as "3",
// booleans as "true". Every accessor here tolerates the JSON types the
// model actually produces and returns nil when the value is unusable.

// asAmount coerces a param into an integer amount (price, quantity,
// stock). Accepts numbers and strings with Indonesian ("1.500.000") or
// English ("1,500,000") thousand separators.
func asAmount(v any) *int64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		i := int64(n)
		return &i
	case int:
		i := int64(n)
		return &i
	case int64:
		return &n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			i := int64(f)
			return &i
		}
		return nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		s = strings.NewReplacer(".", "", ",", "", " ", "", "Rp", "", "rp", "").Replace(s)
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

// asID is asAmount restricted to positive values, since 0 is never a
// valid row id.
func asID(v any) *int64 {
	i := asAmount(v)
	if i == nil || *i <= 0 {
		return nil
	}
	return i
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}
