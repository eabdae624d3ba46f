package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// AsString renders a cell as text. Missing cells render as "" with ok=false.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int:
		return strconv.Itoa(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format("2006-01-02"), true
	default:
		return "", false
	}
}

// AsInt64 converts integral cells (including integral floats and numeric
// strings) to int64.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, false
		}
		return int64(x), true
	case float32:
		return AsInt64(float64(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsFloat64 converts numeric cells to float64.
func AsFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// KindOf returns the kind that naturally holds v, and false for nil or
// unsupported values.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case int64, int32, int:
		return KindInt, true
	case float64, float32:
		return KindFloat, true
	case bool:
		return KindBool, true
	case time.Time:
		return KindDate, true
	default:
		return KindString, false
	}
}

// KeyString joins the textual form of the given cells with a unit separator.
// Missing cells are encoded as a NUL byte so they never collide with "".
func KeyString(vals ...any) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		s, ok := AsString(v)
		if !ok {
			b.WriteByte(0x00)
			continue
		}
		b.WriteString(s)
	}
	return b.String()
}
