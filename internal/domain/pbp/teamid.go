package pbp

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizeTeamID coerces the representations upstream feeds use for team IDs
// (integers, numeric strings, "1610612738.0") to a canonical integer.
// It never panics; anything unusable yields (0, false).
func NormalizeTeamID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return positive(int64(v))
	case int32:
		return positive(int64(v))
	case int64:
		return positive(v)
	case uint32:
		return positive(int64(v))
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return fromString(v.String())
	case string:
		return fromString(v)
	case []byte:
		return fromString(string(v))
	case sql.NullString:
		if !v.Valid {
			return 0, false
		}
		return fromString(v.String)
	case sql.NullInt64:
		if !v.Valid {
			return 0, false
		}
		return positive(v.Int64)
	case *string:
		if v == nil {
			return 0, false
		}
		return fromString(*v)
	case *int64:
		if v == nil {
			return 0, false
		}
		return positive(*v)
	default:
		return 0, false
	}
}

func fromString(raw string) (int64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "null") || strings.EqualFold(value, "none") || strings.EqualFold(value, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return fromFloat(f)
}

func fromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, false
	}
	return positive(int64(math.Trunc(f)))
}

func positive(v int64) (int64, bool) {
	if v <= 0 {
		return 0, false
	}
	return v, true
}
