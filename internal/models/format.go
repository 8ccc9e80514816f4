package models

import (
	"fmt"
	"strconv"
)

// FormatValue renders a field value for delimited text and facet names.
// Absent optionals render as "-1" for sentinel statistics and empty otherwise.
func FormatValue(f Field, v any) string {
	switch val := v.(type) {
	case Optional:
		if !val.Valid {
			if f.UsesSentinel() {
				return "-1"
			}
			return ""
		}
		return formatFloat(val.Value)
	case float64:
		return formatFloat(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
