package repository

import (
	"strconv"
	"time"

	"github.com/yukikurage/taskboard-api/internal/docstore"
)

// Raw documents come back with whatever types the backend produced, and older
// ones may lack fields entirely. These helpers decode leniently: missing or
// unreadable values fall back to the zero default instead of failing.

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func stringField(rec docstore.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func intField(rec docstore.Record, key string, defaultValue int) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case []byte:
		if n, err := strconv.Atoi(string(v)); err == nil {
			return n
		}
	}
	return defaultValue
}

func timeField(rec docstore.Record, key string) *time.Time {
	switch v := rec[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		if v == nil {
			return nil
		}
		t := *v
		return &t
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return nil
}

func parseTime(value string) *time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
