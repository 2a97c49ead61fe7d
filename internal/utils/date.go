package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only textual date representation accepted or produced: DD/MM/YYYY.
const DateLayout = "02/01/2006"

var ErrInvalidDate = errors.New("invalid date, expected DD/MM/YYYY")

// FormatDate renders t as DD/MM/YYYY in local time.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// ParseDate parses a DD/MM/YYYY string into 00:00 local time of that day.
// Every "/" is stripped first, so the raw DDMMYYYY form is accepted too. The
// remaining text must be exactly eight ASCII digits forming a real calendar date.
func ParseDate(value string) (time.Time, error) {
	digits := strings.ReplaceAll(value, "/", "")
	if len(digits) != 8 {
		return time.Time{}, ErrInvalidDate
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return time.Time{}, ErrInvalidDate
		}
	}

	day, _ := strconv.Atoi(digits[0:2])
	month, _ := strconv.Atoi(digits[2:4])
	year, _ := strconv.Atoi(digits[4:8])
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, ErrInvalidDate
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (31/02 becomes 03/03), so compare back
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, ErrInvalidDate
	}

	return t, nil
}

// StartOfDay truncates t to 00:00 local time of the same calendar day.
func StartOfDay(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}
