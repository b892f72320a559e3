package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// StringToInt converts a string to an integer.
// If the conversion fails, it returns 0.
func StringToInt(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

// Int64ToString converts a 64-bit integer to its string representation.
func Int64ToString(n int64) string {
	return strconv.FormatInt(n, 10)
}

// GetString returns the first non-empty string from the provided values.
// If all values are empty strings, it returns an empty string.
// This is useful for providing fallback values.
func GetString(values ...string) string {
	for _, val := range values {
		if val != "" {
			return val
		}
	}

	return ""
}

// FirstCSV returns the first trimmed entry of a comma separated header value.
func FirstCSV(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

// Truncate shortens s to at most n characters. Used for log payloads
// where user input must not flood the output.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// GetInt returns the first non-zero value.
func GetInt(values ...int) int {
	for _, val := range values {
		if val != 0 {
			return val
		}
	}

	return 0
}
