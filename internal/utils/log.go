package utils

import "strings"

// TruncateForLog shortens s to limit runes for log previews. Line breaks are
// folded into spaces so prompt and response previews stay on one log line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
