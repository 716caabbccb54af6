package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StripCodeFences unwraps a reply that is exactly one fenced markdown block,
// dropping the opening line with its info string. Anything else, including
// text around or between fences, is returned unchanged.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") {
		return s
	}
	nl := strings.IndexByte(t, '\n')
	if nl < 0 || nl+1 > len(t)-3 {
		return s
	}
	body := t[nl+1 : len(t)-3]
	if body != "" && !strings.HasSuffix(body, "\n") {
		return s
	}
	if strings.Contains(body, "```") {
		return s
	}
	return strings.TrimSuffix(body, "\n")
}

// CleanText is applied to every model answer before it is stored.
func CleanText(s string) string {
	s = StripCodeFences(s)
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}
