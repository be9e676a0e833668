package utils

import (
	"strings"
)

// ParseBool converts a string to a boolean (supports multiple formats).
func ParseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// TrimQuotes removes surrounding quotes from a string.
func TrimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// FindInlineCommentIndex returns the index of a # that starts an inline comment.
// A # inside quotes or escaped with a backslash is ignored.
func FindInlineCommentIndex(line string) int {
	inQuote := false
	var quoteChar byte
	escaped := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if inQuote {
			if ch == quoteChar {
				inQuote = false
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			inQuote = true
			quoteChar = ch
			continue
		}
		if ch == '#' {
			return i
		}
	}
	return -1
}

// FindClosingQuoteIndex returns the index of the closing quote in s,
// honoring backslash escapes. Assumes s[0] is the opening quote.
func FindClosingQuoteIndex(s string, quote byte) int {
	escaped := false
	for i := 1; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == quote {
			return i
		}
	}
	return -1
}

// SplitKeyValue splits a "key=value" string into key and value.
// Supports inline comments too: KEY="value" # comment
func SplitKeyValue(line string) (string, string, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	valuePart := strings.TrimSpace(parts[1])

	if strings.HasPrefix(valuePart, "\"") || strings.HasPrefix(valuePart, "'") {
		quote := valuePart[0]
		if endIdx := FindClosingQuoteIndex(valuePart, quote); endIdx >= 0 {
			valuePart = valuePart[:endIdx+1]
		}
	} else if idx := FindInlineCommentIndex(valuePart); idx >= 0 {
		valuePart = strings.TrimSpace(valuePart[:idx])
	}

	value := TrimQuotes(strings.TrimSpace(valuePart))
	return key, value, true
}

// IsComment checks whether a line is a comment (starts with #).
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") || trimmed == ""
}

// SplitColumns splits a fixed-width console table row on runs of two or more
// spaces. Single spaces stay inside a column, so values like share names with
// embedded spaces survive.
func SplitColumns(line string) []string {
	var cols []string
	start := -1
	spaceRun := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			spaceRun++
			continue
		}
		if start >= 0 && spaceRun >= 2 {
			cols = append(cols, strings.TrimSpace(line[start:i-spaceRun]))
			start = i
		} else if start < 0 {
			start = i
		}
		spaceRun = 0
	}
	if start >= 0 {
		cols = append(cols, strings.TrimSpace(line[start:]))
	}
	return cols
}
