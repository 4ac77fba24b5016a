package utils

import "strings"

// SplitList splits a comma-separated flag value, trimming whitespace and
// dropping empty items. Order is preserved.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CleanExtensions strips surrounding whitespace and a leading dot, keeping
// case and first-seen order and dropping exact duplicates.
func CleanExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
