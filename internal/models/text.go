package models

import "strings"

const listSeparator = ", "

// ParseList splits a comma-serialized list, trimming blanks.
func ParseList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList serializes items, dropping blanks and case-insensitive duplicates.
func JoinList(items []string) string {
	seen := make(map[string]struct{}, len(items))
	kept := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.ReplaceAll(item, ",", " "))
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, item)
	}
	return strings.Join(kept, listSeparator)
}

// TruncateWords keeps the first n words of s and marks the cut with "....".
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "...."
}
