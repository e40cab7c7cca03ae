package service

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const maxSlugBase = 250

// slugBase derives the URL slug for title.
func slugBase(title string) string {
	s := slug.Make(title)
	if len(s) > maxSlugBase {
		s = strings.TrimRight(s[:maxSlugBase], "-")
	}
	if s == "" {
		s = "post"
	}
	return s
}

// uniqueSlug returns base when it is free, otherwise base-N for the smallest free N ≥ 1.
func uniqueSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
