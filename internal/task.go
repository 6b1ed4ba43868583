package internal

import (
	"iter"
	"strings"
)

// PageTask pairs one keyword with one location. It is the unit of work of a
// run and is never persisted.
type PageTask struct {
	Keyword  Keyword
	Location Location
}

func (t PageTask) Url() string {
	return BuildUrl(t.Keyword.Slug, t.Location)
}

// BuildUrl returns /keywordSlug/provinceSlug for provinces and
// /keywordSlug/provinceSlug/locationSlug for everything else. The same inputs
// always give the same url, cached pages are keyed by it.
func BuildUrl(keywordSlug string, location Location) string {
	parts := []string{keywordSlug, location.ProvinceSlug}
	if location.Type != LocationProvince {
		parts = append(parts, location.Slug)
	}

	return "/" + strings.Join(parts, "/")
}

// PageTasks yields the keyword x location product keyword by keyword without
// materializing it.
func PageTasks(keywords []Keyword, locations []Location) iter.Seq[PageTask] {
	return func(yield func(PageTask) bool) {
		for _, keyword := range keywords {
			for _, location := range locations {
				if !yield(PageTask{Keyword: keyword, Location: location}) {
					return
				}
			}
		}
	}
}

// RelatedKeywords maps every keyword id to at most limit other keywords of the
// same category, in the order of keywords.
func RelatedKeywords(keywords []Keyword, limit int) map[string][]Keyword {
	byCategory := make(map[string][]Keyword)
	for _, k := range keywords {
		byCategory[k.Category] = append(byCategory[k.Category], k)
	}

	related := make(map[string][]Keyword, len(keywords))
	for _, k := range keywords {
		list := make([]Keyword, 0, limit)
		for _, candidate := range byCategory[k.Category] {
			if len(list) == limit {
				break
			}
			if candidate.Id == k.Id {
				continue
			}
			list = append(list, candidate)
		}
		related[k.Id] = list
	}

	return related
}
