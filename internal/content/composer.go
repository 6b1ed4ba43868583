// Package content writes the text and structured data of cached SEO pages.
package content

import (
	"fmt"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/util"
	"strings"
	"unicode/utf16"
)

const (
	DefaultBaseUrl = "https://www.stylrsa.co.za"
	siteName       = "Stylr SA"

	maxMetaTitle       = 60
	maxMetaDescription = 160
)

// Composer is the default page writer. Its output depends only on the facts
// it is given.
type Composer struct {
	BaseUrl string
}

func NewComposer(baseUrl string) *Composer {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	return &Composer{BaseUrl: strings.TrimRight(baseUrl, "/")}
}

func (c *Composer) Compose(facts internal.PageFacts) (internal.PageContent, error) {
	if facts.Keyword.Slug == "" {
		return internal.PageContent{}, fmt.Errorf("keyword %q has no slug", facts.Keyword.Id)
	}
	if facts.Location.ProvinceSlug == "" {
		return internal.PageContent{}, fmt.Errorf("location %q has no province slug", facts.Location.Id)
	}

	content := internal.PageContent{
		H1:              h1(facts),
		H2Headings:      h2Headings(facts),
		H3Headings:      h3Headings(facts),
		IntroText:       introText(facts),
		MetaTitle:       metaTitle(facts),
		MetaDescription: metaDescription(facts),
		RelatedServices: relatedServices(facts),
		NearbyLocations: nearbyLocations(facts),
	}
	content.SchemaMarkup = c.schema(facts, content)

	return content, nil
}

func h1(f internal.PageFacts) string {
	return fmt.Sprintf("Find %s in %s | Book Online", f.Keyword.Text, f.Location.DisplayName())
}

func h2Headings(f internal.PageFacts) []string {
	kw, name := f.Keyword.Text, f.Location.Name

	headings := []string{
		fmt.Sprintf("Top-Rated %s in %s", kw, name),
		fmt.Sprintf("%d+ %s Services Available", f.ServiceCount, kw),
		fmt.Sprintf("Why Choose %s in %s?", kw, f.Location.DisplayName()),
		fmt.Sprintf("Book %s Appointments Online", kw),
	}
	if f.Location.Type != internal.LocationProvince {
		headings = append(headings, fmt.Sprintf("Best %s Near You in %s", kw, name))
	}

	return headings
}

func h3Headings(f internal.PageFacts) []string {
	kw := f.Keyword.Text

	return []string{
		fmt.Sprintf("Professional %s Services", kw),
		fmt.Sprintf("Verified %s Providers", kw),
		fmt.Sprintf("Affordable %s Options", kw),
		fmt.Sprintf("Same-Day %s Appointments", kw),
		fmt.Sprintf("Highly Recommended %s in %s", kw, f.Location.Name),
		"Customer Reviews & Ratings",
		fmt.Sprintf("Compare %s Prices", kw),
		"Book with Confidence",
	}
}

func metaTitle(f internal.PageFacts) string {
	title := fmt.Sprintf("%s in %s | Book", f.Keyword.Text, f.Location.DisplayName())
	if util.RuneLen(title) <= maxMetaTitle {
		return title
	}

	name := f.Location.Name
	title = fmt.Sprintf("%s %s | Book", f.Keyword.Text, name)
	if util.RuneLen(title) <= maxMetaTitle {
		return title
	}

	// " " + name + " | Book" leaves this much room for the keyword
	room := maxMetaTitle - util.RuneLen(name) - 8
	title = strings.TrimSpace(fmt.Sprintf("%s %s | Book", util.TruncateRunes(f.Keyword.Text, room), name))
	return util.TruncateRunes(title, maxMetaTitle)
}

func metaDescription(f internal.PageFacts) string {
	kw, display := f.Keyword.Text, f.Location.DisplayName()

	candidates := []string{
		fmt.Sprintf("Find the best %s in %s. Book appointments online with %d+ verified professionals. Compare prices & reviews.", kw, display, f.ServiceCount),
		fmt.Sprintf("Book %s in %s. %d+ verified professionals. Compare prices, read reviews & book online instantly.", kw, display, f.ServiceCount),
		fmt.Sprintf("Book %s in %s. %d+ verified pros. Compare & book online.", kw, f.Location.Name, f.ServiceCount),
	}
	for _, d := range candidates {
		if util.RuneLen(d) <= maxMetaDescription {
			return d
		}
	}

	return util.TruncateRunes(candidates[len(candidates)-1], maxMetaDescription)
}

func relatedServices(f internal.PageFacts) []internal.Link {
	links := make([]internal.Link, 0, len(f.Related))
	for _, k := range f.Related {
		links = append(links, internal.Link{
			Label: fmt.Sprintf("%s in %s", k.Text, f.Location.Name),
			Url:   internal.BuildUrl(k.Slug, f.Location),
			Type:  "service",
		})
	}

	return links
}

func nearbyLocations(f internal.PageFacts) []internal.Link {
	links := make([]internal.Link, 0, len(f.Nearby))
	for _, l := range f.Nearby {
		links = append(links, internal.Link{
			Label: fmt.Sprintf("%s in %s", f.Keyword.Text, l.Name),
			Url:   internal.BuildUrl(f.Keyword.Slug, l),
			Type:  "location",
		})
	}

	return links
}

// Breadcrumbs runs Home, keyword, province and, below province level, the
// location itself.
func Breadcrumbs(k internal.Keyword, l internal.Location) []internal.Link {
	crumbs := []internal.Link{
		{Label: "Home", Url: "/"},
		{Label: k.Text, Url: "/" + k.Slug},
	}

	provinceUrl := fmt.Sprintf("/%s/%s", k.Slug, l.ProvinceSlug)
	if l.Type == internal.LocationProvince {
		return append(crumbs, internal.Link{Label: l.Name, Url: provinceUrl})
	}

	return append(crumbs,
		internal.Link{Label: l.Province, Url: provinceUrl},
		internal.Link{Label: l.Name, Url: internal.BuildUrl(k.Slug, l)},
	)
}

func (c *Composer) schema(f internal.PageFacts, content internal.PageContent) map[string]any {
	fullUrl := c.BaseUrl + f.Url

	crumbs := Breadcrumbs(f.Keyword, f.Location)
	items := make([]any, 0, len(crumbs))
	for i, crumb := range crumbs {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     crumb.Label,
			"item":     c.BaseUrl + crumb.Url,
		})
	}

	return map[string]any{
		"@context": "https://schema.org",
		"@graph": []any{
			map[string]any{
				"@type": "Organization",
				"@id":   c.BaseUrl + "/#organization",
				"name":  siteName,
				"url":   c.BaseUrl,
				"logo": map[string]any{
					"@type": "ImageObject",
					"url":   c.BaseUrl + "/logo.png",
				},
			},
			map[string]any{
				"@type":           "BreadcrumbList",
				"@id":             fullUrl + "#breadcrumb",
				"itemListElement": items,
			},
			map[string]any{
				"@type":       "WebPage",
				"@id":         fullUrl + "#webpage",
				"url":         fullUrl,
				"name":        content.MetaTitle,
				"description": content.MetaDescription,
			},
		},
	}
}

// templateIndex picks the same template for a location on every run. It is the
// 31-multiplier rolling hash over UTF-16 code units with 32-bit wraparound.
func templateIndex(locationId string, n int) int {
	var h int32
	for _, c := range utf16.Encode([]rune(locationId)) {
		h = h*31 + int32(c)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	return int(abs % int64(n))
}
