// Package pregen materializes the keyword x location SEO pages into the page
// cache.
//
// A run loads every keyword once and walks three phases of locations,
// provinces first, then cities and towns, then suburbs and townships. Each
// phase is read in pages, every page is expanded lazily into keyword x
// location tasks and the tasks run in small concurrent chunks. A task skips
// pages generated within the cache TTL, otherwise it computes the page and
// upserts it by url. Failing tasks are retried with a backoff that depends on
// the kind of failure and are counted, never fatal.
package pregen

import (
	"context"
	"github.com/stylrsa/seo-pregen/internal"
)

type KeywordSource interface {
	// Keywords returns every keyword, priority ascending then search volume
	// descending.
	Keywords(ctx context.Context) ([]internal.Keyword, error)
}

type LocationSource interface {
	CountLocations(ctx context.Context, types []internal.LocationType) (int, error)
	Locations(ctx context.Context, types []internal.LocationType, order internal.LocationOrder, skip, take int) ([]internal.Location, error)
	NearbyLocations(ctx context.Context, provinceSlug string, take int) ([]internal.Location, error)
}

type PageCacheStore interface {
	// LookupPage returns nil without an error when url is not cached.
	LookupPage(ctx context.Context, url string) (*internal.CachedPage, error)
	// UpsertPage inserts page or replaces every field of the page cached
	// under the same url. It reports false when the cached page was generated
	// later than page and was kept.
	UpsertPage(ctx context.Context, page *internal.CachedPage) (bool, error)
}

type AggregateSource interface {
	CountApprovedServices(ctx context.Context, filter internal.LocationFilter) (int, error)
	CountApprovedSalons(ctx context.Context, filter internal.LocationFilter) (int, error)
	AverageApprovedServicePrice(ctx context.Context, filter internal.LocationFilter) (*float64, error)
}

type Composer interface {
	Compose(facts internal.PageFacts) (internal.PageContent, error)
}
