package pregen

import (
	"context"
	"github.com/stylrsa/seo-pregen/internal"
	"time"
)

const DefaultCacheTTL = 24 * time.Hour

type Freshness struct {
	// Exists is set when a page is cached under the url, fresh or not.
	Exists        bool
	Fresh         bool
	LastGenerated time.Time
}

// IsFresh reports whether page was generated less than ttl before now.
func IsFresh(page *internal.CachedPage, now time.Time, ttl time.Duration) bool {
	if page == nil {
		return false
	}

	return now.Sub(page.LastGenerated) < ttl
}

type StalenessGate struct {
	pages PageCacheStore
	ttl   time.Duration
	now   func() time.Time
}

func NewStalenessGate(pages PageCacheStore, ttl time.Duration, now func() time.Time) *StalenessGate {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}

	return &StalenessGate{pages: pages, ttl: ttl, now: now}
}

func (g *StalenessGate) Check(ctx context.Context, url string) (Freshness, error) {
	page, err := g.pages.LookupPage(ctx, url)
	if err != nil {
		return Freshness{}, err
	}
	if page == nil {
		return Freshness{}, nil
	}

	return Freshness{
		Exists:        true,
		Fresh:         IsFresh(page, g.now(), g.ttl),
		LastGenerated: page.LastGenerated,
	}, nil
}
