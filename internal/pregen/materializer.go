package pregen

import (
	"context"
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stylrsa/seo-pregen/internal"
	"time"
)

// at most this many related keyword and nearby location links per page
const linkLimit = 10

// Materializer writes one page: staleness check, aggregates, composition and
// upsert.
type Materializer struct {
	gate       *StalenessGate
	pages      PageCacheStore
	aggregates AggregateSource
	locations  LocationSource
	composer   Composer
	now        func() time.Time

	// largest cities and towns per province slug, shared by every keyword
	nearby *xsync.MapOf[string, []internal.Location]
}

func NewMaterializer(gate *StalenessGate, pages PageCacheStore, aggregates AggregateSource, locations LocationSource, composer Composer, now func() time.Time) *Materializer {
	if now == nil {
		now = time.Now
	}

	return &Materializer{
		gate:       gate,
		pages:      pages,
		aggregates: aggregates,
		locations:  locations,
		composer:   composer,
		now:        now,
		nearby:     xsync.NewMapOf[string, []internal.Location](),
	}
}

// pageAttempts is what earlier attempts at the same page left behind.
type pageAttempts struct {
	// first is the freshness seen by the first attempt that got an answer
	first *Freshness
	// wrote is set once an attempt sent its upsert, which may have committed
	// even when the attempt failed
	wrote bool
}

func (a *pageAttempts) written() Outcome {
	if a.first.Exists {
		return OutcomeUpdated
	}

	return OutcomeCreated
}

// Materialize returns OutcomeSkipped for fresh pages and for pages a newer
// write got to first, OutcomeCreated when no page was cached under the url
// and OutcomeUpdated when a stale one was replaced.
func (m *Materializer) Materialize(ctx context.Context, task internal.PageTask, related []internal.Keyword) (Outcome, error) {
	return m.materialize(ctx, task, related, &pageAttempts{})
}

// materialize is one attempt at a page. Retries of the same page share
// attempts, so a page found fresh after an earlier attempt's upsert counts as
// written by that attempt.
func (m *Materializer) materialize(ctx context.Context, task internal.PageTask, related []internal.Keyword, attempts *pageAttempts) (Outcome, error) {
	url := task.Url()

	freshness, err := m.gate.Check(ctx, url)
	if err != nil {
		return OutcomeFailed, err
	}
	if attempts.first == nil {
		attempts.first = &freshness
	}
	if freshness.Fresh {
		if attempts.wrote {
			return attempts.written(), nil
		}
		return OutcomeSkipped, nil
	}

	filter := internal.FilterFor(task.Location)

	serviceCount, err := m.aggregates.CountApprovedServices(ctx, filter)
	if err != nil {
		return OutcomeFailed, err
	}

	salonCount, err := m.aggregates.CountApprovedSalons(ctx, filter)
	if err != nil {
		return OutcomeFailed, err
	}

	avgPrice, err := m.aggregates.AverageApprovedServicePrice(ctx, filter)
	if err != nil {
		return OutcomeFailed, err
	}

	nearby, err := m.nearbyLocations(ctx, task.Location)
	if err != nil {
		return OutcomeFailed, err
	}

	content, err := m.composer.Compose(internal.PageFacts{
		Keyword:      task.Keyword,
		Location:     task.Location,
		Url:          url,
		ServiceCount: serviceCount,
		SalonCount:   salonCount,
		AvgPrice:     avgPrice,
		Related:      related,
		Nearby:       nearby,
	})
	if err != nil {
		return OutcomeFailed, &internal.TaskError{Op: "composing page", Err: err}
	}

	attempts.wrote = true
	stored, err := m.pages.UpsertPage(ctx, &internal.CachedPage{
		KeywordId:     task.Keyword.Id,
		LocationId:    task.Location.Id,
		Url:           url,
		Content:       content,
		ServiceCount:  serviceCount,
		SalonCount:    salonCount,
		AvgPrice:      avgPrice,
		LastGenerated: m.now(),
	})
	if err != nil {
		return OutcomeFailed, err
	}
	if !stored {
		return OutcomeSkipped, nil
	}

	return attempts.written(), nil
}

// nearbyLocations returns up to linkLimit cities and towns of the province of
// location, location itself excluded.
func (m *Materializer) nearbyLocations(ctx context.Context, location internal.Location) ([]internal.Location, error) {
	candidates, ok := m.nearby.Load(location.ProvinceSlug)
	if !ok {
		// one extra in case location is among them
		fetched, err := m.locations.NearbyLocations(ctx, location.ProvinceSlug, linkLimit+1)
		if err != nil {
			return nil, fmt.Errorf("nearby locations of %s: %w", location.ProvinceSlug, err)
		}
		candidates, _ = m.nearby.LoadOrStore(location.ProvinceSlug, fetched)
	}

	nearby := make([]internal.Location, 0, linkLimit)
	for _, c := range candidates {
		if len(nearby) == linkLimit {
			break
		}
		if c.Id == location.Id {
			continue
		}
		nearby = append(nearby, c)
	}

	return nearby, nil
}
