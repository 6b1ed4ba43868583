package pregen

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/content"
	"github.com/stylrsa/seo-pregen/internal/log"
	"sync"
	"testing"
	"time"
)

var (
	keywordHairSalon = internal.Keyword{Id: "k1", Text: "Hair Salon", Slug: "hair-salon", Category: "hair", Priority: 1}
	keywordBraids    = internal.Keyword{Id: "k2", Text: "Braids", Slug: "braids", Category: "hair", Priority: 2}
	keywordNails     = internal.Keyword{Id: "k3", Text: "Nail Salon", Slug: "nail-salon", Category: "nails", Priority: 3}

	provinceGauteng  = internal.Location{Id: "p1", Name: "Gauteng", Slug: "gauteng", Type: internal.LocationProvince, Province: "Gauteng", ProvinceSlug: "gauteng"}
	cityJohannesburg = internal.Location{Id: "c1", Name: "Johannesburg", Slug: "johannesburg", Type: internal.LocationCity, Province: "Gauteng", ProvinceSlug: "gauteng"}
	cityPretoria     = internal.Location{Id: "c2", Name: "Pretoria", Slug: "pretoria", Type: internal.LocationCity, Province: "Gauteng", ProvinceSlug: "gauteng"}
	suburbSandton    = internal.Location{Id: "s1", Name: "Sandton", Slug: "sandton", Type: internal.LocationSuburb, Province: "Gauteng", ProvinceSlug: "gauteng"}
)

var errUpsert = &internal.TaskError{Op: "upserting cached page", Err: errors.New("constraint violated")}

type fakeSource struct {
	mu sync.Mutex

	keywords    []internal.Keyword
	keywordsErr error
	locations   []internal.Location

	// pageErr fails every Locations call whose skip matches, per phase type
	pageErr map[internal.LocationType]map[int]error

	keywordCalls  int
	countCalls    []internal.LocationType
	locationCalls []internal.LocationType
	nearbyCalls   map[string]int
}

func newFakeSource(keywords []internal.Keyword, locations ...internal.Location) *fakeSource {
	return &fakeSource{
		keywords:    keywords,
		locations:   locations,
		pageErr:     map[internal.LocationType]map[int]error{},
		nearbyCalls: map[string]int{},
	}
}

func (s *fakeSource) Keywords(ctx context.Context) ([]internal.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keywordCalls++
	if s.keywordsErr != nil {
		return nil, s.keywordsErr
	}

	return s.keywords, nil
}

func (s *fakeSource) matching(types []internal.LocationType) []internal.Location {
	var matched []internal.Location
	for _, l := range s.locations {
		for _, t := range types {
			if l.Type == t {
				matched = append(matched, l)
				break
			}
		}
	}

	return matched
}

func (s *fakeSource) CountLocations(ctx context.Context, types []internal.LocationType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countCalls = append(s.countCalls, types[0])
	return len(s.matching(types)), nil
}

func (s *fakeSource) Locations(ctx context.Context, types []internal.LocationType, order internal.LocationOrder, skip, take int) ([]internal.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locationCalls = append(s.locationCalls, types[0])
	if err := s.pageErr[types[0]][skip]; err != nil {
		return nil, err
	}

	matched := s.matching(types)
	if skip >= len(matched) {
		return nil, nil
	}

	end := skip + take
	if end > len(matched) {
		end = len(matched)
	}

	return matched[skip:end], nil
}

func (s *fakeSource) NearbyLocations(ctx context.Context, provinceSlug string, take int) ([]internal.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nearbyCalls[provinceSlug]++

	var nearby []internal.Location
	for _, l := range s.locations {
		if len(nearby) == take {
			break
		}
		if l.ProvinceSlug == provinceSlug && (l.Type == internal.LocationCity || l.Type == internal.LocationTown) {
			nearby = append(nearby, l)
		}
	}

	return nearby, nil
}

type fakeStore struct {
	mu sync.Mutex

	pages map[string]internal.CachedPage

	// failUpserts fails that many upsert calls before letting them through,
	// a negative value fails all of them
	failUpserts int
	upsertErr   error
	lookupErr   error

	// lostReplies writes that many pages and then fails the call with a
	// connectivity error
	lostReplies int
	// onUpsert runs with the store locked before every upsert
	onUpsert func(page *internal.CachedPage)

	lookups       int
	upsertCalls   int
	upserts       int
	upsertsPerUrl map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:         map[string]internal.CachedPage{},
		upsertsPerUrl: map[string]int{},
		upsertErr:     errUpsert,
	}
}

func (s *fakeStore) LookupPage(ctx context.Context, url string) (*internal.CachedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	page, ok := s.pages[url]
	if !ok {
		return nil, nil
	}

	return &page, nil
}

func (s *fakeStore) UpsertPage(ctx context.Context, page *internal.CachedPage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCalls++
	if s.onUpsert != nil {
		s.onUpsert(page)
	}
	if s.failUpserts != 0 {
		if s.failUpserts > 0 {
			s.failUpserts--
		}
		return false, s.upsertErr
	}

	if cached, ok := s.pages[page.Url]; ok && cached.LastGenerated.After(page.LastGenerated) {
		return false, nil
	}

	s.upserts++
	s.upsertsPerUrl[page.Url]++
	s.pages[page.Url] = *page

	if s.lostReplies > 0 {
		s.lostReplies--
		return false, &internal.ConnectivityError{Op: "upserting cached page", Err: errors.New("unexpected EOF")}
	}

	return true, nil
}

func (s *fakeStore) page(url string) (internal.CachedPage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[url]
	return page, ok
}

type fakeAggregates struct {
	mu sync.Mutex

	services int
	salons   int
	avgPrice *float64
	filters  []internal.LocationFilter
}

func (a *fakeAggregates) CountApprovedServices(ctx context.Context, filter internal.LocationFilter) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.filters = append(a.filters, filter)
	return a.services, nil
}

func (a *fakeAggregates) CountApprovedSalons(ctx context.Context, filter internal.LocationFilter) (int, error) {
	return a.salons, nil
}

func (a *fakeAggregates) AverageApprovedServicePrice(ctx context.Context, filter internal.LocationFilter) (*float64, error) {
	return a.avgPrice, nil
}

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 10, 1, 3, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestLogger() (log.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return logrus.NewEntry(logger), hook
}

func fastOptions() Options {
	options := DefaultOptions()
	options.Retry = RetryPolicy{
		MaxAttempts:      3,
		ConnectivityBase: time.Millisecond,
		TaskBase:         time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
	}

	return options
}

type testRig struct {
	source     *fakeSource
	store      *fakeStore
	aggregates *fakeAggregates
	clock      *clock
	hook       *test.Hook
	generator  *Generator
}

func newTestRig(t *testing.T, source *fakeSource, options Options) *testRig {
	t.Helper()

	rig := &testRig{
		source:     source,
		store:      newFakeStore(),
		aggregates: &fakeAggregates{services: 12, salons: 4},
		clock:      newClock(),
	}

	logger, hook := newTestLogger()
	rig.hook = hook
	rig.generator = NewGenerator(Deps{
		Keywords:   source,
		Locations:  source,
		Pages:      rig.store,
		Aggregates: rig.aggregates,
		Composer:   content.NewComposer(""),
		Now:        rig.clock.Now,
	}, options, logger)

	return rig
}
