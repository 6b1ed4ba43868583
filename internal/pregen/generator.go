package pregen

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/log"
	"github.com/stylrsa/seo-pregen/internal/util"
	"github.com/stylrsa/seo-pregen/internal/util/assert"
	"time"
)

const DefaultBatchSize = 5000

// Phase is one pass over a tier of locations.
type Phase struct {
	Name  string
	Types []internal.LocationType
	Order internal.LocationOrder
}

// Phases run in this order. Provinces come first since they are few and get
// the most traffic.
var Phases = []Phase{
	{
		Name:  "provinces",
		Types: []internal.LocationType{internal.LocationProvince},
		Order: internal.OrderByName,
	},
	{
		Name:  "cities",
		Types: []internal.LocationType{internal.LocationCity, internal.LocationTown},
		Order: internal.OrderByPopulation,
	},
	{
		Name:  "suburbs",
		Types: []internal.LocationType{internal.LocationSuburb, internal.LocationTownship},
		Order: internal.OrderByPopulation,
	},
}

type Options struct {
	// BatchSize is the number of locations read per page.
	BatchSize     int
	ParallelLimit int
	CacheTTL      time.Duration
	ProgressEvery int
	Retry         RetryPolicy
}

func DefaultOptions() Options {
	return Options{
		BatchSize:     DefaultBatchSize,
		ParallelLimit: DefaultParallelLimit,
		CacheTTL:      DefaultCacheTTL,
		ProgressEvery: DefaultProgressEvery,
		Retry:         DefaultRetryPolicy(),
	}
}

type Deps struct {
	Keywords   KeywordSource
	Locations  LocationSource
	Pages      PageCacheStore
	Aggregates AggregateSource
	Composer   Composer
	// Now defaults to time.Now.
	Now func() time.Time
}

type Generator struct {
	keywords     KeywordSource
	locations    LocationSource
	materializer *Materializer
	executor     *Executor
	retrier      *Retrier
	options      Options
	logger       log.Logger
	now          func() time.Time
}

func NewGenerator(deps Deps, options Options, logger log.Logger) *Generator {
	assert.NotNil(deps.Keywords, "generator needs a keyword source")
	assert.NotNil(deps.Locations, "generator needs a location source")
	assert.NotNil(deps.Pages, "generator needs a page cache store")
	assert.NotNil(deps.Aggregates, "generator needs an aggregate source")
	assert.NotNil(deps.Composer, "generator needs a composer")

	if options.BatchSize <= 0 {
		options.BatchSize = DefaultBatchSize
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	gate := NewStalenessGate(deps.Pages, options.CacheTTL, now)

	return &Generator{
		keywords:     deps.Keywords,
		locations:    deps.Locations,
		materializer: NewMaterializer(gate, deps.Pages, deps.Aggregates, deps.Locations, deps.Composer, now),
		executor:     NewExecutor(options.ParallelLimit),
		retrier:      NewRetrier(options.Retry),
		options:      options,
		logger:       logger,
		now:          now,
	}
}

// Executor exposes the executor so callers can read its peak concurrency.
func (g *Generator) Executor() *Executor {
	return g.executor
}

// Run generates every page and returns the tally. Task failures are counted,
// only a failure to load keywords or to count a phase's locations ends the
// run with an error, as does a canceled context. The tally of the phases that
// completed is returned with it.
func (g *Generator) Run(ctx context.Context) (RunStats, error) {
	start := g.now()
	stats := RunStats{}

	g.logger.WithFields(logrus.Fields{
		"BatchSize":     g.options.BatchSize,
		"ParallelLimit": g.executor.Limit(),
		"MaxAttempts":   g.retrier.Policy().MaxAttempts,
		"CacheTTL":      g.options.CacheTTL.String(),
	}).Info("starting seo page pre-generation")

	var keywords []internal.Keyword
	err := g.retrier.Do(ctx, g.logger, func(ctx context.Context) (err error) {
		keywords, err = g.keywords.Keywords(ctx)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("loading keywords: %w", err)
	}

	stats.Keywords = len(keywords)
	g.logger.WithField("KeywordCount", len(keywords)).Info("found {KeywordCount} keywords")

	if len(keywords) == 0 {
		g.logger.Warn("no keywords, nothing to generate")
		stats.Duration = g.now().Sub(start)
		return stats, nil
	}

	related := internal.RelatedKeywords(keywords, linkLimit)

	for i, phase := range Phases {
		if err := ctx.Err(); err != nil {
			stats.Duration = g.now().Sub(start)
			return stats, fmt.Errorf("run canceled before phase %s: %w", phase.Name, err)
		}

		phaseLogger := g.logger.WithFields(logrus.Fields{
			"Phase":      phase.Name,
			"PhaseIndex": i + 1,
			"PhaseCount": len(Phases),
		})

		phaseStats, err := g.runPhase(ctx, phase, keywords, related, phaseLogger)
		if err != nil {
			stats.Duration = g.now().Sub(start)
			return stats, fmt.Errorf("phase %s: %w", phase.Name, err)
		}

		stats.addPhase(phaseStats)
	}

	stats.Duration = g.now().Sub(start)

	g.logger.WithFields(logrus.Fields{
		"Duration":    util.MinutesString(stats.Duration),
		"Created":     stats.Total.Created,
		"Updated":     stats.Total.Updated,
		"Skipped":     stats.Total.Skipped,
		"Errors":      stats.Total.Errors,
		"Total":       stats.Total.Total(),
		"FailedPages": stats.FailedPages,
	}).Info("seo page generation complete in {Duration} minutes")

	return stats, nil
}

func (g *Generator) runPhase(ctx context.Context, phase Phase, keywords []internal.Keyword, related map[string][]internal.Keyword, logger log.Logger) (PhaseStats, error) {
	stats := PhaseStats{Name: phase.Name}

	var total int
	err := g.retrier.Do(ctx, logger, func(ctx context.Context) (err error) {
		total, err = g.locations.CountLocations(ctx, phase.Types)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("counting locations: %w", err)
	}

	batchSize := g.options.BatchSize
	pages := (total + batchSize - 1) / batchSize

	logger.WithFields(logrus.Fields{
		"LocationCount": total,
		"Pages":         pages,
	}).Info("phase {Phase}: found {LocationCount} locations in {Pages} pages")

	progress := NewProgress(logger, len(keywords)*total, g.options.ProgressEvery)

	run := func(ctx context.Context, task internal.PageTask) (Outcome, error) {
		outcome := OutcomeFailed
		attempts := &pageAttempts{}
		err := g.retrier.Do(ctx, taskLogger(logger, task), func(ctx context.Context) (err error) {
			outcome, err = g.materializer.materialize(ctx, task, related[task.Keyword.Id], attempts)
			return err
		})

		return outcome, err
	}

	for page := 0; page < pages; page++ {
		if ctx.Err() != nil {
			logger.WithField("Page", page+1).Warn("run canceled, phase {Phase} stopped before page {Page}")
			break
		}

		pageLogger := logger.WithFields(logrus.Fields{
			"Page":  page + 1,
			"Pages": pages,
		})

		var locations []internal.Location
		err := g.retrier.Do(ctx, pageLogger, func(ctx context.Context) (err error) {
			locations, err = g.locations.Locations(ctx, phase.Types, phase.Order, page*batchSize, batchSize)
			return err
		})
		if err != nil {
			stats.FailedPages++
			pageLogger.WithField("Error", err).Error("failed to load locations page {Page}/{Pages}, skipping it")
			continue
		}
		if len(locations) == 0 {
			break
		}

		stats.Pages++
		stats.Locations += len(locations)

		pageLogger.WithField("LocationCount", len(locations)).
			Debug("processing page {Page}/{Pages} with {LocationCount} locations")

		g.executor.Execute(ctx, internal.PageTasks(keywords, locations), run, progress.Settle)

		progress.Report(fmt.Sprintf("page %d/%d done", page+1, pages))
	}

	stats.BatchStats = progress.Stats()
	progress.Report(fmt.Sprintf("phase %s complete", phase.Name))

	return stats, nil
}

func taskLogger(logger log.Logger, task internal.PageTask) log.Logger {
	return logger.WithFields(logrus.Fields{
		"Keyword":  task.Keyword.Slug,
		"Location": task.Location.Slug,
		"Url":      task.Url(),
	})
}
