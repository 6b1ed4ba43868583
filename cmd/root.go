package cmd

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/content"
	"github.com/stylrsa/seo-pregen/internal/db"
	"github.com/stylrsa/seo-pregen/internal/log"
	"github.com/stylrsa/seo-pregen/internal/pregen"
	"github.com/stylrsa/seo-pregen/internal/util"
	"github.com/uptrace/bun"
	"time"
)

// Options maps the environment config onto generator options.
func Options(config *util.Config) pregen.Options {
	options := pregen.DefaultOptions()
	options.BatchSize = config.BatchSize.Int()
	options.ParallelLimit = config.ParallelLimit.Int()
	options.CacheTTL = time.Duration(config.CacheTtlHours.Int()) * time.Hour
	options.ProgressEvery = config.ProgressEvery.Int()
	options.Retry.MaxAttempts = config.MaxRetries.Int()

	return options
}

// Run generates every seo page. Failing pages are counted and logged, the
// returned error is reserved for failures that stop the whole run. The phases
// that did run are summarized either way.
func Run(ctx context.Context, connection bun.IDB, config *util.Config) error {
	logger := log.AddGlobalField("Job", "seo-pregen")

	if err := db.CreatePageCacheTable(ctx, connection); err != nil {
		return fmt.Errorf("preparing page cache table: %w", err)
	}

	repository := internal.NewRepository(connection)
	generator := pregen.NewGenerator(pregen.Deps{
		Keywords:   repository,
		Locations:  repository,
		Pages:      repository,
		Aggregates: repository,
		Composer:   content.NewComposer(config.FrontendUrl.Value),
	}, Options(config), logger)

	stats, err := generator.Run(ctx)

	for _, phase := range stats.Phases {
		logger.WithFields(logrus.Fields{
			"Phase":       phase.Name,
			"Locations":   phase.Locations,
			"Created":     phase.Created,
			"Updated":     phase.Updated,
			"Skipped":     phase.Skipped,
			"Errors":      phase.Errors,
			"FailedPages": phase.FailedPages,
		}).Info("phase {Phase} summary")
	}

	if stats.Total.Errors > 0 || stats.FailedPages > 0 {
		logger.WithFields(logrus.Fields{
			"Errors":      stats.Total.Errors,
			"FailedPages": stats.FailedPages,
		}).Warn("run finished with {Errors} errors and {FailedPages} unreadable location pages")
	}

	return err
}
