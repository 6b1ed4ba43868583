package pregen

import (
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal/log"
)

const DefaultProgressEvery = 1000

// Progress counts the settled tasks of one phase and logs them every `every`
// tasks. It is only touched by the goroutine driving the phase.
type Progress struct {
	logger     log.Logger
	every      int
	expected   int
	processed  int
	nextReport int
	stats      BatchStats
}

func NewProgress(logger log.Logger, expected, every int) *Progress {
	if every <= 0 {
		every = DefaultProgressEvery
	}

	return &Progress{
		logger:     logger,
		every:      every,
		expected:   expected,
		nextReport: every,
	}
}

// Settle records a chunk of results, logging every failure with the keyword
// and location it belongs to.
func (p *Progress) Settle(results []Result) {
	for _, r := range results {
		p.stats.Record(r)
		p.processed++

		if r.Err != nil {
			p.logger.WithFields(logrus.Fields{
				"Keyword":      r.Task.Keyword.Slug,
				"Location":     r.Task.Location.Slug,
				"LocationType": r.Task.Location.Type,
				"Province":     r.Task.Location.ProvinceSlug,
				"Url":          r.Task.Url(),
				"Error":        r.Err,
			}).Error("failed to generate page {Url}")
		}
	}

	if p.processed >= p.nextReport {
		p.Report("progress")
		for p.nextReport <= p.processed {
			p.nextReport += p.every
		}
	}
}

func (p *Progress) Report(msg string) {
	percentage := 100.0
	if p.expected > 0 {
		percentage = float64(p.processed) / float64(p.expected) * 100
	}

	p.logger.WithFields(logrus.Fields{
		"Processed":  p.processed,
		"Expected":   p.expected,
		"Percentage": percentage,
		"Created":    p.stats.Created,
		"Updated":    p.stats.Updated,
		"Skipped":    p.stats.Skipped,
		"Errors":     p.stats.Errors,
	}).Infof("%s: {Processed}/{Expected} pages, {Created} created, {Updated} updated, {Skipped} skipped, {Errors} errors", msg)
}

func (p *Progress) Processed() int {
	return p.processed
}

func (p *Progress) Stats() BatchStats {
	return p.stats
}
