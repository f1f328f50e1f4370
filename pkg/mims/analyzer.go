// Package mims runs the wrist-accelerometer analysis pipeline: load the
// cohort, reshape to long form, aggregate, and assemble the report data.
package mims

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/dlcache"
	"github.com/wristlab/mims/pkg/narrative"
	"github.com/wristlab/mims/pkg/report"
	"github.com/wristlab/mims/pkg/reshape"
	"github.com/wristlab/mims/pkg/stats"
)

// Analyzer runs the analysis pipeline once per Analyze call.
type Analyzer struct {
	logger       *slog.Logger
	cache        *dlcache.Cache
	fetcher      *dataset.Fetcher
	dataPath     string
	dataURL      string
	geminiAPIKey string
	geminiModel  string
	gcpProject   string
}

// New creates an Analyzer with the default logger.
func New(ctx context.Context, opts ...Option) *Analyzer {
	return NewWithLogger(ctx, slog.Default(), opts...)
}

// NewWithLogger creates an Analyzer with a custom logger.
func NewWithLogger(ctx context.Context, logger *slog.Logger, opts ...Option) *Analyzer {
	optHolder := &OptionHolder{}
	for _, opt := range opts {
		opt(optHolder)
	}

	var cache *dlcache.Cache
	switch {
	case optHolder.noCache:
		logger.Info("download caching disabled")
	case optHolder.memoryOnlyCache:
		cache = dlcache.NewMemoryOnly(12*time.Hour, logger)
	default:
		cacheDir := optHolder.cacheDir
		if cacheDir == "" {
			if userCacheDir, err := os.UserCacheDir(); err == nil {
				cacheDir = filepath.Join(userCacheDir, "mims")
			} else {
				logger.Debug("could not determine user cache directory", "error", err)
			}
		}
		if cacheDir != "" {
			var err error
			cache, err = dlcache.New(ctx, cacheDir, 14*24*time.Hour, logger)
			if err != nil {
				// Cache is optional, continue without it.
				logger.Warn("cache initialization failed", "error", err, "cache_dir", cacheDir)
				cache = nil
			}
		}
	}

	return &Analyzer{
		logger:       logger,
		cache:        cache,
		fetcher:      dataset.NewFetcher(cache, logger),
		dataPath:     optHolder.dataPath,
		dataURL:      optHolder.dataURL,
		geminiAPIKey: optHolder.geminiAPIKey,
		geminiModel:  optHolder.geminiModel,
		gcpProject:   optHolder.gcpProject,
	}
}

// Close flushes and closes the download cache.
func (a *Analyzer) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// Analyze loads the configured dataset and computes every aggregate view the
// report needs.
func (a *Analyzer) Analyze(ctx context.Context) (*report.Data, error) {
	participants, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("dataset loaded", "participants", len(participants))

	samples, err := reshape.Long(participants)
	if err != nil {
		return nil, fmt.Errorf("reshaping dataset: %w", err)
	}
	a.logger.Debug("reshaped to long form", "samples", len(samples))

	means, err := stats.DailyMeans(participants)
	if err != nil {
		return nil, fmt.Errorf("computing daily means: %w", err)
	}
	windows, err := stats.SmoothedProfile(participants)
	if err != nil {
		return nil, fmt.Errorf("computing smoothed profile: %w", err)
	}
	trend := stats.AgeTrend(samples)

	data := &report.Data{
		Title:          "Wrist-worn accelerometer activity report",
		GeneratedAt:    time.Now(),
		Cohort:         cohortOf(participants),
		TimeBandGender: stats.ByTimeBandGender(samples),
		AgeBandGender:  stats.ByAgeBandGender(means),
		Windows:        windows,
		Hourly:         stats.HourlyProfile(samples),
		AgeTrend:       trend,
		GenderGap:      stats.GenderGap(trend),
	}
	a.logger.Info("aggregates computed",
		"time_band_rows", len(data.TimeBandGender),
		"age_band_rows", len(data.AgeBandGender),
		"trend_points", len(data.AgeTrend))
	return data, nil
}

// Narrate asks Gemini for a written commentary on the aggregates. It needs
// either an API key or a GCP project configured.
func (a *Analyzer) Narrate(ctx context.Context, data *report.Data) (*narrative.Response, error) {
	if a.geminiAPIKey == "" && a.gcpProject == "" {
		return nil, fmt.Errorf("narrative generation needs a Gemini API key or GCP project")
	}
	var cache narrative.Cache
	if a.cache != nil {
		cache = a.cache
	}
	client := narrative.NewClient(a.geminiAPIKey, a.geminiModel, a.gcpProject, cache, a.logger)
	return client.Generate(ctx, narrative.BuildPrompt(data))
}

func (a *Analyzer) load(ctx context.Context) ([]dataset.Participant, error) {
	switch {
	case a.dataPath != "":
		a.logger.Debug("loading dataset from file", "path", a.dataPath)
		return dataset.Load(a.dataPath)
	case a.dataURL != "":
		a.logger.Debug("loading dataset from URL", "url", a.dataURL)
		return a.fetcher.Fetch(ctx, a.dataURL)
	default:
		return nil, fmt.Errorf("no dataset configured: set a data path or URL")
	}
}

func cohortOf(participants []dataset.Participant) report.Cohort {
	cohort := report.Cohort{Participants: len(participants)}
	for i := range participants {
		p := &participants[i]
		switch p.Gender {
		case dataset.Male:
			cohort.Males++
		case dataset.Female:
			cohort.Females++
		}
		if i == 0 || p.Age < cohort.AgeMin {
			cohort.AgeMin = p.Age
		}
		if i == 0 || p.Age > cohort.AgeMax {
			cohort.AgeMax = p.Age
		}
	}
	return cohort
}
