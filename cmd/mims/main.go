// Package main implements the mims CLI: it runs the wrist-accelerometer
// activity analysis once and writes the rendered report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/histogram"
	"github.com/wristlab/mims/pkg/mims"
	"github.com/wristlab/mims/pkg/report"
)

var (
	dataPath     = flag.String("data", "", "Path to the dataset CSV (or set MIMS_DATA)")
	dataURL      = flag.String("data-url", "", "HTTP source for the dataset (or set MIMS_DATA_URL)")
	outPath      = flag.String("out", "report.html", "Where to write the HTML report")
	markdownPath = flag.String("markdown", "", "Also write a markdown digest to this path")
	cacheDir     = flag.String("cache-dir", "", "Cache directory (or set CACHE_DIR)")
	noCache      = flag.Bool("no-cache", false, "Disable download caching")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key for -narrative (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "gemini-2.5-flash-lite", "Gemini model to use (or set GEMINI_MODEL)")
	gcpProject   = flag.String("gcp-project", "", "GCP project ID (or set GCP_PROJECT)")
	narrate      = flag.Bool("narrative", false, "Ask Gemini for a written summary of the aggregates")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("mims CLI v1.2.0")
		return
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Environment fallbacks for anything not given as a flag.
	if *dataPath == "" {
		*dataPath = os.Getenv("MIMS_DATA")
	}
	if *dataURL == "" {
		*dataURL = os.Getenv("MIMS_DATA_URL")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "gemini-2.5-flash-lite" && os.Getenv("GEMINI_MODEL") != "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *gcpProject == "" {
		*gcpProject = os.Getenv("GCP_PROJECT")
	}

	// Errors route back through run so the analyzer's deferred Close still
	// writes its final cache snapshot before the process exits.
	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	if *dataPath == "" && *dataURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -data cohort.csv [flags]\n", os.Args[0])
		flag.PrintDefaults()
		return 1
	}

	analyzerOpts := []mims.Option{
		mims.WithDataPath(*dataPath),
		mims.WithDataURL(*dataURL),
		mims.WithGeminiAPIKey(*geminiAPIKey),
		mims.WithGeminiModel(*geminiModel),
		mims.WithGCPProject(*gcpProject),
	}
	if *noCache {
		analyzerOpts = append(analyzerOpts, mims.WithNoCache())
	} else if *cacheDir != "" {
		analyzerOpts = append(analyzerOpts, mims.WithCacheDir(*cacheDir))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	analyzer := mims.NewWithLogger(ctx, logger, analyzerOpts...)
	defer func() {
		if err := analyzer.Close(); err != nil {
			logger.Error("Failed to close analyzer", "error", err)
		}
	}()

	data, err := analyzer.Analyze(ctx)
	if err != nil {
		logger.Error("Analysis failed", "error", err)
		return 1
	}

	printSummary(data)
	fmt.Print(histogram.Render(data.Hourly))

	if err := writeReport(*outPath, data); err != nil {
		logger.Error("Failed to write report", "error", err)
		return 1
	}
	fmt.Printf("\n📄 Report:        %s\n", *outPath)

	if *markdownPath != "" {
		digest, err := report.Markdown(data)
		if err != nil {
			logger.Error("Failed to render markdown digest", "error", err)
			return 1
		}
		if err := os.WriteFile(*markdownPath, []byte(digest), 0o644); err != nil { //nolint:gosec // report output
			logger.Error("Failed to write markdown digest", "error", err)
			return 1
		}
		fmt.Printf("📝 Digest:        %s\n", *markdownPath)
	}

	if *narrate {
		printNarrative(ctx, analyzer, data)
	}
	return 0
}

func writeReport(path string, data *report.Data) error {
	file, err := os.Create(path) //nolint:gosec // report output path from flag
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := report.WriteHTML(file, data); err != nil {
		file.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	return file.Close()
}

func printSummary(data *report.Data) {
	fmt.Printf("\n🏃 Cohort:        %d participants (%d male, %d female), ages %.0f–%.0f\n",
		data.Cohort.Participants, data.Cohort.Males, data.Cohort.Females,
		data.Cohort.AgeMin, data.Cohort.AgeMax)
	fmt.Println(strings.Repeat("─", 50))

	fmt.Println("⏰ Mean MIMS by time of day")
	for _, gender := range []string{string(dataset.Male), string(dataset.Female)} {
		var parts []string
		for _, row := range data.TimeBandGender {
			if string(row.Gender) != gender {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %.1f", row.TimeBand, row.Summary.Mean))
		}
		if len(parts) > 0 {
			fmt.Printf("   %-7s %s\n", gender+":", strings.Join(parts, "  "))
		}
	}

	fmt.Println("\n👥 Daily mean MIMS by age group")
	for _, row := range data.AgeBandGender {
		fmt.Printf("   %-6s %-7s %6.1f  (p2.5 %.1f, p97.5 %.1f, n=%d)\n",
			row.AgeBand, row.Gender, row.Summary.Mean,
			row.Summary.Lower, row.Summary.Upper, row.Summary.Count)
	}
	fmt.Println()
}

func printNarrative(ctx context.Context, analyzer *mims.Analyzer, data *report.Data) {
	narrative, err := analyzer.Narrate(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "narrative generation failed: %v\n", err)
		return
	}

	fmt.Println("\n🤖 Narrative Summary")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("%s\n\n%s\n", narrative.Headline, narrative.Summary)
	if narrative.ConfidenceLevel != "high" {
		fmt.Printf("(confidence: %s)\n", narrative.ConfidenceLevel)
	}
}
