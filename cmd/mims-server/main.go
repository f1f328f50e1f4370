// Package main implements the mims web server: it loads the dataset once,
// runs the analysis pipeline, and serves the rendered report and its JSON
// aggregates.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/wristlab/mims/pkg/mims"
	"github.com/wristlab/mims/pkg/report"
)

//go:embed templates/home.html
var homeTemplate string

var (
	port     = flag.String("port", "8080", "Port for web server")
	dataPath = flag.String("data", "", "Path to the dataset CSV (or set MIMS_DATA)")
	dataURL  = flag.String("data-url", "", "HTTP source for the dataset (or set MIMS_DATA_URL)")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	version  = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{requests: make(map[string][]time.Time)}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	// Rate limit: 30 requests per minute per IP.
	if len(valid) >= 30 {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("mims Server v1.2.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *dataPath == "" {
		*dataPath = os.Getenv("MIMS_DATA")
	}
	if *dataURL == "" {
		*dataURL = os.Getenv("MIMS_DATA_URL")
	}

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"data", *dataPath,
		"data_url", *dataURL)

	analyzer := mims.NewWithLogger(context.Background(), logger,
		mims.WithDataPath(*dataPath),
		mims.WithDataURL(*dataURL),
		mims.WithMemoryOnlyCache(),
	)
	defer func() {
		if err := analyzer.Close(); err != nil {
			logger.Error("Failed to close analyzer", "error", err)
		}
	}()

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	data, err := analyzer.Analyze(loadCtx)
	loadCancel()
	if err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}

	cache := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      100,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](12 * time.Hour),
	})

	srv := &server{
		data:    data,
		cache:   cache,
		limiter: newRateLimiter(),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleHome)
	mux.HandleFunc("GET /report", srv.handleReport)
	mux.HandleFunc("GET /api/v1/summary", srv.handleSummary)

	httpSrv := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

type server struct {
	data    *report.Data
	cache   *otter.Cache[string, []byte]
	limiter *rateLimiter
	logger  *slog.Logger
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}

		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warn("Rate limit exceeded", "client_ip", clientIP(r), "path", r.URL.Path)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.New("home").Parse(homeTemplate)
	if err != nil {
		s.logger.Error("Template parsing failed", "error", err, "path", r.URL.Path)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, s.data.Cohort); err != nil {
		s.logger.Error("Template execution failed", "error", err)
	}
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	body, ok := s.cache.GetIfPresent("report")
	if !ok {
		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, s.data); err != nil {
			s.logger.Error("Report rendering failed", "error", err, "path", r.URL.Path)
			http.Error(w, "Report error", http.StatusInternalServerError)
			return
		}
		body = buf.Bytes()
		s.cache.Set("report", body)
	}

	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("Failed to write report response", "error", err)
	}
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	body, ok := s.cache.GetIfPresent("summary")
	if !ok {
		var err error
		body, err = json.Marshal(s.data)
		if err != nil {
			s.logger.Error("Summary encoding failed", "error", err, "path", r.URL.Path)
			http.Error(w, "Encoding error", http.StatusInternalServerError)
			return
		}
		s.cache.Set("summary", body)
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("Failed to write summary response", "error", err)
	}
}
