package rembed

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/soundprediction/rembed"
	"github.com/soundprediction/rembed/pkg/config"
	rembedLogger "github.com/soundprediction/rembed/pkg/logger"
	"github.com/soundprediction/rembed/pkg/telemetry"
)

// app bundles what every command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *rembed.Client
	errorLog *telemetry.ParquetHandler
}

// newApp loads configuration, applies overrides, builds the logger and
// registers the configured clients.
func newApp(overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	a := &app{cfg: cfg}
	colorHandler := rembedLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: rembedLogger.ParseLevel(cfg.Log.Level),
	})
	a.logger = slog.New(colorHandler)

	// Initialize Error Tracking Logger
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
		if err != nil {
			a.logger.Warn("failed to initialize error tracking", "error", err)
		} else {
			a.errorLog = parquetHandler
			a.logger = slog.New(parquetHandler)
		}
	}

	client, err := rembed.New(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

// Close flushes telemetry.
func (a *app) Close() {
	if err := a.client.Close(); err != nil {
		a.logger.Warn("failed to flush batch statistics", "error", err)
	}
	if a.errorLog != nil {
		if err := a.errorLog.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to flush error log: %v\n", err)
		}
	}
}

// readLines returns the non-empty lines of path, or of stdin when path is "-".
func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
