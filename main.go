package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"capacity-planner/config"
	"capacity-planner/formatter"
	"capacity-planner/metrics"
	"capacity-planner/models"
	"capacity-planner/parser"
	"capacity-planner/projection"
	"capacity-planner/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Define flags
	configPath := flag.String("config", "", "Planner config file (YAML); built-in defaults apply when omitted")
	input := flag.String("input", "", "Seed dataset CSV file (required unless -state holds a saved session)")
	editsPath := flag.String("edits", "", "Edit script CSV applied after loading")
	format := flag.String("format", "text", "Output format: text|json|csv|xlsx")
	output := flag.String("output", "capacity-plan.xlsx", "Output file for -format xlsx")
	businessUnit := flag.String("business-unit", "", "Business unit to project (defaults to the only configured one)")
	lobs := flag.String("lobs", "", "Comma-separated LOB filter (empty = all LOBs)")
	interval := flag.String("interval", "week", "Period granularity: week|month")
	from := flag.String("from", "", "Filter range start, YYYY-MM-DD (requires -to)")
	to := flag.String("to", "", "Filter range end, YYYY-MM-DD (requires -from)")
	statePath := flag.String("state", "", "Session state file to restore from and save to")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error validating config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info("metrics server listening", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true, "xlsx": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv, xlsx (got: %s)\n", *format)
		os.Exit(1)
	}

	granularity := models.Week
	switch *interval {
	case "week":
	case "month":
		granularity = models.Month
	default:
		fmt.Printf("Error: interval must be week or month (got: %s)\n", *interval)
		os.Exit(1)
	}

	bu, err := resolveBusinessUnit(cfg, *businessUnit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	dateRange, err := parseDateRange(*from, *to)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	snap, err := loadSnapshot(cfg, *input, *statePath, logger)
	if err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	history := store.NewHistory(snap, cfg.Planning.HistoryLimit)
	if *editsPath != "" {
		if err := applyEdits(history, *editsPath, logger); err != nil {
			fmt.Printf("Error applying edits: %v\n", err)
			os.Exit(1)
		}
	}
	snap = history.Current()

	filter := projection.Filter{
		BusinessUnit: bu,
		Granularity:  granularity,
		DateRange:    dateRange,
	}
	if *lobs != "" {
		for _, name := range strings.Split(*lobs, ",") {
			filter.LOBs = append(filter.LOBs, strings.TrimSpace(name))
		}
	}

	pipeline := projection.New(cfg.BusinessUnitConfig(), cfg.Horizon(granularity),
		cfg.Planning.StandardWorkMinutes, cfg.Planning.DefaultPeriodWindow)
	result := pipeline.Project(snap, filter)
	logger.Info("projection complete",
		zap.String("business_unit", bu),
		zap.Int("periods", len(result.Periods)),
		zap.Int("lobs", lobCount(result)))

	// Output based on format
	switch *format {
	case "json":
		fmt.Print(formatter.FormatJSON(&result))
	case "csv":
		fmt.Print(formatter.FormatCSV(&result))
	case "xlsx":
		file, err := os.Create(*output)
		if err != nil {
			fmt.Printf("Error creating output file: %v\n", err)
			os.Exit(1)
		}
		if err := formatter.WriteXLSX(file, &result); err != nil {
			file.Close()
			fmt.Printf("Error writing workbook: %v\n", err)
			os.Exit(1)
		}
		file.Close()
		logger.Info("workbook written", zap.String("path", *output))
	default: // "text"
		fmt.Print(formatter.FormatText(&result))
	}

	if *statePath != "" {
		if err := snap.Save(*statePath); err != nil {
			logger.Error("failed to save session state", zap.Error(err))
		} else {
			logger.Info("session state saved", zap.String("path", *statePath))
		}
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "capacity_planner"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error("error pushing to Pushgateway", zap.Error(err))
		} else {
			logger.Info("metrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		// but typically batch jobs should use pushgateway or wait
		time.Sleep(100 * time.Millisecond)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zc zap.Config
	if cfg.Format == "text" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// resolveBusinessUnit defaults to the sole configured business unit when the
// flag is empty; with multiple units configured the flag is required.
func resolveBusinessUnit(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		if !cfg.BusinessUnitConfig().HasBusinessUnit(flagValue) {
			return "", fmt.Errorf("business unit %q is not configured", flagValue)
		}
		return flagValue, nil
	}
	if len(cfg.BusinessUnits) == 1 {
		for name := range cfg.BusinessUnits {
			return name, nil
		}
	}
	return "", fmt.Errorf("-business-unit is required when multiple business units are configured")
}

func parseDateRange(from, to string) (*models.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("-from and -to must be used together")
	}
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("invalid -from date: %w", err)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("invalid -to date: %w", err)
	}
	if t.Before(f) {
		return nil, fmt.Errorf("-to must not be before -from")
	}
	return &models.DateRange{From: f, To: t}, nil
}

// loadSnapshot restores a saved session when one exists, otherwise parses
// the seed dataset.
func loadSnapshot(cfg *config.Config, input, statePath string, logger *zap.Logger) (*store.Snapshot, error) {
	if statePath != "" {
		snap, err := store.Load(statePath)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			logger.Info("session state restored", zap.String("path", statePath))
			return snap, nil
		}
	}

	if input == "" {
		return nil, fmt.Errorf("-input flag is required")
	}
	file, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	entries, err := parser.ParseDataset(file, cfg.BusinessUnitConfig())
	if err != nil {
		return nil, err
	}
	logger.Info("seed dataset loaded", zap.String("path", input), zap.Int("lobs", len(entries)))
	return store.New(entries), nil
}

// applyEdits runs the edit script against the history's current snapshot,
// one atomic store mutation per line. Edits referencing unknown LOBs or
// teams are defined no-ops; they are logged and skipped.
func applyEdits(history *store.History, path string, logger *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening edits file: %w", err)
	}
	defer file.Close()

	edits, err := parser.ParseEdits(file)
	if err != nil {
		return err
	}

	for _, edit := range edits {
		snap := history.Current()
		entry, ok := snap.FindLOB(edit.BusinessUnit, edit.LOB)
		if !ok {
			logger.Warn("edit references unknown lob, skipping",
				zap.String("business_unit", edit.BusinessUnit), zap.String("lob", edit.LOB))
			continue
		}
		var next *store.Snapshot
		if edit.Team == "" {
			next = snap.SetLOBField(entry.ID, edit.Period, edit.Value)
		} else {
			field, _ := models.ParseTeamField(edit.Field)
			next = snap.SetTeamField(entry.ID, edit.Team, edit.Period, field, edit.Value)
		}
		if next == snap {
			logger.Warn("edit was a no-op",
				zap.String("lob", edit.LOB), zap.String("team", edit.Team),
				zap.String("field", edit.Field), zap.String("value", edit.Value))
		}
		history.Push(next)
	}
	logger.Info("edit script applied", zap.Int("edits", len(edits)))
	return nil
}

func lobCount(result projection.Result) int {
	n := 0
	for _, row := range result.Rows {
		n += len(row.Children)
	}
	return n
}
