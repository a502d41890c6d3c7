package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/georgesolomos/eiep/internal/config"
	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/eiep13a"
	"github.com/georgesolomos/eiep/internal/eiep3"
	"github.com/georgesolomos/eiep/internal/store/sqlite"
	"github.com/georgesolomos/eiep/internal/usage"
)

func main() {
	os.Exit(run())
}

func run() int {
	path := flag.String("path", "", "The path to the EIEP file to read")
	configPath := flag.String("config", "", "Optional INI configuration file")
	dbPath := flag.String("db", "", "SQLite database to import the file into (overrides DB_PATH)")
	fileType := flag.String("type", "", "File type (ICPHH or ICPCONS). Detected from the filename, then the HDR row, if not set")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Could not load configuration", slog.String("error", err.Error()))
		return 1
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if *path == "" {
		logger.Error("An EIEP path must be provided")
		return 1
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *fileType == "" {
		detected, ok := detectFileType(*path)
		if !ok {
			logger.Error("Could not detect the file type from the filename or header - use -type", slog.String("path", *path))
			return 1
		}
		*fileType = detected
	}

	var store *sqlite.Store
	if cfg.DBPath != "" {
		store, err = sqlite.New(cfg.DBPath)
		if err != nil {
			logger.Error("Could not open database", slog.String("error", err.Error()))
			return 1
		}
		defer store.Close()
	}

	imp := &importer{logger: logger, store: store}
	ctx := context.Background()
	switch *fileType {
	case eiep.FileTypeICPHH:
		report := eiep3.NewReport()
		if len(cfg.ICPHHVersions) > 0 {
			if err := report.RestrictVersions(cfg.ICPHHVersions...); err != nil {
				logger.Error("Invalid ICPHH_VERSIONS", slog.String("error", err.Error()))
				return 1
			}
		}
		calc := usage.NewCalculator(logger)
		_, err = runImport(ctx, imp, *path, report, eiep3.NewParser(logger, report), func(r *eiep3.DetailRecord) {
			calc.Add(r)
		})
		if err == nil {
			logConsumption(logger, calc)
		}
	case eiep.FileTypeICPCONS:
		report := eiep13a.NewReport()
		_, err = runImport(ctx, imp, *path, report, eiep13a.NewParser(logger, report), nil)
	default:
		logger.Error("Unsupported file type", slog.String("type", *fileType))
		return 1
	}
	if err != nil {
		logger.Error("Could not read EIEP file",
			slog.String("error", err.Error()),
			slog.String("class", classify(err)))
		return 1
	}
	return 0
}

// detectFileType tries the filename convention first. ICPCONS names don't carry the
// month and date tokens, so it falls back to the header row.
func detectFileType(path string) (string, bool) {
	if fileType, ok := eiep.DetectFileType(filepath.Base(path)); ok {
		return fileType, true
	}
	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer file.Close()
	return eiep.PeekFileType(file)
}

// logConsumption reports the average monthly consumption of the file's main ICP. Files
// covering less than two weeks don't have enough data for one.
func logConsumption(logger *slog.Logger, calc *usage.Calculator) {
	icp, ok := calc.PrimaryICP()
	if !ok {
		return
	}
	consumption, err := calc.Monthly(icp)
	if err != nil {
		logger.Debug("No monthly consumption", slog.String("icp", icp), slog.String("reason", err.Error()))
		return
	}
	attrs := make([]any, 0, len(consumption.Months))
	for _, m := range consumption.Months {
		attrs = append(attrs, slog.String(m.String(), consumption.AveragePerMonth[m-1].StringFixed(eiep.DecimalPlaces)))
	}
	logger.Info("Monthly consumption",
		slog.String("icp", icp),
		slog.String("averageKWh", consumption.AverageMonthly.StringFixed(eiep.DecimalPlaces)),
		slog.Group("perMonthKWh", attrs...),
	)
}

// classify names the operational response an error calls for.
func classify(err error) string {
	switch {
	case eiep.IsUnsupportedVersion(err):
		return "unsupported version"
	case eiep.IsEnvironment(err):
		return "environment"
	case eiep.IsBadFile(err):
		return "bad file"
	default:
		return "unknown"
	}
}
