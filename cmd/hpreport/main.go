// Command hpreport post-processes heat-pump test-bench recordings: it
// loads the logger files, derives physical quantities, classifies
// samples by steady-state duration, runs plausibility checks and writes
// CSV and XLSX reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gstrugala/hp-tests/internal/config"
	"github.com/gstrugala/hp-tests/internal/dataset"
	"github.com/gstrugala/hp-tests/internal/exporter"
	"github.com/gstrugala/hp-tests/internal/infrastructure"
	"github.com/gstrugala/hp-tests/internal/ingest"
	"github.com/gstrugala/hp-tests/internal/quantity"
	"github.com/gstrugala/hp-tests/internal/steadystate"
	"github.com/gstrugala/hp-tests/internal/thermo"
	"github.com/gstrugala/hp-tests/internal/units"
	"github.com/gstrugala/hp-tests/internal/validation"
)

const defaultQuantities = "t,f,flowrt_r,pin,pout,Pel,Qcond,Qev,Pcomp"

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to the search locations)")
	dataDir := flag.String("data", "", "directory with logger recordings (overrides config)")
	nameTable := flag.String("names", "", "name-conversions file (overrides config)")
	outputDir := flag.String("out", "", "output directory for reports (overrides config)")
	quantityList := flag.String("quantities", defaultQuantities, "comma-separated quantities to export")
	filterSpec := flag.String("filter", "", "row filter, e.g. \"file_index=0\" or \"test_period=26/09 08:36 - 10:12\"")
	threshold := flag.Float64("threshold", 0, "steady-state frequency std threshold in Hz (overrides config)")
	binEdges := flag.String("bins", "", "comma-separated bin edges, e.g. \"1m,30m,1h\" (overrides config)")
	traceExporter := flag.String("trace", "none", "trace exporter: stdout or none")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *nameTable != "" {
		cfg.Paths.NameTable = *nameTable
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *threshold != 0 {
		cfg.SteadyState.StdThreshold = *threshold
	}
	if *binEdges != "" {
		var edges config.Durations
		if err := edges.Decode(*binEdges); err != nil {
			slog.Error("Invalid bin edges", "error", err)
			os.Exit(1)
		}
		cfg.SteadyState.BinEdges = edges
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.TraceExporter = *traceExporter
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	start := time.Now()

	filter, err := parseFilter(*filterSpec)
	if err != nil {
		slog.Error("Invalid filter", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, filter, strings.Split(*quantityList, ",")); err != nil {
		logger.ErrorContext(ctx, "Processing failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Processing complete",
		"duration", time.Since(start),
		"output_dir", cfg.Paths.OutputDir)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("Tracing shutdown failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, filter dataset.Filter, names []string) error {
	logger := infrastructure.LoggerFromContext(ctx)

	pv := validation.NewPathValidator(logger)
	if err := pv.ValidateRecordingsDir(ctx, cfg.Paths.DataDir); err != nil {
		return err
	}
	if err := pv.ValidateNameTable(ctx, cfg.Paths.NameTable); err != nil {
		return err
	}
	if err := pv.ValidateReportDir(ctx, cfg.Paths.OutputDir); err != nil {
		return err
	}

	paths, err := ingest.DiscoverFiles(cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("discover recordings in %s: %w", cfg.Paths.DataDir, err)
	}
	ds, err := ingest.Load(ctx, paths...)
	if err != nil {
		return fmt.Errorf("load recordings: %w", err)
	}
	logger.InfoContext(ctx, "Recordings loaded",
		"files", len(paths),
		"samples", ds.Len())

	table, err := dataset.LoadNameTable(cfg.Paths.NameTable)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg.Fluid)
	if err != nil {
		return err
	}

	store := quantity.NewStore(ds, table, units.NewRegistry(), provider, logger)

	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	resolved, err := store.Resolve(ctx, names, filter, false)
	if err != nil {
		return fmt.Errorf("derive quantities: %w", err)
	}

	rows, err := ds.Subset(filter)
	if err != nil {
		return err
	}
	interval, err := ds.Interval()
	if err != nil {
		return err
	}

	// Steady-state segmentation over the compressor frequency.
	freq, err := store.Get(ctx, "f")
	if err != nil {
		return err
	}
	durations, err := steadystate.Segment(freq[0].Values, cfg.SteadyState.StdThreshold, interval)
	if err != nil {
		return fmt.Errorf("steady-state segmentation: %w", err)
	}
	bins, err := steadystate.NewBins(cfg.SteadyState.BinEdges, cfg.SteadyState.OpenLow, cfg.SteadyState.OpenHigh)
	if err != nil {
		return err
	}
	labels := bins.Apply(durations)
	if err := ds.SetLabel("steady_state_time", dataset.Scatter(ds.Len(), rows, labels)); err != nil {
		return err
	}

	findings, err := validation.NewRunner(store, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("plausibility checks: %w", err)
	}

	return exportReports(ctx, cfg, ds, rows, orderedQuantities(names, resolved), labels, findings, logger)
}

// orderedQuantities returns the resolved quantities in request order.
func orderedQuantities(names []string, resolved map[string]*units.Quantity) []*units.Quantity {
	out := make([]*units.Quantity, 0, len(names))
	for _, name := range names {
		if q, ok := resolved[name]; ok {
			out = append(out, q)
		}
	}
	return out
}

func exportReports(ctx context.Context, cfg *config.Config, ds *dataset.Dataset, rows []int,
	quantities []*units.Quantity, labels []string, findings []validation.Finding, logger *slog.Logger) error {

	timestamps := make([]time.Time, len(rows))
	for i, r := range rows {
		timestamps[i] = ds.Timestamps()[r]
	}

	series, err := exporter.QuantityTable(timestamps, quantities, "steady_state_time", labels)
	if err != nil {
		return err
	}
	summary, err := exporter.SummaryTable(labels, quantities)
	if err != nil {
		return err
	}
	findingsTable := exporter.FindingsTable(findings)

	csvWriter := exporter.NewCSVWriter(cfg.Paths.OutputDir, logger)
	if err := csvWriter.WriteSimpleCSV("quantities.csv", series.Headers, series.Records); err != nil {
		return err
	}
	if err := csvWriter.WriteSimpleCSV("summary.csv", summary.Headers, summary.Records); err != nil {
		return err
	}
	if err := csvWriter.WriteSimpleCSV("findings.csv", findingsTable.Headers, findingsTable.Records); err != nil {
		return err
	}

	xlsxWriter := exporter.NewXLSXWriter(cfg.Paths.OutputDir, logger)
	return xlsxWriter.WriteWorkbook("report.xlsx", []exporter.Sheet{
		{Name: "quantities", Table: series},
		{Name: "summary", Table: summary},
		{Name: "findings", Table: findingsTable},
	})
}

// buildProvider selects the property model for the configured fluid.
func buildProvider(fluid string) (thermo.PropertyProvider, error) {
	switch strings.ToUpper(fluid) {
	case "R410A":
		return thermo.NewR410A(), nil
	default:
		return nil, fmt.Errorf("no property model for fluid %q", fluid)
	}
}

// parseFilter parses "key=value,key=value" into a row filter.
func parseFilter(spec string) (dataset.Filter, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	filter := make(dataset.Filter)
	for _, pair := range strings.Split(spec, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("filter term %q is not key=value", pair)
		}
		filter[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return filter, nil
}
