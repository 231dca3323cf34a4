// Command ridership-export writes the dashboard tables or charts for one filter
// to disk without starting the server.
//
//	ridership-export -modes subways,lirr -granularity ME -start 2022-01-01 -format xlsx
//	ridership-export -chart percentage -out recovery.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mtapulse/internal/config"
	"mtapulse/internal/dataprocessing"
	"mtapulse/internal/exporter"
	"mtapulse/internal/infrastructure"
	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	"mtapulse/pkg/contracts/domain"
)

type options struct {
	data        string
	modes       string
	granularity string
	start       string
	end         string
	format      string
	table       string
	chart       string
	out         string
	dir         string
	width       int
	height      int
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("ridership-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.data, "data", "", "ridership CSV (defaults to the configured data file)")
	fs.StringVar(&o.modes, "modes", "", "comma separated mode keys (defaults to subways,buses,bridges-tunnels)")
	fs.StringVar(&o.granularity, "granularity", "", "D | W | ME | QE | YE")
	fs.StringVar(&o.start, "start", "", "first day, YYYY-MM-DD")
	fs.StringVar(&o.end, "end", "", "last day, YYYY-MM-DD")
	fs.StringVar(&o.format, "format", "csv", "csv | xlsx")
	fs.StringVar(&o.table, "table", "absolute", "absolute | percentage (csv only)")
	fs.StringVar(&o.chart, "chart", "", "area | percentage; writes a PNG instead of a table")
	fs.StringVar(&o.out, "out", "", "output file (defaults to a name derived from the filter)")
	fs.StringVar(&o.dir, "dir", ".", "output directory when -out is not set")
	fs.IntVar(&o.width, "width", presentation.DefaultChartWidth, "chart width in pixels")
	fs.IntVar(&o.height, "height", presentation.DefaultChartHeight, "chart height in pixels")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr)

	if o.data == "" {
		o.data = cfg.Data.CSVPath
	}
	dataset, err := dataprocessing.NewLoader(logger).Load(ctx, o.data)
	if err != nil {
		return err
	}

	pandemicStart, err := cfg.PandemicStartDate()
	if err != nil {
		return fmt.Errorf("invalid pandemic start date: %w", err)
	}
	presentationOpts := presentation.DefaultOptions()
	presentationOpts.PandemicStart = pandemicStart

	svc, err := services.NewDashboardService(dataset, services.DashboardOptions{Presentation: presentationOpts}, logger)
	if err != nil {
		return err
	}

	req := services.FilterRequest{Granularity: o.granularity, StartDate: o.start, EndDate: o.end}
	if o.modes != "" {
		req.Modes = strings.Split(o.modes, ",")
	}
	state, err := svc.ResolveFilter(req)
	if err != nil {
		return err
	}

	var path string
	if o.chart != "" {
		path, err = writeChart(ctx, svc, state, o)
	} else {
		path, err = writeTable(ctx, svc, state, o, logger)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, path)
	return nil
}

func outputPath(o options, name string) string {
	if o.out != "" {
		return o.out
	}
	return filepath.Join(o.dir, name)
}

func writeTable(ctx context.Context, svc *services.DashboardService, state domain.FilterState, o options, logger *slog.Logger) (string, error) {
	format, err := exporter.ParseFormat(o.format)
	if err != nil {
		return "", err
	}
	table, err := exporter.ParseTableKind(o.table)
	if err != nil {
		return "", err
	}

	result, err := svc.Result(ctx, state)
	if err != nil {
		return "", err
	}

	path := outputPath(o, exporter.Filename(table, state, format))
	switch format {
	case exporter.FormatXLSX:
		err = exporter.NewXLSXWriter(logger).WriteFile(path, result)
	default:
		err = exporter.NewCSVWriter(logger).WriteFile(path, table.Select(result), exporter.WriteOptions{})
	}
	return path, err
}

func writeChart(ctx context.Context, svc *services.DashboardService, state domain.FilterState, o options) (string, error) {
	n := state.Normalize()
	name := fmt.Sprintf("ridership_%s_%s_%s_%s.png", o.chart, n.Granularity,
		n.StartDate.Format(domain.DateLayout), n.EndDate.Format(domain.DateLayout))
	path := outputPath(o, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := svc.RenderChart(ctx, state, o.chart, f, o.width, o.height); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
