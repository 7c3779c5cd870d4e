package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/narrator/internal/duckdb"
	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/output"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/render"
	"github.com/tinytelemetry/narrator/internal/reshape"
	"github.com/tinytelemetry/narrator/internal/summarize"
	"github.com/tinytelemetry/narrator/internal/tui"
)

// session is a loaded corpus plus everything needed to summarize it.
type session struct {
	cfg     appConfig
	printer *output.Printer
	corpus  model.CorpusReader
	closer  io.Closer
	index   *period.Index
	rows    int64
}

// corpusInfo describes the loaded corpus for the startup banner.
type corpusInfo struct {
	rows     int64
	columns  []string
	firstDay string
	lastDay  string
	periods  int
}

func newPrinter(cfg appConfig) (*output.Printer, error) {
	mode, err := output.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(output.PrinterOptions{ColorMode: mode, Quiet: cfg.Quiet}), nil
}

func openSession(cfg appConfig) (*session, error) {
	if cfg.Corpus == "" {
		return nil, fmt.Errorf("no corpus configured: set corpus in the config file or pass --corpus")
	}
	printer, err := newPrinter(cfg)
	if err != nil {
		return nil, err
	}
	index, err := cfg.periodIndex()
	if err != nil {
		return nil, err
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	n, err := store.LoadCSV(cfg.Corpus)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &session{cfg: cfg, printer: printer, corpus: store, closer: store, index: index, rows: n}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

// describe reads the column list and date span of the corpus.
func (s *session) describe() (corpusInfo, error) {
	info := corpusInfo{rows: s.rows, periods: s.index.Len()}
	cols, err := s.corpus.Columns()
	if err != nil {
		return info, fmt.Errorf("reading corpus columns: %w", err)
	}
	info.columns = cols
	if s.cfg.DateField != "" && slices.Contains(cols, s.cfg.DateField) {
		if info.firstDay, info.lastDay, err = s.corpus.DateBounds(s.cfg.DateField); err != nil {
			return info, fmt.Errorf("reading date bounds: %w", err)
		}
	}
	return info, nil
}

// summarize runs the configured aggregations, or only those named in only.
func (s *session) summarize(ctx context.Context, only []string) (*summarize.Report, error) {
	reqs, err := s.cfg.requests()
	if err != nil {
		return nil, err
	}
	if len(only) > 0 {
		reqs, err = selectRequests(reqs, only)
		if err != nil {
			return nil, err
		}
	}

	rows, err := s.corpus.Rows(model.RowMapping{
		IDField: s.cfg.IDField,
		Fields:  columns(reqs),
		Where:   s.cfg.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	log.Printf("narrator: %d of %d rows selected for %d aggregations", len(rows), s.rows, len(reqs))

	return summarize.New(s.index).Run(ctx, rows, reqs)
}

func selectRequests(reqs []summarize.Request, names []string) ([]summarize.Request, error) {
	byName := make(map[string]summarize.Request, len(reqs))
	for _, r := range reqs {
		byName[r.Name] = r
	}
	out := make([]summarize.Request, 0, len(names))
	for _, n := range names {
		r, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown aggregation %q", n)
		}
		out = append(out, r)
	}
	return out, nil
}

func runSummarize(ctx context.Context, cfg appConfig, only []string) error {
	cleanupLogger := configureRuntimeLogger(cfg.Verbose)
	defer cleanupLogger()

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if !cfg.Quiet {
		info, err := s.describe()
		if err != nil {
			return err
		}
		printStartupBanner(s.printer.Out(), cfg, info)
	}

	report, err := s.summarize(ctx, only)
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		if err := s.printResult(res); err != nil {
			return err
		}
		if cfg.OutputDir != "" {
			if err := writeResult(cfg, res); err != nil {
				return err
			}
		}
	}

	if cfg.OutputDir != "" {
		s.printer.Success("wrote %d aggregations to %s", len(report.Results), shortenPath(cfg.OutputDir))
	}
	s.printer.Print("%s", s.printer.Dim("run "+report.RunID.String()))
	return nil
}

func (s *session) printResult(res *summarize.Result) error {
	p := s.printer
	cfg := s.cfg
	p.Header(fmt.Sprintf("%s (%s)", res.Name, res.Option))

	if res.Stats.Dropped > 0 {
		p.Warning("%s: %d counts fell outside the configured days or periods", res.Name, res.Stats.Dropped)
	}

	if res.Grouped != nil && res.Grouped.Granularity() == model.GranularityPeriod {
		wide, err := reshape.WideForm(res.Grouped)
		if err != nil {
			return err
		}
		if err := output.WideTable(p.Out(), wide, p.IsQuiet()).Render(); err != nil {
			return err
		}
		p.Block(render.PeriodBars("", wide, cfg.ChartWidth, cfg.ChartHeight))
		return nil
	}

	if len(res.Pairs) == 0 {
		p.Info("no matching terms")
		return nil
	}
	if err := output.PairsTable(p.Out(), res.Pairs, cfg.TopN, p.IsQuiet()).Render(); err != nil {
		return err
	}
	p.Block(render.TopList("", res.Pairs, cfg.ChartWidth, cfg.TopN))
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileBase(name string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	if base == "" {
		base = "aggregation"
	}
	return base
}

// writeResult writes the CSV files and chart of one result into the output
// directory.
func writeResult(cfg appConfig, res *summarize.Result) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(cfg.OutputDir, fileBase(res.Name))

	if err := writeCSV(base+".csv", func(w io.Writer) error {
		return reshape.WritePairsCSV(w, res.Pairs)
	}); err != nil {
		return err
	}

	chart := render.Bars(res.Name, topPairs(res.Pairs, cfg.TopN), cfg.ChartWidth, cfg.ChartHeight)

	if res.Grouped != nil {
		if err := writeCSV(base+"_grouped.csv", func(w io.Writer) error {
			return reshape.WriteGroupedCSV(w, res.Grouped)
		}); err != nil {
			return err
		}
	}

	if res.Grouped != nil && res.Grouped.Granularity() == model.GranularityPeriod {
		long, err := reshape.LongForm(res.Grouped)
		if err != nil {
			return err
		}
		wide := reshape.Pivot(long)
		if err := writeCSV(base+"_long.csv", func(w io.Writer) error {
			return reshape.WriteLongCSV(w, long)
		}); err != nil {
			return err
		}
		if err := writeCSV(base+"_wide.csv", func(w io.Writer) error {
			return reshape.WriteWideCSV(w, wide)
		}); err != nil {
			return err
		}
		chart = render.PeriodBars(res.Name, wide, cfg.ChartWidth, cfg.ChartHeight)
	}

	return render.WriteFile(base+".txt", chart)
}

func writeCSV(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func topPairs(pairs []model.CountPair, n int) []model.CountPair {
	if n > 0 && n < len(pairs) {
		return pairs[:n]
	}
	return pairs
}

func runPeriods(cfg appConfig, w io.Writer) error {
	printer, err := newPrinter(cfg)
	if err != nil {
		return err
	}
	index, err := cfg.periodIndex()
	if err != nil {
		return err
	}
	if index.Len() == 0 {
		printer.Warning("no periods configured")
		return nil
	}
	return output.PeriodsTable(w, index.Names(), index.Map(), cfg.Quiet).Render()
}

func runBrowse(ctx context.Context, cfg appConfig, only []string) error {
	cleanupLogger := configureRuntimeLogger(false)
	defer cleanupLogger()

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.summarize(ctx, only)
	if err != nil {
		return err
	}
	data, err := browserData(cfg, report)
	if err != nil {
		return err
	}
	return tui.Run(data)
}

func browserData(cfg appConfig, report *summarize.Report) (tui.Data, error) {
	data := tui.Data{
		Title:       "narrator  " + filepath.Base(cfg.Corpus),
		PeriodDates: report.PeriodDates,
	}
	for _, res := range report.Results {
		sec := tui.Section{Name: res.Name, Pairs: res.Pairs}
		if res.Grouped != nil && res.Grouped.Granularity() == model.GranularityPeriod {
			wide, err := reshape.WideForm(res.Grouped)
			if err != nil {
				return tui.Data{}, err
			}
			sec.Table = wide
		}
		data.Sections = append(data.Sections, sec)
	}
	return data, nil
}

// configureRuntimeLogger sends log output to a file so it never interleaves
// with tables and charts. verbose keeps it on stderr.
func configureRuntimeLogger(verbose bool) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if verbose {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "narrator")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "narrator.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(w io.Writer, cfg appConfig, info corpusInfo) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "    "+cyan.Bold(true).Render("narrator")+" "+dim.Render("v"+version))
	lines = append(lines, dim.Render("    ─────────────────────────────────"))
	lines = append(lines, bold.Render("    Corpus"))
	lines = append(lines, fmt.Sprintf("    %s  File           %s", check, dim.Render(shortenPath(cfg.Corpus))))
	lines = append(lines, fmt.Sprintf("    %s  Rows           %s", check, cyan.Render(fmt.Sprintf("%d", info.rows))))
	lines = append(lines, fmt.Sprintf("    %s  Columns        %s", check, dim.Render(strings.Join(info.columns, ", "))))
	if info.firstDay != "" {
		lines = append(lines, fmt.Sprintf("    %s  Dates          %s", check, dim.Render(info.firstDay+" → "+info.lastDay)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Dates          %s", dot, dim.Render("none")))
	}
	if cfg.Filter != "" {
		lines = append(lines, fmt.Sprintf("    %s  Filter         %s", check, dim.Render(cfg.Filter)))
	}
	if info.periods > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Periods        %s", check, cyan.Render(fmt.Sprintf("%d", info.periods))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Periods        %s", dot, dim.Render("none")))
	}
	if cfg.DBPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render(shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", dot, dim.Render("in-memory")))
	}
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("defaults")))
	}
	lines = append(lines, "")

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(p string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == home {
		return "~"
	}
	if strings.HasPrefix(p, home+string(filepath.Separator)) {
		return "~" + p[len(home):]
	}
	return p
}
