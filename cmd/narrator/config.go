package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/narrator/internal/extract"
	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/summarize"
)

const (
	defaultQueryTimeout = model.DefaultQueryTimeout
	defaultTopN         = model.DefaultTopN
	defaultChartWidth   = model.DefaultChartWidth
	defaultChartHeight  = model.DefaultChartHeight
	defaultDateField    = model.DefaultDateField
	defaultColor        = "auto"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Corpus       string              `mapstructure:"corpus"`
	DBPath       string              `mapstructure:"db-path"`
	QueryTimeout time.Duration       `mapstructure:"query-timeout"`
	IDField      string              `mapstructure:"id-field"`
	DateField    string              `mapstructure:"date-field"`
	TextField    string              `mapstructure:"text-field"`
	WeightField  string              `mapstructure:"weight-field"`
	Filter       string              `mapstructure:"filter"`
	PeriodsFile  string              `mapstructure:"periods-file"`
	Periods      []model.PeriodDef   `mapstructure:"periods"`
	OutputDir    string              `mapstructure:"output-dir"`
	TopN         int                 `mapstructure:"top-n"`
	ChartWidth   int                 `mapstructure:"chart-width"`
	ChartHeight  int                 `mapstructure:"chart-height"`
	Color        string              `mapstructure:"color"`
	Verbose      bool                `mapstructure:"verbose"`
	Quiet        bool                `mapstructure:"quiet"`
	Aggregations []aggregationConfig `mapstructure:"aggregations"`
	ConfigPath   string              `mapstructure:"-"` // not from config file
}

// aggregationConfig is one entry of the aggregations list. Empty column
// names fall back to the top-level ones.
type aggregationConfig struct {
	Name        string               `mapstructure:"name"`
	Option      string               `mapstructure:"option"`
	Fields      []string             `mapstructure:"fields"`
	DateField   string               `mapstructure:"date-field"`
	TextField   string               `mapstructure:"text-field"`
	WeightField string               `mapstructure:"weight-field"`
	Terms       []string             `mapstructure:"terms"`
	Target      string               `mapstructure:"target"`
	Keywords    []extract.KeywordSet `mapstructure:"keywords"`
	Sort        string               `mapstructure:"sort"`
	SampleSize  int                  `mapstructure:"sample-size"`
	Weighted    bool                 `mapstructure:"weighted"`
	Granularity string               `mapstructure:"granularity"`
	From        string               `mapstructure:"from"`
	To          string               `mapstructure:"to"`
}

func loadConfig(configPath string, flags flagBinder) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("NARRATOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", "")
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("date-field", defaultDateField)
	v.SetDefault("top-n", defaultTopN)
	v.SetDefault("chart-width", defaultChartWidth)
	v.SetDefault("chart-height", defaultChartHeight)
	v.SetDefault("color", defaultColor)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	if flags != nil {
		if err := flags.bind(v); err != nil {
			return cfg, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "narrator", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
		// an explicitly requested file must exist
		if configPath != "" {
			return cfg, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.TopN < 0 {
		return cfg, fmt.Errorf("invalid top-n: %d", cfg.TopN)
	}
	if cfg.ChartWidth < 20 || cfg.ChartHeight < 3 {
		return cfg, fmt.Errorf("invalid chart size %dx%d: minimum is 20x3", cfg.ChartWidth, cfg.ChartHeight)
	}

	// Expand ~ in paths
	for _, p := range []*string{&cfg.Corpus, &cfg.DBPath, &cfg.PeriodsFile, &cfg.OutputDir} {
		if strings.HasPrefix(*p, "~/") {
			*p = filepath.Join(home, (*p)[2:])
		}
	}

	return cfg, nil
}

// periodIndex merges the periods file and inline periods, file first.
// It returns nil when neither is configured.
func (cfg appConfig) periodIndex() (*period.Index, error) {
	var defs []model.PeriodDef
	if cfg.PeriodsFile != "" {
		fileDefs, err := period.ReadFile(cfg.PeriodsFile)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	defs = append(defs, cfg.Periods...)
	if len(defs) == 0 {
		return nil, nil
	}
	return period.Build(defs)
}

// requests turns the aggregations list into summarize requests.
func (cfg appConfig) requests() ([]summarize.Request, error) {
	if len(cfg.Aggregations) == 0 {
		return nil, fmt.Errorf("no aggregations configured")
	}
	reqs := make([]summarize.Request, 0, len(cfg.Aggregations))
	for i, a := range cfg.Aggregations {
		req, err := a.request(cfg)
		if err != nil {
			return nil, fmt.Errorf("aggregation %d (%s): %w", i, a.Name, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (a aggregationConfig) request(cfg appConfig) (summarize.Request, error) {
	opt, err := summarize.ParseOption(a.Option)
	if err != nil {
		return summarize.Request{}, err
	}
	sort, err := model.ParseSortPolicy(a.Sort)
	if err != nil {
		return summarize.Request{}, err
	}

	req := summarize.Request{
		Name:        a.Name,
		Option:      opt,
		Fields:      a.Fields,
		DateField:   firstNonEmpty(a.DateField, cfg.DateField),
		TextField:   firstNonEmpty(a.TextField, cfg.TextField),
		Terms:       a.Terms,
		Target:      a.Target,
		Keywords:    a.Keywords,
		Sort:        sort,
		SampleSize:  a.SampleSize,
		Weighted:    a.Weighted,
	}
	if a.Weighted {
		req.WeightField = firstNonEmpty(a.WeightField, cfg.WeightField)
	}

	if opt.Temporal() {
		g := a.Granularity
		if g == "" {
			g = "period"
		}
		if req.Granularity, err = model.ParseGranularity(g); err != nil {
			return summarize.Request{}, err
		}
	}
	if a.From != "" || a.To != "" {
		if a.From == "" || a.To == "" {
			return summarize.Request{}, fmt.Errorf("from and to must be set together")
		}
		if req.Days, err = period.DateRange(a.From, a.To); err != nil {
			return summarize.Request{}, err
		}
	}
	return req, nil
}

// columns lists every corpus column the requests read.
func columns(reqs []summarize.Request) []string {
	var cols []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, ok := seen[c]; ok || c == "" {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, r := range reqs {
		for _, f := range r.Fields {
			add(f)
		}
		add(r.DateField)
		add(r.TextField)
		add(r.WeightField)
	}
	return cols
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
