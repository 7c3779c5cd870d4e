package summarize

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tinytelemetry/narrator/internal/extract"
	"github.com/tinytelemetry/narrator/internal/model"
)

// Option names one aggregation.
type Option string

const (
	SumAll          Option = "sum_all"
	SumGroup        Option = "sum_group"
	SumSingle       Option = "sum_single"
	SingleTemporal  Option = "single_temporal"
	GroupTemporal   Option = "group_temporal"
	AllTemporal     Option = "all_temporal"
	KeywordTemporal Option = "keyword_temporal"
)

// Options lists every supported option.
var Options = []Option{SumAll, SumGroup, SumSingle, SingleTemporal, GroupTemporal, AllTemporal, KeywordTemporal}

// ParseOption accepts an option name, ignoring case and surrounding space.
// The legacy hashtag spellings (sum_all_hash, group_hash_temporal, ...)
// are accepted too.
func ParseOption(s string) (Option, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "sum_all_hash":
		v = string(SumAll)
	case "sum_group_hash":
		v = string(SumGroup)
	case "sum_single_hash":
		v = string(SumSingle)
	case "single_hash_temporal":
		v = string(SingleTemporal)
	case "group_hash_temporal":
		v = string(GroupTemporal)
	}
	for _, o := range Options {
		if v == string(o) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown summarize option %q", s)
}

// Temporal reports whether o groups counts by date.
func (o Option) Temporal() bool {
	switch o {
	case SingleTemporal, GroupTemporal, AllTemporal, KeywordTemporal:
		return true
	default:
		return false
	}
}

func (o Option) mode() extract.Mode {
	switch o {
	case SumGroup, GroupTemporal:
		return extract.ModeGroup
	case SumSingle, SingleTemporal:
		return extract.ModeSingle
	case KeywordTemporal:
		return extract.ModeKeywordColumn
	default:
		return extract.ModeAll
	}
}

// Request describes one aggregation over the corpus.
type Request struct {
	Name   string
	Option Option

	Fields      []string
	DateField   string
	TextField   string
	WeightField string

	Terms    []string // group and keyword options
	Target   string   // single options
	Keywords []extract.KeywordSet

	Sort       model.SortPolicy
	SampleSize int
	Weighted   bool

	Granularity model.Granularity // temporal options only
	Days        []string          // explicit day range for day granularity
}

// ErrInvalidRequest wraps every Request.Validate failure.
var ErrInvalidRequest = errors.New("summarize: invalid request")

// Validate checks req before any corpus work happens.
func (req Request) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if !slices.Contains(Options, req.Option) {
		return fmt.Errorf("%w: %s: unknown option %q", ErrInvalidRequest, req.Name, req.Option)
	}
	if req.Option.Temporal() && req.DateField == "" {
		return fmt.Errorf("%w: %s: option %s requires a date field", ErrInvalidRequest, req.Name, req.Option)
	}
	if req.SampleSize < 0 {
		return fmt.Errorf("%w: %s: sample size must be >= 0", ErrInvalidRequest, req.Name)
	}
	if err := req.extractConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRequest, req.Name, err)
	}
	return nil
}

func (req Request) extractConfig() extract.Config {
	return extract.Config{
		Fields:      req.Fields,
		DateField:   req.DateField,
		TextField:   req.TextField,
		WeightField: req.WeightField,
		Policy: extract.Policy{
			Mode:     req.Option.mode(),
			Allow:    req.Terms,
			Target:   req.Target,
			Keywords: req.Keywords,
		},
	}
}
