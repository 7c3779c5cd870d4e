package reshape

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/skeleton"
)

// WritePairsCSV writes ranked pairs with a term,date,count header.
func WritePairsCSV(w io.Writer, pairs []model.CountPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"term", "date", "count"}); err != nil {
		return fmt.Errorf("write pairs header: %w", err)
	}
	for _, p := range pairs {
		if err := cw.Write([]string{p.Key.Term, p.Key.Date, strconv.FormatInt(p.Count, 10)}); err != nil {
			return fmt.Errorf("write pairs row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroupedCSV writes every leaf of sk, one row per term, in skeleton
// order. The columns depend on the granularity:
//
//	day:        day,term,count
//	period_day: period,day,term,count
//	period:     period,term,count
func WriteGroupedCSV(w io.Writer, sk *skeleton.Skeleton) error {
	if sk == nil {
		return fmt.Errorf("write grouped: nil skeleton")
	}
	cw := csv.NewWriter(w)
	keys := sk.Keys()

	var err error
	switch g := sk.Granularity(); g {
	case model.GranularityDay:
		err = cw.Write([]string{"day", "term", "count"})
		for _, d := range sk.Days() {
			for _, k := range keys {
				c, _ := sk.DayCount(d, k)
				if err == nil {
					err = cw.Write([]string{d, k, strconv.FormatInt(c, 10)})
				}
			}
		}
	case model.GranularityPeriodDay:
		err = cw.Write([]string{"period", "day", "term", "count"})
		for _, p := range sk.Periods() {
			for _, d := range sk.PeriodDays(p) {
				for _, k := range keys {
					c, _ := sk.PeriodDayCount(p, d, k)
					if err == nil {
						err = cw.Write([]string{p, d, k, strconv.FormatInt(c, 10)})
					}
				}
			}
		}
	case model.GranularityPeriod:
		err = cw.Write([]string{"period", "term", "count"})
		for _, p := range sk.Periods() {
			for _, k := range keys {
				c, _ := sk.PeriodCount(p, k)
				if err == nil {
					err = cw.Write([]string{p, k, strconv.FormatInt(c, 10)})
				}
			}
		}
	default:
		return fmt.Errorf("write grouped: unknown granularity %v", g)
	}
	if err != nil {
		return fmt.Errorf("write grouped: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
