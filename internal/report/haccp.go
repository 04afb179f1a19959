package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/kitchencheck/internal/aggregate"
	"github.com/dshills/kitchencheck/internal/classify"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/logging"
	"github.com/dshills/kitchencheck/internal/schema"
)

// Options control one generation call.
type Options struct {
	Automatic   bool
	Overwrite   bool
	GeneratedBy string
}

const (
	otherZone        = "Other"
	unknownEquipment = "Unknown"
)

func zoneOf(r schema.TemperatureReading) string {
	if z := strings.TrimSpace(r.Zone); z != "" {
		return z
	}
	return otherZone
}

func celsius(v *float64) string {
	if v == nil {
		return "missing"
	}
	return fmt.Sprintf("%.1f °C", *v)
}

// DailyContent is the classified and aggregated HACCP data for one period.
type DailyContent struct {
	Groups   []schema.GroupSummary
	Sections []schema.Section
	Counts   schema.Counts
	Overall  schema.Status
	Score    int
}

// Assemble classifies and aggregates the HACCP logs. The overall status is
// the worst status across temperature groups, cleaning, hygiene and
// cooling; critical counts danger records and warnings warning records.
func Assemble(h fetch.HACCP, th classify.Thresholds, p aggregate.Penalties) DailyContent {
	temps := aggregate.Classify(h.Temperatures, func(r schema.TemperatureReading) schema.Status {
		return classify.Temperature(r, th)
	})
	cleaning := aggregate.Classify(h.Cleaning, classify.Cleaning)
	hygiene := aggregate.Classify(h.Hygiene, classify.Hygiene)
	cooling := aggregate.Classify(h.Cooling, classify.Cooling)

	groups := aggregate.GroupBy(temps, zoneOf)
	summaries := aggregate.Summaries(groups, func(c aggregate.Classified[schema.TemperatureReading]) schema.LineItem {
		label := c.Record.Equipment
		if label == "" {
			label = unknownEquipment
		}
		return schema.LineItem{
			Label:  label,
			Value:  celsius(c.Record.Celsius),
			Limits: th.BandFor(c.Record.Zone, c.Record.Equipment).String(),
			Time:   c.Record.Time,
			Status: c.Status,
		}
	})

	sections := []schema.Section{
		lineSection("Cleaning", cleaning, func(c schema.CleaningEntry) schema.LineItem {
			return schema.LineItem{Label: c.Task, Value: c.Employee, Time: c.Time}
		}),
		lineSection("Personal hygiene", hygiene, func(h schema.HygieneCheck) schema.LineItem {
			return schema.LineItem{Label: h.StaffName, Value: hygieneValue(h)}
		}),
		lineSection("Cooling", cooling, func(c schema.CoolingLog) schema.LineItem {
			return schema.LineItem{
				Label:  c.ProductName,
				Value:  celsius(c.InitialCelsius) + " to " + celsius(c.FinalCelsius),
				Limits: fmt.Sprintf("max %g °C", classify.CoolingSafeMax),
				Time:   strings.Trim(c.StartTime+"-"+c.EndTime, "-"),
			}
		}),
	}

	var all []schema.Status
	all = append(all, aggregate.Statuses(temps)...)
	all = append(all, aggregate.Statuses(cleaning)...)
	all = append(all, aggregate.Statuses(hygiene)...)
	all = append(all, aggregate.Statuses(cooling)...)
	tally := aggregate.Count(all)

	overall := aggregate.Worst(
		aggregate.Overall(groups),
		aggregate.Worst(aggregate.Statuses(cleaning)...),
		aggregate.Worst(aggregate.Statuses(hygiene)...),
		aggregate.Worst(aggregate.Statuses(cooling)...),
	)

	return DailyContent{
		Groups:   summaries,
		Sections: sections,
		Counts: schema.Counts{
			Deviations:   tally.Danger + tally.Warning,
			Critical:     tally.Danger,
			Warnings:     tally.Warning,
			Temperatures: len(h.Temperatures),
			Cleaning:     len(h.Cleaning),
			Hygiene:      len(h.Hygiene),
			Cooling:      len(h.Cooling),
		},
		Overall: overall,
		Score:   p.Score(tally.Danger, tally.Warning),
	}
}

func hygieneValue(h schema.HygieneCheck) string {
	names := []string{"uniform", "hands", "jewelry", "illness", "hair"}
	var failed []string
	for i, c := range h.Checks() {
		if c == nil || !*c {
			failed = append(failed, names[i])
		}
	}
	if len(failed) == 0 {
		return "all checks passed"
	}
	return "failed: " + strings.Join(failed, ", ")
}

func lineSection[T any](title string, items []aggregate.Classified[T], line func(T) schema.LineItem) schema.Section {
	s := schema.Section{
		Title:  title,
		Status: aggregate.Worst(aggregate.Statuses(items)...).Overall(),
		Items:  make([]schema.LineItem, 0, len(items)),
	}
	for _, it := range items {
		li := line(it.Record)
		li.Status = it.Status
		s.Items = append(s.Items, li)
	}
	return s
}

func dailySummary(c DailyContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d temperature readings, %d cleaning tasks, %d hygiene checks and %d cooling logs recorded.",
		c.Counts.Temperatures, c.Counts.Cleaning, c.Counts.Hygiene, c.Counts.Cooling)
	switch {
	case c.Counts.Critical > 0:
		fmt.Fprintf(&sb, " %d critical deviations require immediate corrective action.", c.Counts.Critical)
	case c.Counts.Warnings > 0:
		fmt.Fprintf(&sb, " %d readings were just outside their limits.", c.Counts.Warnings)
	default:
		sb.WriteString(" All checks within limits.")
	}
	return sb.String()
}

// GenerateDaily builds and persists the HACCP daily report for tenant and
// day. Collections that could not be read are listed in DataGaps and count
// as empty. An existing report for the day yields ErrDuplicateReport with
// that report unless opts.Overwrite is set.
func (s *Service) GenerateDaily(ctx context.Context, tenant string, day time.Time, opts Options) (*schema.Report, error) {
	period := schema.Day(day)
	h := s.fetcher.GatherPeriod(ctx, tenant, period)
	content := Assemble(h, s.thresholds, s.penalties)

	if len(h.Gaps) > 0 {
		s.log.Warn("daily report built with missing collections",
			logging.String("tenant", tenant),
			logging.String("date", period.Start.Format(schema.DateLayout)),
			logging.Any("gaps", h.Gaps))
	}

	return s.Builder.Build(ctx, Request{
		Tenant:          tenant,
		Kind:            schema.KindHACCPDaily,
		Type:            schema.TypeDaily,
		Period:          period,
		Title:           "HACCP Daily Report " + period.Start.Format(schema.DateLayout),
		Summary:         dailySummary(content),
		Counts:          content.Counts,
		ComplianceScore: content.Score,
		OverallStatus:   content.Overall.Overall(),
		GeneratedBy:     opts.GeneratedBy,
		Groups:          content.Groups,
		Sections:        content.Sections,
		DataGaps:        h.Gaps,
		Automatic:       opts.Automatic,
		Overwrite:       opts.Overwrite,
	})
}
