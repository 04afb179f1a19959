// Package aggregate groups classified records, derives group and report
// status by worst-case precedence and computes the compliance score. No I/O
// happens here.
package aggregate

import (
	"math"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Classified pairs a record with its status.
type Classified[T any] struct {
	Record T
	Status schema.Status
}

// Classify applies fn to every record, preserving order.
func Classify[T any](records []T, fn func(T) schema.Status) []Classified[T] {
	out := make([]Classified[T], len(records))
	for i, r := range records {
		out[i] = Classified[T]{Record: r, Status: fn(r)}
	}
	return out
}

// Group is the records sharing one key with their status tally.
type Group[T any] struct {
	Key     string
	Items   []Classified[T]
	Safe    int
	Warning int
	Danger  int
	// Status is the worst status among Items.
	Status schema.Status
}

// Total is the number of items in the group.
func (g Group[T]) Total() int { return len(g.Items) }

// GroupBy clusters items by key. Groups appear in first-seen key order and
// items keep their input order within a group.
func GroupBy[T any](items []Classified[T], key func(T) string) []Group[T] {
	var groups []Group[T]
	index := map[string]int{}
	for _, it := range items {
		k := key(it.Record)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k, Status: schema.StatusSafe})
		}
		g := &groups[i]
		g.Items = append(g.Items, it)
		switch it.Status {
		case schema.StatusSafe:
			g.Safe++
		case schema.StatusWarning:
			g.Warning++
		default:
			g.Danger++
		}
		g.Status = Worst(g.Status, it.Status)
	}
	return groups
}

// Worst returns the most severe status: danger > warning > safe. An empty
// argument list is safe.
func Worst(statuses ...schema.Status) schema.Status {
	worst := schema.StatusSafe
	for _, s := range statuses {
		if s.Ordinal() > worst.Ordinal() {
			worst = normalize(s)
		}
	}
	return worst
}

// normalize folds unknown values onto danger, matching Ordinal.
func normalize(s schema.Status) schema.Status {
	switch s {
	case schema.StatusSafe, schema.StatusWarning:
		return s
	default:
		return schema.StatusDanger
	}
}

// Overall is the worst status across groups.
func Overall[T any](groups []Group[T]) schema.Status {
	statuses := make([]schema.Status, len(groups))
	for i, g := range groups {
		statuses[i] = g.Status
	}
	return Worst(statuses...)
}

// Statuses extracts the status of every item.
func Statuses[T any](items []Classified[T]) []schema.Status {
	out := make([]schema.Status, len(items))
	for i, it := range items {
		out[i] = it.Status
	}
	return out
}

// Tally counts statuses.
type Tally struct {
	Safe, Warning, Danger int
}

// Count tallies statuses by tier. Anything other than safe or warning
// counts as danger.
func Count(statuses []schema.Status) Tally {
	var t Tally
	for _, s := range statuses {
		switch s {
		case schema.StatusSafe:
			t.Safe++
		case schema.StatusWarning:
			t.Warning++
		default:
			t.Danger++
		}
	}
	return t
}

// Penalties are the points deducted per finding.
type Penalties struct {
	Critical int
	Warning  int
}

var (
	// DefaultPenalties score HACCP logs and section analyses.
	DefaultPenalties = Penalties{Critical: 15, Warning: 5}
	// IncidentPenalties score HMS incident reports, where the second count
	// is the total number of incidents.
	IncidentPenalties = Penalties{Critical: 10, Warning: 2}
)

// Score starts at 100, subtracts the penalties and clamps to [0, 100].
// Negative counts and penalties are treated as zero.
func (p Penalties) Score(critical, warnings int) int {
	score := 100 - deduction(critical, p.Critical) - deduction(warnings, p.Warning)
	return min(max(score, 0), 100)
}

// deduction is n*per, saturated at 101 so huge counts cannot overflow.
func deduction(n, per int) int {
	if n <= 0 || per <= 0 {
		return 0
	}
	if n > 100/per {
		return 101
	}
	return n * per
}

// ComplianceScore scores with DefaultPenalties.
func ComplianceScore(critical, warnings int) int {
	return DefaultPenalties.Score(critical, warnings)
}

// Percent returns part/total as a rounded percentage; 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Summaries converts groups into their persisted shape, rendering each item
// with line.
func Summaries[T any](groups []Group[T], line func(Classified[T]) schema.LineItem) []schema.GroupSummary {
	out := make([]schema.GroupSummary, 0, len(groups))
	for _, g := range groups {
		s := schema.GroupSummary{
			Key:     g.Key,
			Status:  g.Status.Overall(),
			Total:   g.Total(),
			Safe:    g.Safe,
			Warning: g.Warning,
			Danger:  g.Danger,
		}
		if line != nil {
			for _, it := range g.Items {
				s.Readings = append(s.Readings, line(it))
			}
		}
		out = append(out, s)
	}
	return out
}
