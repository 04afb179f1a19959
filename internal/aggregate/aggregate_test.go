package aggregate

import (
	"fmt"
	"math"
	"testing"

	"github.com/dshills/kitchencheck/internal/schema"
)

type reading struct {
	zone   string
	status schema.Status
}

func classified(rs ...reading) []Classified[reading] {
	return Classify(rs, func(r reading) schema.Status { return r.status })
}

func byZone(r reading) string { return r.zone }

func TestScore(t *testing.T) {
	cases := []struct {
		p         Penalties
		crit, wrn int
		want      int
	}{
		{DefaultPenalties, 0, 0, 100},
		{DefaultPenalties, 1, 0, 85},
		{DefaultPenalties, 0, 1, 95},
		{DefaultPenalties, 2, 3, 55},
		{DefaultPenalties, 7, 0, 0},     // clamped at 0
		{DefaultPenalties, -3, 0, 100}, // negative counts ignored
		{IncidentPenalties, 1, 5, 80},  // 100 - 10 - 10
		{IncidentPenalties, 0, 60, 0},
		{Penalties{}, 100, 100, 100},
	}
	for _, c := range cases {
		got := c.p.Score(c.crit, c.wrn)
		if got != c.want {
			t.Errorf("%+v.Score(%d, %d) = %d, want %d", c.p, c.crit, c.wrn, got, c.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("score %d out of range", got)
		}
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	for crit := 0; crit < 30; crit++ {
		for w := 0; w < 60; w += 7 {
			s := ComplianceScore(crit, w)
			if s < 0 || s > 100 {
				t.Fatalf("ComplianceScore(%d, %d) = %d", crit, w, s)
			}
		}
	}

	// Counts large enough to overflow a naive product still score 0.
	huge := []struct{ crit, wrn int }{
		{math.MaxInt, 0},
		{0, math.MaxInt},
		{math.MaxInt / 10, 0},
		{0, math.MaxInt / 4},
		{1 << 62, 0},
		{math.MaxInt, math.MaxInt},
	}
	for _, h := range huge {
		for _, p := range []Penalties{DefaultPenalties, IncidentPenalties} {
			if got := p.Score(h.crit, h.wrn); got != 0 {
				t.Errorf("%+v.Score(%d, %d) = %d, want 0", p, h.crit, h.wrn, got)
			}
		}
	}
}

func TestWorst(t *testing.T) {
	S, W, D := schema.StatusSafe, schema.StatusWarning, schema.StatusDanger
	cases := []struct {
		in   []schema.Status
		want schema.Status
	}{
		{nil, S},
		{[]schema.Status{S, W, S}, W},
		{[]schema.Status{S, D, W}, D},
		{[]schema.Status{S, S}, S},
		{[]schema.Status{W, "bogus"}, D},
	}
	for _, c := range cases {
		if got := Worst(c.in...); got != c.want {
			t.Errorf("Worst(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGroupBy_OrderAndCounts(t *testing.T) {
	items := classified(
		reading{"Fridge", schema.StatusSafe},
		reading{"Freezer", schema.StatusWarning},
		reading{"Fridge", schema.StatusDanger},
		reading{"Freezer", schema.StatusSafe},
		reading{"Bath", schema.StatusSafe},
	)
	groups := GroupBy(items, byZone)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantKeys := []string{"Fridge", "Freezer", "Bath"}
	wantStatus := []schema.Status{schema.StatusDanger, schema.StatusWarning, schema.StatusSafe}
	for i, g := range groups {
		if g.Key != wantKeys[i] {
			t.Errorf("group %d key = %q, want %q", i, g.Key, wantKeys[i])
		}
		if g.Status != wantStatus[i] {
			t.Errorf("group %q status = %q, want %q", g.Key, g.Status, wantStatus[i])
		}
		if g.Safe+g.Warning+g.Danger != g.Total() {
			t.Errorf("group %q counts do not sum to total", g.Key)
		}
	}
	if groups[0].Items[0].Status != schema.StatusSafe || groups[0].Items[1].Status != schema.StatusDanger {
		t.Error("items within a group must keep input order")
	}
	if got := Overall(groups); got != schema.StatusDanger {
		t.Errorf("Overall = %q, want danger", got)
	}
}

func TestGroupBy_WorstCaseInvariant(t *testing.T) {
	statuses := []schema.Status{schema.StatusSafe, schema.StatusWarning, schema.StatusDanger}
	// Every combination of three items in one group.
	for _, a := range statuses {
		for _, b := range statuses {
			for _, c := range statuses {
				g := GroupBy(classified(reading{"z", a}, reading{"z", b}, reading{"z", c}), byZone)[0]
				want := Worst(a, b, c)
				if g.Status != want {
					t.Errorf("group [%s %s %s] = %q, want %q", a, b, c, g.Status, want)
				}
			}
		}
	}
}

func TestEmptyInput(t *testing.T) {
	groups := GroupBy(classified(), byZone)
	if len(groups) != 0 {
		t.Errorf("got %d groups for empty input", len(groups))
	}
	if got := Overall(groups); got != schema.StatusSafe {
		t.Errorf("Overall(empty) = %q, want safe", got)
	}
	tally := Count(nil)
	if got := ComplianceScore(tally.Danger, tally.Warning); got != 100 {
		t.Errorf("score for empty input = %d, want 100", got)
	}
}

// One danger freezer reading and nine safe readings elsewhere.
func TestScenario_SingleFreezerDanger(t *testing.T) {
	rs := []reading{{"Freezer", schema.StatusDanger}}
	for i := 0; i < 9; i++ {
		rs = append(rs, reading{fmt.Sprintf("Fridge %d", i%3), schema.StatusSafe})
	}
	items := classified(rs...)
	groups := GroupBy(items, byZone)
	tally := Count(Statuses(items))

	if got := Overall(groups).Overall(); got != schema.OverallFail {
		t.Errorf("overall = %q, want fail", got)
	}
	if got := ComplianceScore(tally.Danger, tally.Warning); got != 85 {
		t.Errorf("score = %d, want 85", got)
	}
	if groups[0].Key != "Freezer" || groups[0].Status.Overall() != schema.OverallFail {
		t.Errorf("freezer group = %q/%q, want Freezer/fail", groups[0].Key, groups[0].Status)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct{ part, total, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
	}
	for _, c := range cases {
		if got := Percent(c.part, c.total); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.part, c.total, got, c.want)
		}
	}
}

func TestSummaries(t *testing.T) {
	groups := GroupBy(classified(reading{"Fridge", schema.StatusWarning}), byZone)
	sums := Summaries(groups, func(c Classified[reading]) schema.LineItem {
		return schema.LineItem{Label: c.Record.zone, Status: c.Status}
	})
	if len(sums) != 1 || sums[0].Status != schema.OverallWarning || len(sums[0].Readings) != 1 {
		t.Errorf("Summaries = %+v", sums)
	}
}
