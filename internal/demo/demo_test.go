package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kitchencheck/internal/analysis"
	"github.com/dshills/kitchencheck/internal/classify"
	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/fetch"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

var day = time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("acme", day, 42)
	b := Generate("acme", day, 42)
	assert.Equal(t, a, b)

	c := Generate("acme", day, 43)
	assert.NotEqual(t, a.Temperatures, c.Temperatures)
}

func TestGenerate_Shape(t *testing.T) {
	f := Generate("acme", day, 1)
	assert.Len(t, f.Temperatures, 17)
	assert.Len(t, f.Cleaning, len(cleaningTasks))
	assert.Len(t, f.Hygiene, len(staff))
	assert.Len(t, f.Cooling, len(cooled))
	assert.Len(t, f.Incidents, 3)
	assert.Len(t, f.Risks, 3)

	midnight := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	for _, r := range f.Temperatures {
		assert.Equal(t, Marker, r.Notes)
		assert.Equal(t, "acme", r.CompanyID)
		assert.True(t, r.Date.Equal(midnight))
		require.NotNil(t, r.Celsius)
	}
	for _, c := range f.Cooling {
		assert.Equal(t, Marker, c.Notes)
		require.NotNil(t, c.FinalCelsius)
		assert.GreaterOrEqual(t, *c.FinalCelsius, 2.0)
		assert.LessOrEqual(t, *c.FinalCelsius, 8.0)
	}
	for _, r := range f.Risks {
		assert.Equal(t, r.Likelihood*r.Consequence, r.RiskScore)
		assert.Equal(t, riskLevel(r.RiskScore), r.RiskLevel)
	}
}

// Safe readings must land inside the configured band; anything drawn
// outside it is classified as a deviation by the real thresholds.
func TestGenerate_ReadingsMatchThresholds(t *testing.T) {
	th := classify.DefaultThresholds()
	for seed := range uint64(20) {
		for _, r := range Generate("acme", day, seed).Temperatures {
			band := th.BandFor(r.Zone, r.Equipment)
			inside := *r.Celsius >= band.Min && *r.Celsius <= band.Max
			status := classify.Temperature(r, th)
			if inside {
				assert.Equal(t, schema.StatusSafe, status, "%s %.1f", r.Equipment, *r.Celsius)
			} else {
				assert.NotEqual(t, schema.StatusSafe, status, "%s %.1f", r.Equipment, *r.Celsius)
			}
		}
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{1, "low"}, {4, "low"}, {5, "medium"}, {10, "high"}, {15, "critical"}, {25, "critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevel(tt.score), "score %d", tt.score)
	}
}

func TestSeed(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	sum, err := Seed(ctx, mem, "acme", day, 7)
	require.NoError(t, err)
	assert.Equal(t, 17, sum[store.Temperatures])
	assert.Equal(t, 3, sum[store.RiskAssessments])
	assert.Equal(t, 1, sum[store.FirstAidResponsible])

	rows, err := mem.Select(ctx, store.Temperatures, store.Where(store.Eq(store.CompanyColumn, "acme")))
	require.NoError(t, err)
	assert.Len(t, rows, 17)
	assert.Equal(t, Marker, rows[0].Text("notes"))

	total := 0
	for _, c := range []string{store.Temperatures, store.Cleaning, store.Hygiene, store.Cooling,
		store.Incidents, store.RiskAssessments, store.FirstAidEquipment, store.FirstAidInspections, store.FirstAidResponsible} {
		rows, err := mem.Select(ctx, c, store.Query{})
		require.NoError(t, err)
		total += len(rows)
	}
	assert.Equal(t, sum.Total(), total)
}

func TestSeed_RequiresTenant(t *testing.T) {
	_, err := Seed(context.Background(), store.NewMemory(), "", day, 1)
	assert.Error(t, err)
}

type failingInsert struct {
	*store.Memory
	after int
}

func (f *failingInsert) Insert(ctx context.Context, collection string, row store.Row) error {
	if f.after == 0 {
		return errors.New("disk full")
	}
	f.after--
	return f.Memory.Insert(ctx, collection, row)
}

func TestSeed_StopsAtFirstFailure(t *testing.T) {
	b := &failingInsert{Memory: store.NewMemory(), after: 5}
	sum, err := Seed(context.Background(), b, "acme", day, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), store.Temperatures)
	assert.Equal(t, 5, sum.Total())
}

func TestSeed_FeedsDailyReport(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	_, err := Seed(ctx, mem, "acme", day, 3)
	require.NoError(t, err)

	svc := report.NewService(report.Deps{
		Backend: mem,
		Fetcher: fetch.New(mem, nil, nil),
		Builder: report.NewBuilder(store.NewReportStore(mem), nil, nil),
		Advisor: analysis.NewAdvisor(config.AISettings{}, nil, nil),
	}, config.ReportSettings{})

	r, err := svc.GenerateDaily(ctx, "acme", day, report.Options{})
	require.NoError(t, err)
	assert.Equal(t, 17, r.Counts.Temperatures)
	assert.Equal(t, len(cleaningTasks), r.Counts.Cleaning)
	assert.Equal(t, len(staff), r.Counts.Hygiene)
	assert.Empty(t, r.DataGaps)
}
