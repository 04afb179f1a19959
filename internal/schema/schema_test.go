package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dshills/kitchencheck/internal/schema"
)

func TestStatusOrdinal(t *testing.T) {
	if !(schema.StatusSafe.Ordinal() < schema.StatusWarning.Ordinal() &&
		schema.StatusWarning.Ordinal() < schema.StatusDanger.Ordinal()) {
		t.Fatal("status ordinals not strictly ascending")
	}
	if got := schema.Status("bogus").Ordinal(); got != schema.StatusDanger.Ordinal() {
		t.Errorf("unknown status ordinal = %d, want danger", got)
	}
}

func TestStatusOverall(t *testing.T) {
	cases := map[schema.Status]schema.OverallStatus{
		schema.StatusSafe:    schema.OverallPass,
		schema.StatusWarning: schema.OverallWarning,
		schema.StatusDanger:  schema.OverallFail,
	}
	for in, want := range cases {
		if got := in.Overall(); got != want {
			t.Errorf("%q.Overall() = %q, want %q", in, got, want)
		}
	}
}

func TestPeriod(t *testing.T) {
	d := time.Date(2025, 3, 14, 17, 30, 0, 0, time.UTC)
	p := schema.Day(d)
	if !p.SingleDay() || !p.Valid() {
		t.Fatalf("Day(%v) = %+v, want valid single day", d, p)
	}
	bad := schema.Period{Start: d, End: d.AddDate(0, 0, -1)}
	if bad.Valid() {
		t.Error("period with End before Start reported valid")
	}
}

func TestReport_JSONRoundTrip(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	original := &schema.Report{
		ID:              "r-1",
		ReportNumber:    "HMS-1",
		Kind:            schema.KindHMS,
		Type:            schema.TypeMonthly,
		Period:          schema.Period{Start: at, End: at},
		ComplianceScore: 85,
		OverallStatus:   schema.OverallWarning,
		Status:          schema.ReportPending,
		CreatedAt:       at,
		Signature:       &schema.Signature{SignedBy: "Kari", SignedAt: at},
		Groups: []schema.GroupSummary{{
			Key: "Freezer", Status: schema.OverallFail, Total: 1, Danger: 1,
		}},
	}
	b, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	var got schema.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.ReportNumber != original.ReportNumber || !got.Signed() || got.Groups[0].Key != "Freezer" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
