// Package classify assigns a safe/warning/danger status to single records.
// Every function here is pure: the result depends only on its arguments.
package classify

import (
	"fmt"
	"strings"

	"github.com/dshills/kitchencheck/internal/schema"
)

// Band is an inclusive acceptable temperature range in °C.
type Band struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// String formats the band for report tables.
func (b Band) String() string {
	return fmt.Sprintf("%g to %g °C", b.Min, b.Max)
}

// Rule binds a band to zones or equipment whose name contains Match
// (case-insensitive).
type Rule struct {
	Match string `json:"match" mapstructure:"match"`
	Band  Band   `json:"band" mapstructure:"band"`
}

// Thresholds is the temperature table. Rules are tried in order; the first
// match wins and Default applies when none does.
type Thresholds struct {
	Rules     []Rule  `json:"rules" mapstructure:"rules"`
	Default   Band    `json:"default" mapstructure:"default"`
	Tolerance float64 `json:"tolerance" mapstructure:"tolerance"`
}

// DefaultTolerance is how far outside a band a reading may be and still
// count as a warning rather than danger.
const DefaultTolerance = 0.5

// DefaultThresholds returns the built-in table for a professional kitchen.
func DefaultThresholds() Thresholds {
	cold := Band{Min: -5, Max: 4}
	hot := Band{Min: 60, Max: 85}
	return Thresholds{
		Rules: []Rule{
			{Match: "freezer", Band: Band{Min: -32, Max: -18}},
			{Match: "fryser", Band: Band{Min: -32, Max: -18}},
			{Match: "fridge", Band: cold},
			{Match: "kjøleskap", Band: cold},
			{Match: "goods receiving", Band: cold},
			{Match: "varemottak", Band: cold},
			{Match: "water bath", Band: hot},
			{Match: "vannbad", Band: hot},
			{Match: "dishwasher", Band: hot},
			{Match: "oppvaskmaskin", Band: hot},
		},
		Default:   cold,
		Tolerance: DefaultTolerance,
	}
}

// BandFor returns the band for a zone, falling back to the equipment name.
func (t Thresholds) BandFor(zone, equipment string) Band {
	for _, name := range []string{zone, equipment} {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		for _, r := range t.Rules {
			if strings.Contains(name, r.Match) {
				return r.Band
			}
		}
	}
	return t.Default
}

// Temperature classifies a reading against its zone band. A missing reading
// is danger.
func Temperature(r schema.TemperatureReading, t Thresholds) schema.Status {
	if r.Celsius == nil {
		return schema.StatusDanger
	}
	return InBand(*r.Celsius, t.BandFor(r.Zone, r.Equipment), t.Tolerance)
}

// InBand classifies a value: inside → safe, outside by at most tol →
// warning, further out → danger. A negative tol is treated as zero.
func InBand(v float64, b Band, tol float64) schema.Status {
	if tol < 0 {
		tol = 0
	}
	var off float64
	switch {
	case v < b.Min:
		off = b.Min - v
	case v > b.Max:
		off = v - b.Max
	default:
		return schema.StatusSafe
	}
	if off <= tol {
		return schema.StatusWarning
	}
	return schema.StatusDanger
}

// Completion maps a done flag: true is safe, false or unknown is danger.
func Completion(done *bool) schema.Status {
	if done != nil && *done {
		return schema.StatusSafe
	}
	return schema.StatusDanger
}

// Cleaning classifies a cleaning log entry by its completion flag.
func Cleaning(c schema.CleaningEntry) schema.Status {
	return Completion(c.Completed)
}

// Hygiene passes only when every checklist answer is true.
func Hygiene(h schema.HygieneCheck) schema.Status {
	for _, c := range h.Checks() {
		if Completion(c) != schema.StatusSafe {
			return schema.StatusDanger
		}
	}
	return schema.StatusSafe
}

// Cooling storage limits in °C.
const (
	CoolingSafeMax    = 4.0
	CoolingWarningMax = 5.0
)

// Cooling trusts the recorded within-limits flag when present and otherwise
// judges the final temperature.
func Cooling(c schema.CoolingLog) schema.Status {
	if c.WithinLimits != nil {
		return Completion(c.WithinLimits)
	}
	if c.FinalCelsius == nil {
		return schema.StatusDanger
	}
	switch f := *c.FinalCelsius; {
	case f <= CoolingSafeMax:
		return schema.StatusSafe
	case f <= CoolingWarningMax:
		return schema.StatusWarning
	default:
		return schema.StatusDanger
	}
}
