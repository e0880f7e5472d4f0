// Package models defines the core domain entities for the capacity planner.
// The raw hierarchy (business unit -> line of business -> team -> period) is
// the source of truth; CapacityDataRow trees are derived projections and are
// rebuilt on every filter or data change, never edited in place.
package models

import (
	"errors"
	"time"
)

// Granularity selects the fiscal period universe. Weekly and monthly periods
// are never mixed in one view.
type Granularity int

const (
	Week Granularity = iota
	Month
)

func (g Granularity) String() string {
	if g == Month {
		return "month"
	}
	return "week"
}

// Period is the string key identifying one fiscal week or fiscal month,
// e.g. "FWk23: 04/06-04/12 (2025)". Periods are immutable once generated.
type Period string

// DateRange is an inclusive calendar range used for period filtering.
type DateRange struct {
	From time.Time
	To   time.Time
}

// PeriodicInput holds one team's per-period staffing inputs. All fields are
// optional; nil means "not yet entered", which is distinct from zero.
type PeriodicInput struct {
	// VolumeMixPercent is this team's share (0-100) of the parent LOB's
	// volume for the period. Sibling teams' shares sum to 100.
	VolumeMixPercent *float64 `json:"volume_mix_percent,omitempty"`
	// AHT is the team's average handle time in minutes.
	AHT              *float64 `json:"aht,omitempty"`
	ShrinkagePercent *float64 `json:"shrinkage_percent,omitempty"`
	OccupancyPercent *float64 `json:"occupancy_percent,omitempty"`
	// ShiftMinutes is the team's paid work minutes per period. When absent,
	// the planner's standard work minutes apply.
	ShiftMinutes *float64 `json:"shift_minutes,omitempty"`
	// ActualHC is the directly entered actual headcount.
	ActualHC *float64 `json:"actual_hc,omitempty"`
}

// Clone returns a deep copy of the input.
func (in PeriodicInput) Clone() PeriodicInput {
	out := PeriodicInput{}
	out.VolumeMixPercent = cloneFloat(in.VolumeMixPercent)
	out.AHT = cloneFloat(in.AHT)
	out.ShrinkagePercent = cloneFloat(in.ShrinkagePercent)
	out.OccupancyPercent = cloneFloat(in.OccupancyPercent)
	out.ShiftMinutes = cloneFloat(in.ShiftMinutes)
	out.ActualHC = cloneFloat(in.ActualHC)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// TeamPeriodicMetrics is the computed staffing result for one team/period.
// Values are always defined (zero when inputs are missing) so that rollups
// stay numerically well-defined.
type TeamPeriodicMetrics struct {
	RequiredHC  float64 `json:"required_hc"`
	ActualHC    float64 `json:"actual_hc"`
	OverUnderHC float64 `json:"over_under_hc"`
}

// RawTeamEntry represents one team's contribution to one line of business.
// It is owned exclusively by its parent RawLoBEntry.
type RawTeamEntry struct {
	Name   string                   `json:"name"`
	Inputs map[Period]PeriodicInput `json:"inputs"`
}

// Clone returns a deep copy of the team entry.
func (t RawTeamEntry) Clone() RawTeamEntry {
	out := RawTeamEntry{Name: t.Name, Inputs: make(map[Period]PeriodicInput, len(t.Inputs))}
	for p, in := range t.Inputs {
		out.Inputs[p] = in.Clone()
	}
	return out
}

// RawLoBEntry represents one line of business within one business unit.
// VolumeForecast and AverageAHT use key presence for "entered": a missing
// key means the value was never set or was cleared. BaseRequiredMinutes
// holds the manual override, or the derived volume x AHT value cached by the
// projection pipeline; a missing key reads as 0.
type RawLoBEntry struct {
	ID                 string              `json:"id"`
	BusinessUnit       string              `json:"business_unit"`
	Name               string              `json:"name"`
	VolumeForecast     map[Period]float64  `json:"volume_forecast"`
	AverageAHT         map[Period]float64  `json:"average_aht"`
	BaseRequiredMinutes map[Period]float64 `json:"base_required_minutes"`
	Teams              []RawTeamEntry      `json:"teams"`
}

// Validate checks structural integrity of the entry.
func (l *RawLoBEntry) Validate() error {
	if l.ID == "" {
		return errors.New("lob ID must not be empty")
	}
	if l.BusinessUnit == "" {
		return errors.New("business unit must not be empty")
	}
	if l.Name == "" {
		return errors.New("lob name must not be empty")
	}
	seen := make(map[string]bool, len(l.Teams))
	for _, t := range l.Teams {
		if t.Name == "" {
			return errors.New("team name must not be empty")
		}
		if seen[t.Name] {
			return errors.New("duplicate team name within one lob: " + t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Clone returns a deep copy of the LOB entry, including all team entries.
func (l RawLoBEntry) Clone() RawLoBEntry {
	out := RawLoBEntry{
		ID:                  l.ID,
		BusinessUnit:        l.BusinessUnit,
		Name:                l.Name,
		VolumeForecast:      cloneFloatMap(l.VolumeForecast),
		AverageAHT:          cloneFloatMap(l.AverageAHT),
		BaseRequiredMinutes: cloneFloatMap(l.BaseRequiredMinutes),
		Teams:               make([]RawTeamEntry, len(l.Teams)),
	}
	for i, t := range l.Teams {
		out.Teams[i] = t.Clone()
	}
	return out
}

func cloneFloatMap(m map[Period]float64) map[Period]float64 {
	out := make(map[Period]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// BusinessUnitConfig is static reference data: the ordered list of valid LOB
// names per business unit, plus the closed set of valid team names. It is
// read-only at runtime.
type BusinessUnitConfig struct {
	Units map[string][]string
	Teams []string
}

// Validate checks that the reference table is usable.
func (c BusinessUnitConfig) Validate() error {
	if len(c.Units) == 0 {
		return errors.New("at least one business unit must be configured")
	}
	for bu, lobs := range c.Units {
		if bu == "" {
			return errors.New("business unit name must not be empty")
		}
		if len(lobs) == 0 {
			return errors.New("business unit " + bu + " must configure at least one lob")
		}
		seen := make(map[string]bool, len(lobs))
		for _, lob := range lobs {
			if lob == "" {
				return errors.New("lob name must not be empty")
			}
			if seen[lob] {
				return errors.New("duplicate lob " + lob + " under business unit " + bu)
			}
			seen[lob] = true
		}
	}
	if len(c.Teams) == 0 {
		return errors.New("at least one valid team name must be configured")
	}
	return nil
}

// HasBusinessUnit reports whether bu is a configured business unit.
func (c BusinessUnitConfig) HasBusinessUnit(bu string) bool {
	_, ok := c.Units[bu]
	return ok
}

// HasLOB reports whether lob is configured under bu.
func (c BusinessUnitConfig) HasLOB(bu, lob string) bool {
	for _, name := range c.Units[bu] {
		if name == lob {
			return true
		}
	}
	return false
}

// IsValidTeam reports whether name belongs to the closed team-name set.
func (c BusinessUnitConfig) IsValidTeam(name string) bool {
	for _, t := range c.Teams {
		if t == name {
			return true
		}
	}
	return false
}

// RowLevel identifies the depth of a CapacityDataRow.
type RowLevel int

const (
	LevelBusinessUnit RowLevel = iota
	LevelLOB
	LevelTeam
)

// RowMetrics holds the computed per-period values shown on one row. Volume
// and BaseMinutes are populated on LOB and BU rows only.
type RowMetrics struct {
	RequiredHC  float64 `json:"required_hc"`
	ActualHC    float64 `json:"actual_hc"`
	OverUnderHC float64 `json:"over_under_hc"`
	Volume      float64 `json:"volume,omitempty"`
	BaseMinutes float64 `json:"base_minutes,omitempty"`
}

// CapacityDataRow is one node of the derived display tree
// (BU -> LOB -> Team). It is a projection, not a source of truth: trees are
// built for one render cycle and discarded.
type CapacityDataRow struct {
	Level    RowLevel              `json:"level"`
	Name     string                `json:"name"`
	LOBID    string                `json:"lob_id,omitempty"`
	Metrics  map[Period]RowMetrics `json:"metrics"`
	Children []CapacityDataRow     `json:"children,omitempty"`
}

// TeamField is the closed set of editable team/period attributes.
type TeamField int

const (
	FieldVolumeMix TeamField = iota
	FieldAHT
	FieldShrinkage
	FieldOccupancy
	FieldShiftMinutes
	FieldActualHC
)

var teamFieldNames = map[TeamField]string{
	FieldVolumeMix:    "volume_mix_pct",
	FieldAHT:          "aht",
	FieldShrinkage:    "shrinkage_pct",
	FieldOccupancy:    "occupancy_pct",
	FieldShiftMinutes: "shift_minutes",
	FieldActualHC:     "actual_hc",
}

func (f TeamField) String() string {
	if name, ok := teamFieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseTeamField maps a field name from a dataset or edit script to its
// TeamField value.
func ParseTeamField(s string) (TeamField, bool) {
	for f, name := range teamFieldNames {
		if name == s {
			return f, true
		}
	}
	return 0, false
}

// Set assigns one named attribute of the input. nil clears the attribute.
func (in *PeriodicInput) Set(f TeamField, v *float64) {
	switch f {
	case FieldVolumeMix:
		in.VolumeMixPercent = v
	case FieldAHT:
		in.AHT = v
	case FieldShrinkage:
		in.ShrinkagePercent = v
	case FieldOccupancy:
		in.OccupancyPercent = v
	case FieldShiftMinutes:
		in.ShiftMinutes = v
	case FieldActualHC:
		in.ActualHC = v
	}
}
