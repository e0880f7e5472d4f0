// Package store owns the raw hierarchical capacity dataset (business unit ->
// line of business -> team -> period) and enforces the invariant that sibling
// teams' volume-mix percentages sum to 100 per period.
//
// Snapshots are immutable: every mutation returns a new snapshot and never
// alters a previously returned one, which keeps undo/redo and reads of prior
// state safe. Cloning is copy-on-write at LOB granularity - only the touched
// LOB entry is deep-copied, the rest are shared.
package store

import (
	"math"
	"strconv"
	"strings"

	"capacity-planner/metrics"
	"capacity-planner/models"
)

// Snapshot is one immutable state of the raw dataset.
type Snapshot struct {
	lobs []models.RawLoBEntry
}

// New builds the initial snapshot from a seed dataset. The input is deep
// copied so the caller cannot alias into the snapshot.
func New(lobs []models.RawLoBEntry) *Snapshot {
	owned := make([]models.RawLoBEntry, len(lobs))
	for i, l := range lobs {
		owned[i] = l.Clone()
	}
	return &Snapshot{lobs: owned}
}

// Entries returns pointers to the snapshot's LOB entries in seed order.
// Callers must treat them as read-only; all edits go through Set*.
func (s *Snapshot) Entries() []*models.RawLoBEntry {
	out := make([]*models.RawLoBEntry, len(s.lobs))
	for i := range s.lobs {
		out[i] = &s.lobs[i]
	}
	return out
}

// LOB returns the entry with the given stable ID.
func (s *Snapshot) LOB(id string) (*models.RawLoBEntry, bool) {
	if i := s.lobIndex(id); i >= 0 {
		return &s.lobs[i], true
	}
	return nil, false
}

// FindLOB returns the entry for a business-unit/LOB name pair.
func (s *Snapshot) FindLOB(businessUnit, name string) (*models.RawLoBEntry, bool) {
	for i := range s.lobs {
		if s.lobs[i].BusinessUnit == businessUnit && s.lobs[i].Name == name {
			return &s.lobs[i], true
		}
	}
	return nil, false
}

// SetTeamField applies a single-cell edit to one team/period attribute and
// returns the resulting snapshot. rawValue is the text exactly as typed:
// empty or "-" clears the value, non-numeric text makes the edit a no-op
// (the receiver is returned unchanged), as does a stale lobID or teamName.
// Editing the volume-mix percentage redistributes the remainder across
// sibling teams so the LOB's mixes still sum to 100 for the period.
func (s *Snapshot) SetTeamField(lobID, teamName string, period models.Period, field models.TeamField, rawValue string) *Snapshot {
	value, ok := parseNumeric(rawValue)
	if !ok {
		metrics.EditsRejected.WithLabelValues("invalid_value").Inc()
		return s
	}
	li := s.lobIndex(lobID)
	if li < 0 {
		metrics.EditsRejected.WithLabelValues("unknown_lob").Inc()
		return s
	}
	ti := teamIndex(&s.lobs[li], teamName)
	if ti < 0 {
		metrics.EditsRejected.WithLabelValues("unknown_team").Inc()
		return s
	}

	next := s.cloneWith(li)
	lob := &next.lobs[li]

	if field == models.FieldVolumeMix && value != nil {
		redistributeMix(lob, ti, period, *value)
	} else {
		in := lob.Teams[ti].Inputs[period]
		in.Set(field, value)
		lob.Teams[ti].Inputs[period] = in
	}
	metrics.EditsApplied.WithLabelValues(field.String()).Inc()
	return next
}

// SetLOBField sets the manual base-required-minutes override for one LOB and
// period. The override becomes authoritative: the period's volume forecast
// and average AHT are cleared so volume x AHT cannot silently re-derive over
// it on the next projection. Numeric parsing and no-op rules match
// SetTeamField.
func (s *Snapshot) SetLOBField(lobID string, period models.Period, rawValue string) *Snapshot {
	value, ok := parseNumeric(rawValue)
	if !ok {
		metrics.EditsRejected.WithLabelValues("invalid_value").Inc()
		return s
	}
	li := s.lobIndex(lobID)
	if li < 0 {
		metrics.EditsRejected.WithLabelValues("unknown_lob").Inc()
		return s
	}

	next := s.cloneWith(li)
	lob := &next.lobs[li]
	if value == nil {
		delete(lob.BaseRequiredMinutes, period)
	} else {
		lob.BaseRequiredMinutes[period] = *value
	}
	delete(lob.VolumeForecast, period)
	delete(lob.AverageAHT, period)
	metrics.EditsApplied.WithLabelValues("base_minutes").Inc()
	return next
}

// CacheBaseMinutes writes a derived volume x AHT value back onto the LOB
// entry so later reads of the override field stay consistent with the
// derived value. Used by the projection pipeline only; the written value is
// always re-derivable, so this does not violate the snapshot contract for
// edits.
func (s *Snapshot) CacheBaseMinutes(lobID string, period models.Period, minutes float64) {
	if li := s.lobIndex(lobID); li >= 0 {
		s.lobs[li].BaseRequiredMinutes[period] = minutes
	}
}

// MixSum returns the sum of defined volume-mix percentages across a LOB's
// teams for one period, and whether any team has a defined mix.
func (s *Snapshot) MixSum(lobID string, period models.Period) (float64, bool) {
	li := s.lobIndex(lobID)
	if li < 0 {
		return 0, false
	}
	lob := &s.lobs[li]
	total, defined := 0.0, false
	for i := range lob.Teams {
		if v := lob.Teams[i].Inputs[period].VolumeMixPercent; v != nil {
			total += *v
			defined = true
		}
	}
	return total, defined
}

// redistributeMix applies an edited mix percentage and spreads the remainder
// to 100 across the sibling teams: proportionally to their existing shares
// when those sum to anything non-negligible, evenly otherwise. The last
// sibling in iteration order absorbs floating-point drift so the group sum
// is exact, and a final correction fixes any residual above 0.01.
func redistributeMix(lob *models.RawLoBEntry, edited int, period models.Period, newMix float64) {
	mix := clampPercent(newMix)
	setMix(lob, edited, period, mix)

	others := make([]int, 0, len(lob.Teams)-1)
	for i := range lob.Teams {
		if i != edited {
			others = append(others, i)
		}
	}
	// A single-team LOB has no siblings to redistribute against: the clamped
	// edit stands even when it leaves the lone team below 100.
	if len(others) == 0 {
		return
	}
	metrics.RedistributionRuns.Inc()

	remaining := 100 - mix
	olds := make([]float64, len(others))
	oldTotal := 0.0
	for i, idx := range others {
		olds[i] = mixOf(lob, idx, period)
		oldTotal += olds[i]
	}

	assigned := 0.0
	for i, idx := range others {
		var share float64
		switch {
		case i == len(others)-1:
			share = remaining - assigned
		case oldTotal > 0.001:
			share = remaining * (olds[i] / oldTotal)
		default:
			share = remaining / float64(len(others))
		}
		assigned += share
		setMix(lob, idx, period, share)
	}

	total := mix
	for _, idx := range others {
		total += mixOf(lob, idx, period)
	}
	if math.Abs(total-100) > 0.01 {
		target := residualTarget(lob, period, edited)
		setMix(lob, target, period, mixOf(lob, target, period)+(100-total))
	}
}

// residualTarget picks the team absorbing the residual correction: the
// edited team, else the first team with a positive mix, else the first team.
func residualTarget(lob *models.RawLoBEntry, period models.Period, edited int) int {
	if edited >= 0 && edited < len(lob.Teams) {
		return edited
	}
	for i := range lob.Teams {
		if mixOf(lob, i, period) > 0 {
			return i
		}
	}
	return 0
}

func mixOf(lob *models.RawLoBEntry, idx int, period models.Period) float64 {
	if v := lob.Teams[idx].Inputs[period].VolumeMixPercent; v != nil {
		return *v
	}
	return 0
}

func setMix(lob *models.RawLoBEntry, idx int, period models.Period, value float64) {
	in := lob.Teams[idx].Inputs[period]
	v := value
	in.VolumeMixPercent = &v
	lob.Teams[idx].Inputs[period] = in
}

// parseNumeric parses an edited text-input value. Empty or "-" means "clear
// the value" (nil). Non-numeric text returns ok=false, which callers treat
// as a no-op.
func parseNumeric(raw string) (*float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return nil, true
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// cloneWith returns a snapshot sharing every LOB entry except lobs[idx],
// which is deep-copied.
func (s *Snapshot) cloneWith(idx int) *Snapshot {
	next := make([]models.RawLoBEntry, len(s.lobs))
	copy(next, s.lobs)
	next[idx] = s.lobs[idx].Clone()
	return &Snapshot{lobs: next}
}

func (s *Snapshot) lobIndex(id string) int {
	for i := range s.lobs {
		if s.lobs[i].ID == id {
			return i
		}
	}
	return -1
}

func teamIndex(lob *models.RawLoBEntry, name string) int {
	for i := range lob.Teams {
		if lob.Teams[i].Name == name {
			return i
		}
	}
	return -1
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
