// Package projection derives the flattened, period-filtered capacity row
// tree that the presentation layer consumes. It is recomputed in full from
// the raw dataset on every filter or data change; rows are never mutated in
// place.
package projection

import (
	"time"

	"capacity-planner/calculator"
	"capacity-planner/calendar"
	"capacity-planner/metrics"
	"capacity-planner/models"
	"capacity-planner/store"
)

// Filter is the current view selection.
type Filter struct {
	BusinessUnit string
	// LOBs restricts the view; empty, or naming every configured LOB of the
	// business unit, means "all LOBs".
	LOBs        []string
	Granularity models.Granularity
	// DateRange, when set, includes every period overlapping it (inclusive).
	// When nil, the default bounded window applies.
	DateRange *models.DateRange
}

// Result is the projected view: a BU-rooted row tree plus the period columns
// it covers.
type Result struct {
	Rows    []models.CapacityDataRow `json:"rows"`
	Periods []models.Period          `json:"periods"`
}

// Pipeline projects store snapshots against the configured calendar horizon
// and planning constants.
type Pipeline struct {
	config              models.BusinessUnitConfig
	horizon             calendar.Horizon
	standardWorkMinutes float64
	defaultWindow       int
}

// New builds a pipeline. defaultWindow caps the period columns when no date
// range is selected, to avoid unbounded table width.
func New(cfg models.BusinessUnitConfig, horizon calendar.Horizon, standardWorkMinutes float64, defaultWindow int) *Pipeline {
	if defaultWindow <= 0 {
		defaultWindow = 60
	}
	return &Pipeline{
		config:              cfg,
		horizon:             horizon,
		standardWorkMinutes: standardWorkMinutes,
		defaultWindow:       defaultWindow,
	}
}

// Project produces the row tree for the filter against a fully-settled
// snapshot. The business-unit row is omitted entirely when no LOB survives
// filtering. Recomputing a LOB's derived base minutes writes the value back
// onto the snapshot entry (see Snapshot.CacheBaseMinutes).
func (p *Pipeline) Project(snap *store.Snapshot, f Filter) Result {
	start := time.Now()
	metrics.ResetProjectionGauges()

	periods := p.selectPeriods(f)
	selected := p.selectedLOBs(f)

	buRow := models.CapacityDataRow{
		Level:   models.LevelBusinessUnit,
		Name:    f.BusinessUnit,
		Metrics: make(map[models.Period]models.RowMetrics, len(periods)),
	}

	understaffed := 0
	for _, lobName := range p.config.Units[f.BusinessUnit] {
		if !selected[lobName] {
			continue
		}
		entry, ok := snap.FindLOB(f.BusinessUnit, lobName)
		if !ok {
			continue
		}
		lobRow := p.projectLOB(snap, entry, periods)
		for _, period := range periods {
			lm := lobRow.Metrics[period]
			bm := buRow.Metrics[period]
			bm.RequiredHC += lm.RequiredHC
			bm.ActualHC += lm.ActualHC
			bm.OverUnderHC = bm.ActualHC - bm.RequiredHC
			bm.Volume += lm.Volume
			bm.BaseMinutes += lm.BaseMinutes
			buRow.Metrics[period] = bm
			if lm.OverUnderHC < 0 {
				understaffed++
			}
		}
		buRow.Children = append(buRow.Children, lobRow)
	}

	res := Result{Periods: periods}
	if len(buRow.Children) > 0 {
		res.Rows = []models.CapacityDataRow{buRow}
	}

	observe(f.BusinessUnit, res, understaffed, time.Since(start))
	return res
}

// projectLOB builds one LOB row with its team children for the period window.
func (p *Pipeline) projectLOB(snap *store.Snapshot, entry *models.RawLoBEntry, periods []models.Period) models.CapacityDataRow {
	lobRow := models.CapacityDataRow{
		Level:   models.LevelLOB,
		Name:    entry.Name,
		LOBID:   entry.ID,
		Metrics: make(map[models.Period]models.RowMetrics, len(periods)),
	}

	// A LOB can legitimately have no teams yet; its row still appears.
	teamRows := make([]models.CapacityDataRow, len(entry.Teams))
	for i := range entry.Teams {
		teamRows[i] = models.CapacityDataRow{
			Level:   models.LevelTeam,
			Name:    entry.Teams[i].Name,
			LOBID:   entry.ID,
			Metrics: make(map[models.Period]models.RowMetrics, len(periods)),
		}
	}

	for _, period := range periods {
		base := p.baseMinutes(snap, entry, period)
		var required, actual float64
		for i := range entry.Teams {
			m := calculator.ComputeTeamMetrics(entry.Teams[i].Inputs[period], base, p.standardWorkMinutes)
			teamRows[i].Metrics[period] = models.RowMetrics{
				RequiredHC:  m.RequiredHC,
				ActualHC:    m.ActualHC,
				OverUnderHC: m.OverUnderHC,
			}
			required += m.RequiredHC
			actual += m.ActualHC
		}
		lobRow.Metrics[period] = models.RowMetrics{
			RequiredHC:  required,
			ActualHC:    actual,
			OverUnderHC: actual - required,
			Volume:      entry.VolumeForecast[period],
			BaseMinutes: base,
		}
	}
	lobRow.Children = teamRows
	return lobRow
}

// baseMinutes recomputes the LOB's total base required minutes for a period:
// volume x AHT when both are entered and AHT > 0 (the derived value is then
// cached back onto the entry), otherwise the stored manual override, which
// defaults to 0 when never set.
func (p *Pipeline) baseMinutes(snap *store.Snapshot, entry *models.RawLoBEntry, period models.Period) float64 {
	volume, hasVolume := entry.VolumeForecast[period]
	aht, hasAHT := entry.AverageAHT[period]
	if hasVolume && hasAHT && aht > 0 {
		derived := volume * aht
		snap.CacheBaseMinutes(entry.ID, period, derived)
		return derived
	}
	return entry.BaseRequiredMinutes[period]
}

func (p *Pipeline) selectPeriods(f Filter) []models.Period {
	all := calendar.Generate(f.Granularity, p.horizon)
	if f.DateRange == nil {
		if len(all) > p.defaultWindow {
			return all[:p.defaultWindow]
		}
		return all
	}
	var out []models.Period
	for _, period := range all {
		// Generated labels always parse, so the error branch is unreachable
		// here; Overlaps keeps it for externally built labels.
		if ok, err := calendar.Overlaps(period, *f.DateRange); err == nil && ok {
			out = append(out, period)
		}
	}
	return out
}

// selectedLOBs resolves the filter's LOB restriction to a membership set
// over the business unit's configured LOBs.
func (p *Pipeline) selectedLOBs(f Filter) map[string]bool {
	configured := p.config.Units[f.BusinessUnit]
	requested := make(map[string]bool, len(f.LOBs))
	for _, name := range f.LOBs {
		requested[name] = true
	}

	all := len(requested) == 0
	if !all {
		all = true
		for _, name := range configured {
			if !requested[name] {
				all = false
				break
			}
		}
	}

	selected := make(map[string]bool, len(configured))
	for _, name := range configured {
		if all || requested[name] {
			selected[name] = true
		}
	}
	return selected
}

func observe(businessUnit string, res Result, understaffed int, elapsed time.Duration) {
	metrics.ProjectionDurationSeconds.Observe(elapsed.Seconds())
	metrics.ProjectionPeriods.Set(float64(len(res.Periods)))
	metrics.ProjectionRows.Observe(float64(countRows(res.Rows)))
	metrics.UnderstaffedPeriods.WithLabelValues(businessUnit).Set(float64(understaffed))

	var required, actual float64
	for _, row := range res.Rows {
		for _, m := range row.Metrics {
			required += m.RequiredHC
			actual += m.ActualHC
		}
	}
	metrics.RequiredHeadcountTotal.WithLabelValues(businessUnit).Set(required)
	metrics.ActualHeadcountTotal.WithLabelValues(businessUnit).Set(actual)
}

func countRows(rows []models.CapacityDataRow) int {
	n := 0
	for _, row := range rows {
		n += 1 + countRows(row.Children)
	}
	return n
}
