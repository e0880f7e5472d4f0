package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"capacity-planner/calendar"
	customerrors "capacity-planner/errors"
	"capacity-planner/metrics"
	"capacity-planner/models"

	"github.com/google/uuid"
)

// ParseDataset reads the long-form seed CSV and returns the raw LOB entries.
// It expects lines starting with '#' to be headers/comments. Each data row
// has six fields:
//
//	business_unit, lob, team, period, field, value
//
// Rows with an empty team column carry LOB-level fields (volume, aht,
// base_minutes); rows naming a team carry team-level fields (volume_mix_pct,
// aht, shrinkage_pct, occupancy_pct, shift_minutes, actual_hc). Business
// unit, LOB, and team names are validated against the static reference
// config, and period labels against the generated pattern. LOB entries are
// assigned stable UUID identifiers in first-seen order.
func ParseDataset(r io.Reader, cfg models.BusinessUnitConfig) ([]models.RawLoBEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var entries []models.RawLoBEntry
	index := make(map[string]int)
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		if len(record) > 0 && strings.HasPrefix(record[0], "#") {
			continue
		}
		if len(record) != 6 {
			metrics.ParserErrorsTotal.WithLabelValues("invalid_field_count").Inc()
			return nil, &customerrors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    customerrors.ErrInvalidFieldCount,
			}
		}

		bu := strings.TrimSpace(record[0])
		lobName := strings.TrimSpace(record[1])
		teamName := strings.TrimSpace(record[2])
		period := models.Period(strings.TrimSpace(record[3]))
		field := strings.TrimSpace(record[4])
		rawValue := strings.TrimSpace(record[5])

		if err := validateNames(cfg, bu, lobName, teamName); err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
			return nil, &customerrors.ParseError{Line: lineNum, Record: record, Err: err}
		}
		if _, _, err := calendar.DateRangeOf(period); err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("malformed_period").Inc()
			return nil, &customerrors.ParseError{Line: lineNum, Record: record, Err: err}
		}

		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("invalid_value").Inc()
			return nil, &customerrors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %v", customerrors.ErrInvalidValue, err),
			}
		}

		entry := ensureEntry(&entries, index, bu, lobName)
		if teamName == "" {
			switch field {
			case "volume":
				entry.VolumeForecast[period] = value
			case "aht":
				entry.AverageAHT[period] = value
			case "base_minutes":
				entry.BaseRequiredMinutes[period] = value
			default:
				metrics.ParserErrorsTotal.WithLabelValues("unknown_field").Inc()
				return nil, &customerrors.ParseError{
					Line:   lineNum,
					Record: record,
					Err:    fmt.Errorf("%w: %q", customerrors.ErrUnknownField, field),
				}
			}
		} else {
			f, ok := models.ParseTeamField(field)
			if !ok {
				metrics.ParserErrorsTotal.WithLabelValues("unknown_field").Inc()
				return nil, &customerrors.ParseError{
					Line:   lineNum,
					Record: record,
					Err:    fmt.Errorf("%w: %q", customerrors.ErrUnknownField, field),
				}
			}
			team := ensureTeam(entry, teamName)
			in := team.Inputs[period]
			v := value
			in.Set(f, &v)
			team.Inputs[period] = in
		}
		metrics.ParserRecordsTotal.Inc()
	}

	return entries, nil
}

// Edit is one scripted cell edit. Value stays a raw string: the capacity
// store owns numeric parsing and its no-op rules.
type Edit struct {
	BusinessUnit string
	LOB          string
	Team         string
	Period       models.Period
	Field        string
	Value        string
}

// ParseEdits reads an edit script in the same six-field CSV shape as the
// seed dataset. Field names are validated here; values are deliberately not,
// since invalid numeric text is a defined no-op at the store.
func ParseEdits(r io.Reader) ([]Edit, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var edits []Edit
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		if len(record) > 0 && strings.HasPrefix(record[0], "#") {
			continue
		}
		if len(record) != 6 {
			return nil, &customerrors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    customerrors.ErrInvalidFieldCount,
			}
		}

		edit := Edit{
			BusinessUnit: strings.TrimSpace(record[0]),
			LOB:          strings.TrimSpace(record[1]),
			Team:         strings.TrimSpace(record[2]),
			Period:       models.Period(strings.TrimSpace(record[3])),
			Field:        strings.TrimSpace(record[4]),
			Value:        strings.TrimSpace(record[5]),
		}

		if edit.Team == "" {
			if edit.Field != "base_minutes" {
				return nil, &customerrors.ParseError{
					Line:   lineNum,
					Record: record,
					Err:    fmt.Errorf("%w: %q", customerrors.ErrUnknownField, edit.Field),
				}
			}
		} else if _, ok := models.ParseTeamField(edit.Field); !ok {
			return nil, &customerrors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %q", customerrors.ErrUnknownField, edit.Field),
			}
		}
		if _, _, err := calendar.DateRangeOf(edit.Period); err != nil {
			return nil, &customerrors.ParseError{Line: lineNum, Record: record, Err: err}
		}
		edits = append(edits, edit)
	}

	return edits, nil
}

func validateNames(cfg models.BusinessUnitConfig, bu, lob, team string) error {
	if !cfg.HasBusinessUnit(bu) {
		return fmt.Errorf("%w: %q", customerrors.ErrUnknownBusinessUnit, bu)
	}
	if !cfg.HasLOB(bu, lob) {
		return fmt.Errorf("%w: %q under %q", customerrors.ErrUnknownLineOfBusiness, lob, bu)
	}
	if team != "" && !cfg.IsValidTeam(team) {
		return fmt.Errorf("%w: %q", customerrors.ErrUnknownTeam, team)
	}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, customerrors.ErrUnknownBusinessUnit):
		return "unknown_business_unit"
	case errors.Is(err, customerrors.ErrUnknownLineOfBusiness):
		return "unknown_lob"
	default:
		return "unknown_team"
	}
}

func ensureEntry(entries *[]models.RawLoBEntry, index map[string]int, bu, lob string) *models.RawLoBEntry {
	key := bu + "\x00" + lob
	if i, ok := index[key]; ok {
		return &(*entries)[i]
	}
	*entries = append(*entries, models.RawLoBEntry{
		ID:                  uuid.NewString(),
		BusinessUnit:        bu,
		Name:                lob,
		VolumeForecast:      make(map[models.Period]float64),
		AverageAHT:          make(map[models.Period]float64),
		BaseRequiredMinutes: make(map[models.Period]float64),
	})
	index[key] = len(*entries) - 1
	return &(*entries)[len(*entries)-1]
}

func ensureTeam(entry *models.RawLoBEntry, name string) *models.RawTeamEntry {
	for i := range entry.Teams {
		if entry.Teams[i].Name == name {
			return &entry.Teams[i]
		}
	}
	entry.Teams = append(entry.Teams, models.RawTeamEntry{
		Name:   name,
		Inputs: make(map[models.Period]models.PeriodicInput),
	})
	return &entry.Teams[len(entry.Teams)-1]
}
