package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"capacity-planner/models"
	"capacity-planner/projection"

	"github.com/xuri/excelize/v2"
)

// flatRow is one depth-first row of the projected tree, ready for tabular
// output.
type flatRow struct {
	Level   models.RowLevel
	Name    string
	Metrics map[models.Period]models.RowMetrics
}

func flatten(rows []models.CapacityDataRow) []flatRow {
	var out []flatRow
	for _, row := range rows {
		out = append(out, flatRow{Level: row.Level, Name: row.Name, Metrics: row.Metrics})
		out = append(out, flatten(row.Children)...)
	}
	return out
}

func levelName(l models.RowLevel) string {
	switch l {
	case models.LevelBusinessUnit:
		return "BU"
	case models.LevelLOB:
		return "LOB"
	default:
		return "Team"
	}
}

// FormatText returns the text representation of the projected rows
func FormatText(res *projection.Result) string {
	var sb strings.Builder
	for _, row := range flatten(res.Rows) {
		indent := strings.Repeat("  ", int(row.Level))
		sb.WriteString(fmt.Sprintf("%s%s [%s]\n", indent, row.Name, levelName(row.Level)))
		for _, period := range res.Periods {
			m := row.Metrics[period]
			sb.WriteString(fmt.Sprintf("%s  %s : required=%.2f, actual=%.2f, over/under=%+.2f\n",
				indent, period, m.RequiredHC, m.ActualHC, m.OverUnderHC))
		}
	}
	return sb.String()
}

// FormatJSON returns the JSON representation of the projected rows
func FormatJSON(res *projection.Result) string {
	jsonBytes, _ := json.MarshalIndent(res, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the projected rows: one row
// per tree node, three columns (required/actual/over-under) per period.
func FormatCSV(res *projection.Result) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{"Level", "Name"}
	for _, period := range res.Periods {
		header = append(header,
			fmt.Sprintf("%s required", period),
			fmt.Sprintf("%s actual", period),
			fmt.Sprintf("%s over/under", period),
		)
	}
	writer.Write(header)

	for _, row := range flatten(res.Rows) {
		record := []string{levelName(row.Level), row.Name}
		for _, period := range res.Periods {
			m := row.Metrics[period]
			record = append(record,
				fmt.Sprintf("%.2f", m.RequiredHC),
				fmt.Sprintf("%.2f", m.ActualHC),
				fmt.Sprintf("%.2f", m.OverUnderHC),
			)
		}
		writer.Write(record)
	}

	writer.Flush()
	return sb.String()
}

// WriteXLSX writes the projected rows as a spreadsheet: a summary block plus
// the full capacity grid, one row per tree node.
func WriteXLSX(w io.Writer, res *projection.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	index, err := f.NewSheet(summary)
	if err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)

	grid := "Capacity Plan"
	if _, err := f.NewSheet(grid); err != nil {
		return fmt.Errorf("failed to create grid sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	rows := flatten(res.Rows)
	f.SetCellValue(summary, "A1", "Capacity Plan Export")
	f.SetCellValue(summary, "A2", "Rows")
	f.SetCellValue(summary, "B2", len(rows))
	f.SetCellValue(summary, "A3", "Periods")
	f.SetCellValue(summary, "B3", len(res.Periods))
	if len(res.Periods) > 0 {
		f.SetCellValue(summary, "A4", "First Period")
		f.SetCellValue(summary, "B4", string(res.Periods[0]))
		f.SetCellValue(summary, "A5", "Last Period")
		f.SetCellValue(summary, "B5", string(res.Periods[len(res.Periods)-1]))
	}

	f.SetCellValue(grid, "A1", "Level")
	f.SetCellValue(grid, "B1", "Name")
	col := 3
	for _, period := range res.Periods {
		for _, suffix := range []string{"required", "actual", "over/under"} {
			cell, _ := excelize.CoordinatesToCellName(col, 1)
			f.SetCellValue(grid, cell, fmt.Sprintf("%s %s", period, suffix))
			col++
		}
	}

	for i, row := range rows {
		rowNum := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		f.SetCellValue(grid, cell, levelName(row.Level))
		cell, _ = excelize.CoordinatesToCellName(2, rowNum)
		f.SetCellValue(grid, cell, strings.Repeat("  ", int(row.Level))+row.Name)

		col := 3
		for _, period := range res.Periods {
			m := row.Metrics[period]
			for _, v := range []float64{m.RequiredHC, m.ActualHC, m.OverUnderHC} {
				cell, _ := excelize.CoordinatesToCellName(col, rowNum)
				f.SetCellValue(grid, cell, v)
				col++
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
