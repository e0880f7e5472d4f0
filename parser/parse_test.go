package parser_test

import (
	"strings"
	"testing"

	customerrors "capacity-planner/errors"
	"capacity-planner/models"
	"capacity-planner/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wk14 = "FWk14: 03/31-04/06 (2025)"

func testConfig() models.BusinessUnitConfig {
	return models.BusinessUnitConfig{
		Units: map[string][]string{"WFS": {"Care", "Support"}},
		Teams: []string{"A", "B"},
	}
}

func TestParseDataset_ValidInput(t *testing.T) {
	input := `# business_unit, lob, team, period, field, value
WFS, Care, , ` + wk14 + `, volume, 120
WFS, Care, , ` + wk14 + `, aht, 8.5
WFS, Care, A, ` + wk14 + `, volume_mix_pct, 60
WFS, Care, A, ` + wk14 + `, actual_hc, 14
WFS, Care, B, ` + wk14 + `, volume_mix_pct, 40
WFS, Support, , ` + wk14 + `, base_minutes, 900
WFS, Support, A, ` + wk14 + `, shrinkage_pct, 25
`

	entries, err := parser.ParseDataset(strings.NewReader(input), testConfig())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	care := entries[0]
	assert.Equal(t, "WFS", care.BusinessUnit)
	assert.Equal(t, "Care", care.Name)
	assert.NotEmpty(t, care.ID)
	assert.Equal(t, 120.0, care.VolumeForecast[wk14])
	assert.Equal(t, 8.5, care.AverageAHT[wk14])

	require.Len(t, care.Teams, 2)
	teamA := care.Teams[0]
	assert.Equal(t, "A", teamA.Name)
	require.NotNil(t, teamA.Inputs[wk14].VolumeMixPercent)
	assert.Equal(t, 60.0, *teamA.Inputs[wk14].VolumeMixPercent)
	require.NotNil(t, teamA.Inputs[wk14].ActualHC)
	assert.Equal(t, 14.0, *teamA.Inputs[wk14].ActualHC)

	support := entries[1]
	assert.Equal(t, "Support", support.Name)
	assert.Equal(t, 900.0, support.BaseRequiredMinutes[wk14])
	require.Len(t, support.Teams, 1)
	require.NotNil(t, support.Teams[0].Inputs[wk14].ShrinkagePercent)
	assert.Equal(t, 25.0, *support.Teams[0].Inputs[wk14].ShrinkagePercent)

	// Each entry gets its own stable identifier
	assert.NotEqual(t, care.ID, support.ID)
}

func TestParseDataset_Errors(t *testing.T) {
	tests := map[string]struct {
		input    string
		sentinel error
		line     int
	}{
		"InvalidFieldCount": {
			input:    "WFS, Care, A, " + wk14 + ", volume_mix_pct\n",
			sentinel: customerrors.ErrInvalidFieldCount,
			line:     1,
		},
		"UnknownBusinessUnit": {
			input:    "Acme, Care, A, " + wk14 + ", volume_mix_pct, 50\n",
			sentinel: customerrors.ErrUnknownBusinessUnit,
			line:     1,
		},
		"UnknownLOB": {
			input:    "WFS, Billing, A, " + wk14 + ", volume_mix_pct, 50\n",
			sentinel: customerrors.ErrUnknownLineOfBusiness,
			line:     1,
		},
		"UnknownTeam": {
			input:    "WFS, Care, Z, " + wk14 + ", volume_mix_pct, 50\n",
			sentinel: customerrors.ErrUnknownTeam,
			line:     1,
		},
		"UnknownTeamField": {
			input:    "WFS, Care, A, " + wk14 + ", frobnication, 50\n",
			sentinel: customerrors.ErrUnknownField,
			line:     1,
		},
		"TeamFieldOnLOBRow": {
			input:    "WFS, Care, , " + wk14 + ", volume_mix_pct, 50\n",
			sentinel: customerrors.ErrUnknownField,
			line:     1,
		},
		"MalformedPeriod": {
			input:    "WFS, Care, A, sometime in april, volume_mix_pct, 50\n",
			sentinel: customerrors.ErrMalformedPeriodLabel,
			line:     1,
		},
		"InvalidValue": {
			input:    "WFS, Care, A, " + wk14 + ", volume_mix_pct, lots\n",
			sentinel: customerrors.ErrInvalidValue,
			line:     1,
		},
		"ErrorOnLaterLine": {
			input: "# header\n" +
				"WFS, Care, A, " + wk14 + ", volume_mix_pct, 50\n" +
				"WFS, Care, B, " + wk14 + ", volume_mix_pct, oops\n",
			sentinel: customerrors.ErrInvalidValue,
			line:     3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseDataset(strings.NewReader(tt.input), testConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var parseErr *customerrors.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestParseDataset_CommentsAndEmptyInput(t *testing.T) {
	entries, err := parser.ParseDataset(strings.NewReader("# only a comment\n"), testConfig())
	assert.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = parser.ParseDataset(strings.NewReader(""), testConfig())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseEdits_ValidScript(t *testing.T) {
	input := `# edits
WFS, Care, A, ` + wk14 + `, volume_mix_pct, 75
WFS, Care, , ` + wk14 + `, base_minutes, 1200
WFS, Care, B, ` + wk14 + `, aht, -
`

	edits, err := parser.ParseEdits(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, edits, 3)

	assert.Equal(t, parser.Edit{
		BusinessUnit: "WFS",
		LOB:          "Care",
		Team:         "A",
		Period:       wk14,
		Field:        "volume_mix_pct",
		Value:        "75",
	}, edits[0])

	// LOB-level edit carries an empty team; clear markers pass through raw.
	assert.Empty(t, edits[1].Team)
	assert.Equal(t, "-", edits[2].Value)
}

func TestParseEdits_Errors(t *testing.T) {
	tests := map[string]string{
		"LOBEditMustBeBaseMinutes": "WFS, Care, , " + wk14 + ", volume, 120\n",
		"UnknownTeamField":         "WFS, Care, A, " + wk14 + ", frobnication, 50\n",
		"MalformedPeriod":          "WFS, Care, A, next week, volume_mix_pct, 50\n",
		"InvalidFieldCount":        "WFS, Care, A\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseEdits(strings.NewReader(input))
			require.Error(t, err)

			var parseErr *customerrors.ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseEdits_ValuesNotValidated(t *testing.T) {
	// Invalid numeric text is a defined no-op at the store, so the parser
	// accepts it.
	input := "WFS, Care, A, " + wk14 + ", volume_mix_pct, notanumber\n"

	edits, err := parser.ParseEdits(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "notanumber", edits[0].Value)
}
