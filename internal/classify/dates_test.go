package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

func TestCorrelateDates_ReadingOutsidePeriod(t *testing.T) {
	readings := []models.MeterReading{{ReadingType: "A", Date: "2024-03-15"}}

	warnings := CorrelateDates("2024-01-01 to 2024-02-01", readings)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "2024-03-15")
	assert.Contains(t, warnings[0], "2024-01-01")
	assert.Contains(t, warnings[0], "2024-02-01")
}

func TestCorrelateDates(t *testing.T) {
	tests := []struct {
		name   string
		period string
		dates  []string
		want   int
	}{
		{"inside and on bounds", "2024-01-01 to 2024-02-01", []string{"2024-01-01", "2024-01-15", "2024-02-01"}, 0},
		{"before and after", "2024-01-01 - 2024-02-01", []string{"2023-12-31", "2024-02-02"}, 2},
		{"unknown dates skipped", "2024-01-01 - 2024-02-01", []string{models.UnknownDate, ""}, 0},
		{"day-first period is not parsed", "01/01/2024 - 01/02/2024", []string{"2025-01-01"}, 0},
		{"single date", "from 2024-01-01", []string{"2025-01-01"}, 0},
		{"invalid calendar date", "2024-13-01 to 2024-14-01", []string{"2025-01-01"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readings []models.MeterReading
			for _, d := range tt.dates {
				readings = append(readings, models.MeterReading{Date: d})
			}
			assert.Len(t, CorrelateDates(tt.period, readings), tt.want)
		})
	}
}

func TestDateWarnings_AccumulateAcrossBills(t *testing.T) {
	late := electricityBill(6, "1")
	late.ChargesAndUsage.MeterReadings[0].Date = "2024-05-01"

	warnings := ElectricityDateWarnings([]models.ElectricityBill{late, late})

	assert.Len(t, warnings, 2)
	assert.NotNil(t, GasDateWarnings(nil))
}
