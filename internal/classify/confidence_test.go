package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

func completeElectricity() models.ElectricityBill {
	b := electricityBill(6, "10001234567")
	b.SupplierDetails.BillingPeriod = "01/01/2024 - 31/01/2024"
	b.SupplierDetails.IssueDate = "2024-02-05"
	b.ElectricityDetails.MeterDetails.DG = "DG5"
	b.ElectricityDetails.MeterDetails.MCC = "MCC01"
	b.ChargesAndUsage.DetailedKWhUsage = []models.UsageLine{{Description: "Day", KWh: decimal.NewFromInt(310)}}
	return b
}

func completeGas() models.GasBill {
	b := gasBill(6, "7654321")
	b.SupplierDetails.BillingPeriod = "01/01/2024 - 31/01/2024"
	b.SupplierDetails.IssueDate = "2024-02-03"
	b.ChargesAndUsage.CalorificValue = decimal.NewFromFloat(39.8)
	b.ChargesAndUsage.ConversionFactor = decimal.NewFromFloat(11.2)
	b.ChargesAndUsage.DetailedKWhUsage = []models.UsageLine{{Description: "Gas", KWh: decimal.NewFromInt(900)}}
	return b
}

func withCustomer(ext models.Extraction) models.Extraction {
	ext.Customer = models.Customer{
		Name:    "Mary Murphy",
		Address: models.Address{Line1: "12 Main St", County: "Cork", Eircode: "T12 AB34"},
	}
	return ext
}

func TestConfidenceScore_CompleteElectricityBill(t *testing.T) {
	ext := withCustomer(extraction([]models.ElectricityBill{completeElectricity()}, nil))

	// key 10+22, completeness 35, dates 25
	assert.Equal(t, 92, ConfidenceScore(&ext, true, false))
}

func TestConfidenceScore_CombinedBillIsCapped(t *testing.T) {
	ext := withCustomer(extraction([]models.ElectricityBill{completeElectricity()}, []models.GasBill{completeGas()}))

	assert.Equal(t, 100, ConfidenceScore(&ext, true, true))
}

func TestConfidenceScore_EmptyExtraction(t *testing.T) {
	ext := extraction(nil, nil)

	// nothing present, nothing to penalise
	assert.Equal(t, 25, ConfidenceScore(&ext, false, false))
	assert.Equal(t, 0, ConfidenceScore(nil, true, true))
}

func TestConfidenceScore_OnlyCountsPresentUtilities(t *testing.T) {
	ext := extraction([]models.ElectricityBill{completeElectricity()}, nil)

	assert.Equal(t, 25, ConfidenceScore(&ext, false, false))
}

func TestDateScore_Penalties(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ElectricityBill)
		want   float64
	}{
		{"consistent", func(b *models.ElectricityBill) {}, 25},
		{"missing period", func(b *models.ElectricityBill) { b.SupplierDetails.BillingPeriod = "" }, 20},
		{"iso period is not day-first", func(b *models.ElectricityBill) { b.SupplierDetails.BillingPeriod = "2024-01-01 to 2024-01-31" }, 22},
		{"start after end", func(b *models.ElectricityBill) { b.SupplierDetails.BillingPeriod = "31/01/2024 - 01/01/2024" }, 20},
		{"reading out of range", func(b *models.ElectricityBill) { b.ChargesAndUsage.MeterReadings[0].Date = "2024-02-10" }, 22},
		{"issued before period end", func(b *models.ElectricityBill) { b.SupplierDetails.IssueDate = "2024-01-20" }, 23},
		{"unknown issue date", func(b *models.ElectricityBill) { b.SupplierDetails.IssueDate = models.UnknownDate }, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := completeElectricity()
			tt.mutate(&b)
			ext := extraction([]models.ElectricityBill{b}, nil)
			assert.Equal(t, tt.want, dateScore(&ext, true, false))
		})
	}
}

func TestDateScore_Floor(t *testing.T) {
	b := models.ElectricityBill{}
	b.SupplierDetails.BillingPeriod = "01/01/2024 - 31/01/2024"
	for i := 0; i < 9; i++ {
		b.ChargesAndUsage.MeterReadings = append(b.ChargesAndUsage.MeterReadings,
			models.MeterReading{Date: "2023-06-01", Value: decimal.NewFromInt(int64(i))})
	}
	ext := extraction([]models.ElectricityBill{b}, nil)

	assert.Equal(t, 0.0, dateScore(&ext, true, false))
	// billing period 7 + readings 7
	assert.Equal(t, 14, ConfidenceScore(&ext, true, false))
}

func TestConfidenceScore_Bounds(t *testing.T) {
	bills := []models.ElectricityBill{{}, electricityBill(3, "1"), completeElectricity()}
	for _, b := range bills {
		for _, flags := range [][2]bool{{false, false}, {true, false}, {true, true}} {
			ext := withCustomer(extraction([]models.ElectricityBill{b, b}, []models.GasBill{gasBill(2, "9")}))
			score := ConfidenceScore(&ext, flags[0], flags[1])
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}
