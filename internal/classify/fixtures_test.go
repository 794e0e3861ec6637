package classify

import (
	"github.com/shopspring/decimal"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// electricityBill builds a bill carrying the first n billing signals, in the
// order invoice, account, period, total, readings, rates.
func electricityBill(n int, mprn string) models.ElectricityBill {
	var b models.ElectricityBill
	b.ElectricityDetails.MeterDetails.MPRN = mprn
	setSignals(n,
		func() { b.ElectricityDetails.InvoiceNumber = "INV-100" },
		func() { b.ElectricityDetails.AccountNumber = "ACC-200" },
		func() { b.SupplierDetails.BillingPeriod = "2024-01-01 to 2024-02-01" },
		func() { b.FinancialInformation.TotalDue = decimal.NewFromFloat(120.50) },
		func() {
			b.ChargesAndUsage.MeterReadings = []models.MeterReading{{ReadingType: "A", Date: "2024-01-31", Value: decimal.NewFromInt(4512)}}
		},
		func() { b.ChargesAndUsage.UnitRates.Day = decimal.NewFromFloat(35.12) },
	)
	return b
}

func gasBill(n int, gprn string) models.GasBill {
	var b models.GasBill
	b.GasDetails.MeterDetails.GPRN = gprn
	setSignals(n,
		func() { b.GasDetails.InvoiceNumber = "GINV-1" },
		func() { b.GasDetails.AccountNumber = "GACC-2" },
		func() { b.SupplierDetails.BillingPeriod = "2024-01-01 to 2024-02-01" },
		func() { b.FinancialInformation.TotalDue = decimal.NewFromFloat(80) },
		func() {
			b.ChargesAndUsage.MeterReadings = []models.MeterReading{{ReadingType: "A", Date: "2024-01-30", Value: decimal.NewFromInt(901)}}
		},
		func() { b.ChargesAndUsage.UnitRates.Standard = decimal.NewFromFloat(12.4) },
	)
	return b
}

func setSignals(n int, setters ...func()) {
	for i := 0; i < n && i < len(setters); i++ {
		setters[i]()
	}
}

func extraction(elec []models.ElectricityBill, gas []models.GasBill) models.Extraction {
	ext := models.Extraction{Electricity: elec, Gas: gas}
	ext.Normalize()
	return ext
}
