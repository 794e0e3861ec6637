package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

func TestElectricityIndicators_Counts(t *testing.T) {
	for n := 0; n <= MaxIndicators; n++ {
		assert.Equal(t, n, ElectricityIndicators(electricityBill(n, "")), "signals=%d", n)
		assert.Equal(t, n, GasIndicators(gasBill(n, "")), "signals=%d", n)
	}
}

func TestIndicators_Monotonic(t *testing.T) {
	setters := []func(*models.ElectricityBill){
		func(b *models.ElectricityBill) { b.ElectricityDetails.InvoiceNumber = "X" },
		func(b *models.ElectricityBill) { b.ElectricityDetails.AccountNumber = "X" },
		func(b *models.ElectricityBill) { b.SupplierDetails.BillingPeriod = "X" },
		func(b *models.ElectricityBill) { b.FinancialInformation.TotalDue = decimal.NewFromInt(1) },
		func(b *models.ElectricityBill) { b.ChargesAndUsage.MeterReadings = []models.MeterReading{{}} },
		func(b *models.ElectricityBill) { b.ChargesAndUsage.UnitRates.Night = decimal.NewFromInt(1) },
	}

	// every subset of signals, then add each remaining signal
	for mask := 0; mask < 1<<len(setters); mask++ {
		var b models.ElectricityBill
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				set(&b)
			}
		}
		before := ElectricityIndicators(b)
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				continue
			}
			added := b
			set(&added)
			assert.GreaterOrEqual(t, ElectricityIndicators(added), before)
		}
	}
}

func TestIndicators_ZeroTotalNotCounted(t *testing.T) {
	b := electricityBill(0, "")
	b.FinancialInformation.TotalDue = decimal.NewFromInt(-5)
	assert.Equal(t, 0, ElectricityIndicators(b))
}

func TestBranchIndicators_MaxOverEntries(t *testing.T) {
	bills := []models.ElectricityBill{electricityBill(2, ""), electricityBill(5, ""), electricityBill(1, "")}
	assert.Equal(t, 5, ElectricityBranchIndicators(bills))
	assert.Equal(t, 0, ElectricityBranchIndicators(nil))
	assert.Equal(t, 0, GasBranchIndicators([]models.GasBill{}))
}

func TestHasIdentifier(t *testing.T) {
	assert.False(t, HasElectricityIdentifier(nil))
	assert.True(t, HasElectricityIdentifier([]models.ElectricityBill{electricityBill(0, "10001234567")}))

	dgOnly := electricityBill(0, "")
	dgOnly.ElectricityDetails.MeterDetails.DG = "5"
	assert.True(t, HasElectricityIdentifier([]models.ElectricityBill{dgOnly}))

	assert.False(t, HasGasIdentifier([]models.GasBill{gasBill(6, "  ")}))
	assert.True(t, HasGasIdentifier([]models.GasBill{gasBill(0, "1234567")}))
}
