package classify

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// MaxIndicators is the number of billing signals a bill can carry
const MaxIndicators = 6

// ElectricityIndicators counts the strong billing signals on one electricity bill:
// invoice number, account number, billing period, a positive total, meter
// readings and unit rates.
func ElectricityIndicators(b models.ElectricityBill) int {
	return countSignals(
		present(b.ElectricityDetails.InvoiceNumber),
		present(b.ElectricityDetails.AccountNumber),
		present(b.SupplierDetails.BillingPeriod),
		b.FinancialInformation.TotalDue.GreaterThan(decimal.Zero),
		len(b.ChargesAndUsage.MeterReadings) > 0,
		b.ChargesAndUsage.UnitRates.Present(),
	)
}

// GasIndicators is ElectricityIndicators for a gas bill
func GasIndicators(b models.GasBill) int {
	return countSignals(
		present(b.GasDetails.InvoiceNumber),
		present(b.GasDetails.AccountNumber),
		present(b.SupplierDetails.BillingPeriod),
		b.FinancialInformation.TotalDue.GreaterThan(decimal.Zero),
		len(b.ChargesAndUsage.MeterReadings) > 0,
		b.ChargesAndUsage.UnitRates.Present(),
	)
}

// ElectricityBranchIndicators is the best count over all electricity bills, 0 when empty
func ElectricityBranchIndicators(bills []models.ElectricityBill) int {
	best := 0
	for _, b := range bills {
		if n := ElectricityIndicators(b); n > best {
			best = n
		}
	}
	return best
}

// GasBranchIndicators is the best count over all gas bills, 0 when empty
func GasBranchIndicators(bills []models.GasBill) int {
	best := 0
	for _, b := range bills {
		if n := GasIndicators(b); n > best {
			best = n
		}
	}
	return best
}

// HasElectricityIdentifier reports whether the first electricity bill names a supply point
func HasElectricityIdentifier(bills []models.ElectricityBill) bool {
	if len(bills) == 0 {
		return false
	}
	m := bills[0].ElectricityDetails.MeterDetails
	return present(m.MPRN) || present(m.DG)
}

// HasGasIdentifier reports whether the first gas bill carries a GPRN
func HasGasIdentifier(bills []models.GasBill) bool {
	if len(bills) == 0 {
		return false
	}
	return present(bills[0].GasDetails.MeterDetails.GPRN)
}

func countSignals(signals ...bool) int {
	n := 0
	for _, s := range signals {
		if s {
			n++
		}
	}
	return n
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
