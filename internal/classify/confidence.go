package classify

import (
	"math"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Sub-score caps
const (
	keyFieldsCap    = 40.0
	completenessCap = 35.0
	dateScoreStart  = 25.0
)

// Billing periods on the printed bill are day-first
var ieDateRegex = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

// ConfidenceScore computes a 0-100 trust score for an extraction given which
// utilities were classified present.
//
// Score breakdown (max 100):
//
//	Key fields (cap 40):
//	  customer name 5, address 5; per present utility invoice 7, account 7,
//	  mprn/gprn 8
//	Completeness (cap 35), per present utility:
//	  billing period 7, issue date 5, meter readings 7, usage detail 5,
//	  total due 7, secondary identifiers 2+2
//	Dates: starts at 25, penalties per bill, floor 0
func ConfidenceScore(ext *models.Extraction, hasElectricity, hasGas bool) int {
	if ext == nil {
		return 0
	}

	score := keyFieldsScore(ext, hasElectricity, hasGas) +
		completenessScore(ext, hasElectricity, hasGas) +
		dateScore(ext, hasElectricity, hasGas)

	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

func keyFieldsScore(ext *models.Extraction, hasElectricity, hasGas bool) float64 {
	var score float64

	if present(ext.Customer.Name) {
		score += 5
	}
	if !ext.Customer.Address.IsEmpty() {
		score += 5
	}

	if hasElectricity && len(ext.Electricity) > 0 {
		d := ext.Electricity[0].ElectricityDetails
		if present(d.InvoiceNumber) {
			score += 7
		}
		if present(d.AccountNumber) {
			score += 7
		}
		if present(d.MeterDetails.MPRN) {
			score += 8
		}
	}

	if hasGas && len(ext.Gas) > 0 {
		d := ext.Gas[0].GasDetails
		if present(d.InvoiceNumber) {
			score += 7
		}
		if present(d.AccountNumber) {
			score += 7
		}
		if present(d.MeterDetails.GPRN) {
			score += 8
		}
	}

	return math.Min(score, keyFieldsCap)
}

func completenessScore(ext *models.Extraction, hasElectricity, hasGas bool) float64 {
	var score float64

	if hasElectricity && len(ext.Electricity) > 0 {
		b := ext.Electricity[0]
		score += commonCompleteness(b.SupplierDetails, len(b.ChargesAndUsage.MeterReadings),
			len(b.ChargesAndUsage.DetailedKWhUsage), b.FinancialInformation.TotalDue)
		if present(b.ElectricityDetails.MeterDetails.DG) {
			score += 2
		}
		if present(b.ElectricityDetails.MeterDetails.MCC) {
			score += 2
		}
	}

	if hasGas && len(ext.Gas) > 0 {
		b := ext.Gas[0]
		score += commonCompleteness(b.SupplierDetails, len(b.ChargesAndUsage.MeterReadings),
			len(b.ChargesAndUsage.DetailedKWhUsage), b.FinancialInformation.TotalDue)
		if b.ChargesAndUsage.CalorificValue.GreaterThan(decimal.Zero) {
			score += 2
		}
		if b.ChargesAndUsage.ConversionFactor.GreaterThan(decimal.Zero) {
			score += 2
		}
	}

	return math.Min(score, completenessCap)
}

func commonCompleteness(s models.SupplierDetails, readings, usage int, totalDue decimal.Decimal) float64 {
	var score float64
	if present(s.BillingPeriod) {
		score += 7
	}
	if s.IssueDate != "" && s.IssueDate != models.UnknownDate {
		score += 5
	}
	if readings > 0 {
		score += 7
	}
	if usage > 0 {
		score += 5
	}
	if totalDue.GreaterThan(decimal.Zero) {
		score += 7
	}
	return score
}

func dateScore(ext *models.Extraction, hasElectricity, hasGas bool) float64 {
	score := dateScoreStart

	if hasElectricity {
		for _, b := range ext.Electricity {
			score -= periodPenalty(b.SupplierDetails, b.ChargesAndUsage.MeterReadings)
		}
	}
	if hasGas {
		for _, b := range ext.Gas {
			score -= periodPenalty(b.SupplierDetails, b.ChargesAndUsage.MeterReadings)
		}
	}

	return math.Max(score, 0)
}

// periodPenalty scores one bill's dates against its DD/MM/YYYY billing period
func periodPenalty(s models.SupplierDetails, readings []models.MeterReading) float64 {
	if !present(s.BillingPeriod) {
		return 5
	}

	matches := ieDateRegex.FindAllString(s.BillingPeriod, 2)
	if len(matches) < 2 {
		return 3
	}
	start, err1 := time.Parse("02/01/2006", matches[0])
	end, err2 := time.Parse("02/01/2006", matches[1])
	if err1 != nil || err2 != nil {
		return 3
	}
	if !start.Before(end) {
		return 5
	}

	var penalty float64
	for _, r := range readings {
		if !r.HasDate() {
			continue
		}
		d, ok := models.ParseDate(r.Date)
		if !ok {
			continue
		}
		if d.Before(start) || d.After(end) {
			penalty += 3
		}
	}

	if issued, ok := models.ParseDate(s.IssueDate); ok && issued.Before(end) {
		penalty += 2
	}

	return penalty
}
