package classify

import (
	"fmt"
	"regexp"
	"time"

	"github.com/wattwise/bill-ingest-service/internal/models"
)

var isoDateRegex = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// CorrelateDates warns about meter readings dated outside the billing period.
// The period is read from the first two YYYY-MM-DD substrings of the free text;
// when there are fewer than two, or they do not parse, no warnings are produced.
func CorrelateDates(billingPeriod string, readings []models.MeterReading) []string {
	matches := isoDateRegex.FindAllString(billingPeriod, 2)
	if len(matches) < 2 {
		return nil
	}
	start, err := time.Parse("2006-01-02", matches[0])
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", matches[1])
	if err != nil {
		return nil
	}

	var warnings []string
	for _, r := range readings {
		if !r.HasDate() {
			continue
		}
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		if d.Before(start) || d.After(end) {
			warnings = append(warnings, fmt.Sprintf(
				"meter reading dated %s is outside billing period %s to %s",
				r.Date, matches[0], matches[1]))
		}
	}
	return warnings
}

// ElectricityDateWarnings runs CorrelateDates over every electricity bill
func ElectricityDateWarnings(bills []models.ElectricityBill) []string {
	warnings := []string{}
	for _, b := range bills {
		warnings = append(warnings, CorrelateDates(b.SupplierDetails.BillingPeriod, b.ChargesAndUsage.MeterReadings)...)
	}
	return warnings
}

// GasDateWarnings runs CorrelateDates over every gas bill
func GasDateWarnings(bills []models.GasBill) []string {
	warnings := []string{}
	for _, b := range bills {
		warnings = append(warnings, CorrelateDates(b.SupplierDetails.BillingPeriod, b.ChargesAndUsage.MeterReadings)...)
	}
	return warnings
}
