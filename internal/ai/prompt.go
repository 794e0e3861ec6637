package ai

import (
	"fmt"
	"time"
)

// buildPrompt creates the instruction sent with every bill image or PDF
func buildPrompt() string {
	currentYear := time.Now().Year()

	return fmt.Sprintf(`You are an expert reader of Irish utility bills (electricity, gas, broadband) and meter photos.
Read EVERY character of the document carefully and return ONE JSON object.

## WHAT TO EXTRACT

customer: the account holder printed on the bill.
  - name, address (line_1, line_2, city, county, eircode)
  - gas / electricity / broadband: true only if the document bills that service

electricity: one entry per electricity account billed in this document.
  - electricity_details.meter_details.mprn: Meter Point Reference Number, 11 digits, starts with "10"
  - electricity_details.meter_details.dg: DG code (e.g. "DG1", "DG5")
  - electricity_details.meter_details.mcc: MCC code (e.g. "MCC01", "MCC12")
  - invoice_number, account_number, contract_end_date
  - supplier_details: name, tariff_name, issue_date, billing_period
  - charges_and_usage: meter_readings (reading_type A/E/C, date, value, unit),
    detailed_kWh_usage, unit_rates (standard/day/night/peak/ev in cent per kWh),
    standing_charge, pso_levy
  - financial_information: total_due, amount_due, due_date, payment_due_date

gas: one entry per gas account.
  - gas_details.meter_details.gprn: Gas Point Reference Number, usually 7 digits
  - same supplier, charges and financial blocks as electricity, plus
    carbon_tax, conversion_factor, calorific_value

broadband: broadband_details (account_number, phone_number, invoice_number),
  service_details (package_name, speed, monthly_charge), financial information.

## RULES

1. A meter photo is NOT a bill. If you only see a meter and a number, return the identifier
   you can read and leave every billing field empty. Never invent invoice or account numbers.
2. Do not copy an identifier from one utility into another. An MPRN is never a GPRN.
3. Dates: convert to YYYY-MM-DD. Irish bills print day first, 03/04/%d is 3 April.
   Use "0000-00-00" for any date you cannot read.
4. billing_period: copy the period exactly as printed, e.g. "01/01/%d - 31/01/%d".
5. Numbers: plain numbers without currency symbols or thousands separators. Use 0 when absent.
6. Missing sections are empty arrays, never null.
7. Return ONLY the JSON object. No markdown, no commentary.

## OUTPUT SCHEMA

%s
`, currentYear, currentYear, currentYear, SchemaJSON())
}
