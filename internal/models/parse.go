package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Keys whose values are amounts/quantities. The model often returns them as
// strings with currency symbols or thousands separators.
var numericKeys = map[string]bool{
	"total_due":         true,
	"amount_due":        true,
	"pso_levy":          true,
	"carbon_tax":        true,
	"conversion_factor": true,
	"calorific_value":   true,
	"value":             true,
	"kwh":               true,
	"rate":              true,
	"amount":            true,
	"standard":          true,
	"day":               true,
	"night":             true,
	"peak":              true,
	"ev":                true,
	"tier_2":            true,
	"monthly_charge":    true,
}

// Keys whose values are calendar dates, normalized to YYYY-MM-DD or UnknownDate.
var dateKeys = map[string]bool{
	"issue_date":        true,
	"contract_end_date": true,
	"due_date":          true,
	"payment_due_date":  true,
	"date":              true,
	"start_date":        true,
	"end_date":          true,
}

var utilityKeys = []string{"electricity", "gas", "broadband"}

// ParseExtraction decodes the model's JSON document and fills every default,
// so callers never deal with missing, null or empty variants of a field.
func ParseExtraction(data []byte) (*Extraction, error) {
	cleaned := CleanModelResponse(string(data))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrInvalidDocument)
	}

	sanitizeDocument(doc)

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode document: %w", err)
	}

	var ext Extraction
	if err := json.Unmarshal(normalized, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	ext.Normalize()
	return &ext, nil
}

// CleanModelResponse strips markdown code fences some models wrap JSON in
func CleanModelResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// Normalize replaces nil slices with empty ones and blank dates with UnknownDate.
// It is idempotent.
func (e *Extraction) Normalize() {
	if e.Electricity == nil {
		e.Electricity = []ElectricityBill{}
	}
	if e.Gas == nil {
		e.Gas = []GasBill{}
	}
	if e.Broadband == nil {
		e.Broadband = []BroadbandBill{}
	}

	for i := range e.Electricity {
		b := &e.Electricity[i]
		defaultDate(&b.ElectricityDetails.ContractEndDate)
		normalizeSupplier(&b.SupplierDetails)
		normalizeFinancial(&b.FinancialInformation)
		b.ChargesAndUsage.MeterReadings = normalizeReadings(b.ChargesAndUsage.MeterReadings)
		b.ChargesAndUsage.DetailedKWhUsage = normalizeUsage(b.ChargesAndUsage.DetailedKWhUsage)
	}
	for i := range e.Gas {
		b := &e.Gas[i]
		defaultDate(&b.GasDetails.ContractEndDate)
		normalizeSupplier(&b.SupplierDetails)
		normalizeFinancial(&b.FinancialInformation)
		b.ChargesAndUsage.MeterReadings = normalizeReadings(b.ChargesAndUsage.MeterReadings)
		b.ChargesAndUsage.DetailedKWhUsage = normalizeUsage(b.ChargesAndUsage.DetailedKWhUsage)
	}
	for i := range e.Broadband {
		b := &e.Broadband[i]
		defaultDate(&b.ServiceDetails.ContractEndDate)
		normalizeSupplier(&b.SupplierDetails)
		normalizeFinancial(&b.FinancialInformation)
	}
}

func normalizeSupplier(s *SupplierDetails) {
	s.Name = strings.TrimSpace(s.Name)
	s.BillingPeriod = strings.TrimSpace(s.BillingPeriod)
	defaultDate(&s.IssueDate)
}

func normalizeFinancial(f *FinancialInformation) {
	defaultDate(&f.DueDate)
	defaultDate(&f.PaymentDueDate)
}

func normalizeReadings(readings []MeterReading) []MeterReading {
	if readings == nil {
		return []MeterReading{}
	}
	for i := range readings {
		defaultDate(&readings[i].Date)
	}
	return readings
}

func normalizeUsage(lines []UsageLine) []UsageLine {
	if lines == nil {
		return []UsageLine{}
	}
	for i := range lines {
		defaultDate(&lines[i].StartDate)
		defaultDate(&lines[i].EndDate)
	}
	return lines
}

func defaultDate(s *string) {
	if strings.TrimSpace(*s) == "" {
		*s = UnknownDate
	}
}

// sanitizeDocument coerces the loosely typed model output into the shape
// the typed structs expect. It mutates doc in place.
func sanitizeDocument(doc map[string]interface{}) {
	switch c := doc["customer"].(type) {
	case []interface{}:
		// zero-or-one record; some prompts yield an array
		if len(c) > 0 {
			if m, ok := c[0].(map[string]interface{}); ok {
				sanitizeCustomer(m)
				doc["customer"] = m
				break
			}
		}
		doc["customer"] = map[string]interface{}{}
	case map[string]interface{}:
		sanitizeCustomer(c)
	default:
		doc["customer"] = map[string]interface{}{}
	}

	for _, key := range utilityKeys {
		switch v := doc[key].(type) {
		case []interface{}:
			bills := make([]interface{}, 0, len(v))
			for _, item := range v {
				if m, ok := item.(map[string]interface{}); ok {
					sanitizeValue(m)
					bills = append(bills, m)
				}
			}
			doc[key] = bills
		case map[string]interface{}:
			sanitizeValue(v)
			doc[key] = []interface{}{v}
		default:
			doc[key] = []interface{}{}
		}
	}
}

func sanitizeCustomer(m map[string]interface{}) {
	for _, flag := range utilityKeys {
		m[flag] = parseBool(m[flag])
	}
	if addr, ok := m["address"].(string); ok {
		// unstructured address: keep it as the first line
		m["address"] = map[string]interface{}{"line_1": addr}
	}
	for k, v := range m {
		if k == "gas" || k == "electricity" || k == "broadband" {
			continue
		}
		m[k] = sanitizeField(k, v)
	}
}

func sanitizeValue(m map[string]interface{}) {
	for k, v := range m {
		m[k] = sanitizeField(k, v)
	}
}

func sanitizeField(key string, v interface{}) interface{} {
	switch {
	case numericKeys[key]:
		return json.Number(ParseDecimal(v).String())
	case dateKeys[key]:
		s, _ := v.(string)
		return NormalizeDate(s)
	}

	switch val := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		sanitizeValue(val)
		return val
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				sanitizeValue(m)
				out = append(out, m)
			}
		}
		return out
	case float64:
		// identifiers such as MPRN are sometimes emitted as bare numbers
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case string:
		s := strings.TrimSpace(val)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return ""
		}
		return s
	default:
		return v
	}
}

func parseBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(val))
		return b
	case float64:
		return val != 0
	default:
		return false
	}
}

// ParseDecimal handles flexible number parsing from interface{}
// Supports: numbers, strings, strings with commas or currency symbols (e.g., "€1,265.34")
func ParseDecimal(v interface{}) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case json.Number:
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		cleaned := strings.TrimSpace(val)
		cleaned = strings.NewReplacer(",", "", "€", "", "£", "", "$", "", " ", "").Replace(cleaned)
		cleaned = strings.TrimSuffix(cleaned, "c")
		if cleaned == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// NormalizeDate returns s as YYYY-MM-DD, or UnknownDate when it cannot be read.
// Irish bills print day-first dates, so 03/04/2024 is the 3rd of April.
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return UnknownDate
	}
	return t.Format("2006-01-02")
}

// ParseDate tries the layouts seen on Irish utility bills
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == UnknownDate {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
