package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// UnknownDate is the sentinel used for every date the model could not read.
const UnknownDate = "0000-00-00"

// Extraction is the normalized document returned by the vision model.
// After ParseExtraction every slice is non-nil and Customer is always set.
type Extraction struct {
	Customer    Customer          `json:"customer"`
	Electricity []ElectricityBill `json:"electricity"`
	Gas         []GasBill         `json:"gas"`
	Broadband   []BroadbandBill   `json:"broadband"`
}

// Clone returns a copy of e that shares no bill, reading or usage slices with it
func (e Extraction) Clone() Extraction {
	out := e
	out.Electricity = slices.Clone(e.Electricity)
	for i := range out.Electricity {
		c := &out.Electricity[i].ChargesAndUsage
		c.MeterReadings = slices.Clone(c.MeterReadings)
		c.DetailedKWhUsage = slices.Clone(c.DetailedKWhUsage)
	}
	out.Gas = slices.Clone(e.Gas)
	for i := range out.Gas {
		c := &out.Gas[i].ChargesAndUsage
		c.MeterReadings = slices.Clone(c.MeterReadings)
		c.DetailedKWhUsage = slices.Clone(c.DetailedKWhUsage)
	}
	out.Broadband = slices.Clone(e.Broadband)
	return out
}

// Customer is the account holder block printed on the bill
type Customer struct {
	Name        string  `json:"name"`
	Address     Address `json:"address"`
	Gas         bool    `json:"gas"`
	Electricity bool    `json:"electricity"`
	Broadband   bool    `json:"broadband"`
}

// Address is an Irish postal address
type Address struct {
	Line1   string `json:"line_1"`
	Line2   string `json:"line_2"`
	City    string `json:"city"`
	County  string `json:"county"`
	Eircode string `json:"eircode"`
}

// IsEmpty reports whether no address line was extracted
func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.Line2 == "" && a.City == "" && a.County == "" && a.Eircode == ""
}

// ElectricityBill is one electricity account statement
type ElectricityBill struct {
	ElectricityDetails   ElectricityDetails   `json:"electricity_details"`
	SupplierDetails      SupplierDetails      `json:"supplier_details"`
	ChargesAndUsage      ElectricityCharges   `json:"charges_and_usage"`
	FinancialInformation FinancialInformation `json:"financial_information"`
}

// ElectricityDetails holds the account and supply point identifiers
type ElectricityDetails struct {
	InvoiceNumber   string                  `json:"invoice_number"`
	AccountNumber   string                  `json:"account_number"`
	ContractEndDate string                  `json:"contract_end_date"`
	MeterDetails    ElectricityMeterDetails `json:"meter_details"`
}

// ElectricityMeterDetails identifies the supply point
type ElectricityMeterDetails struct {
	MPRN    string `json:"mprn"`    // Meter Point Registration Number
	DG      string `json:"dg"`      // Deemed Group
	MCC     string `json:"mcc"`     // Market Category Code
	Profile string `json:"profile"` // Load profile code
}

// SupplierDetails is shared by every utility bill
type SupplierDetails struct {
	Name          string `json:"name"`
	TariffName    string `json:"tariff_name"`
	IssueDate     string `json:"issue_date"`
	BillingPeriod string `json:"billing_period"` // free text, e.g. "01/01/2024 - 31/01/2024"
}

// ElectricityCharges groups readings, usage and rates
type ElectricityCharges struct {
	MeterReadings    []MeterReading   `json:"meter_readings"`
	DetailedKWhUsage []UsageLine      `json:"detailed_kWh_usage"`
	UnitRates        ElectricityRates `json:"unit_rates"`
	StandingCharge   StandingCharge   `json:"standing_charge"`
	PSOLevy          decimal.Decimal  `json:"pso_levy"`
}

// ElectricityRates are cent/kWh unit rates by time band
type ElectricityRates struct {
	Standard decimal.Decimal `json:"standard"`
	Day      decimal.Decimal `json:"day"`
	Night    decimal.Decimal `json:"night"`
	Peak     decimal.Decimal `json:"peak"`
	EV       decimal.Decimal `json:"ev"`
}

// Present reports whether any unit rate was extracted
func (r ElectricityRates) Present() bool {
	return anyPositive(r.Standard, r.Day, r.Night, r.Peak, r.EV)
}

// GasBill is one gas account statement
type GasBill struct {
	GasDetails           GasDetails           `json:"gas_details"`
	SupplierDetails      SupplierDetails      `json:"supplier_details"`
	ChargesAndUsage      GasCharges           `json:"charges_and_usage"`
	FinancialInformation FinancialInformation `json:"financial_information"`
}

// GasDetails holds the account and supply point identifiers
type GasDetails struct {
	InvoiceNumber   string          `json:"invoice_number"`
	AccountNumber   string          `json:"account_number"`
	ContractEndDate string          `json:"contract_end_date"`
	MeterDetails    GasMeterDetails `json:"meter_details"`
}

// GasMeterDetails identifies the gas supply point
type GasMeterDetails struct {
	GPRN string `json:"gprn"` // Gas Point Registration Number
}

// GasCharges groups readings, usage, rates and the volume conversion inputs
type GasCharges struct {
	MeterReadings    []MeterReading  `json:"meter_readings"`
	DetailedKWhUsage []UsageLine     `json:"detailed_kWh_usage"`
	UnitRates        GasRates        `json:"unit_rates"`
	StandingCharge   StandingCharge  `json:"standing_charge"`
	CarbonTax        decimal.Decimal `json:"carbon_tax"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	CalorificValue   decimal.Decimal `json:"calorific_value"`
}

// GasRates are cent/kWh unit rates
type GasRates struct {
	Standard decimal.Decimal `json:"standard"`
	Tier2    decimal.Decimal `json:"tier_2"`
}

// Present reports whether any unit rate was extracted
func (r GasRates) Present() bool {
	return anyPositive(r.Standard, r.Tier2)
}

// MeterReading is one register reading printed on the bill
type MeterReading struct {
	ReadingType string          `json:"reading_type"` // A=actual, E=estimated, C=customer
	Date        string          `json:"date"`
	Value       decimal.Decimal `json:"value"`
	Unit        string          `json:"unit"`
}

// HasDate reports whether the reading carries a usable date
func (m MeterReading) HasDate() bool {
	return m.Date != "" && m.Date != UnknownDate
}

// UsageLine is one row of the detailed consumption table
type UsageLine struct {
	Description string          `json:"description"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	KWh         decimal.Decimal `json:"kwh"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// StandingCharge is the fixed daily/monthly charge
type StandingCharge struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Period   string          `json:"period"`
}

// FinancialInformation holds the amounts owed
type FinancialInformation struct {
	TotalDue       decimal.Decimal `json:"total_due"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	DueDate        string          `json:"due_date"`
	PaymentDueDate string          `json:"payment_due_date"`
}

// BroadbandBill is extracted for display only and never routed
type BroadbandBill struct {
	BroadbandDetails     BroadbandDetails     `json:"broadband_details"`
	SupplierDetails      SupplierDetails      `json:"supplier_details"`
	ServiceDetails       BroadbandService     `json:"service_details"`
	FinancialInformation FinancialInformation `json:"financial_information"`
}

// BroadbandDetails holds the account identifiers
type BroadbandDetails struct {
	AccountNumber string `json:"account_number"`
	PhoneNumber   string `json:"phone_number"`
	InvoiceNumber string `json:"invoice_number"`
}

// BroadbandService describes the package
type BroadbandService struct {
	PackageName     string          `json:"package_name"`
	Speed           string          `json:"speed"`
	MonthlyCharge   decimal.Decimal `json:"monthly_charge"`
	ContractEndDate string          `json:"contract_end_date"`
}

func anyPositive(values ...decimal.Decimal) bool {
	for _, v := range values {
		if v.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
