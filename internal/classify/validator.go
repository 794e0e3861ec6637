package classify

import (
	"fmt"
	"strings"

	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Validation rule names reported in Correction.Rule
const (
	RuleAsymmetricStrength    = "asymmetric_strength"
	RuleSingleServiceSupplier = "single_service_supplier"
	RuleIdentifierOnly        = "identifier_without_billing_fields"
)

// Correction records one branch cleared by the validator
type Correction struct {
	Rule    string `json:"rule"`
	Cleared string `json:"cleared"` // "electricity" or "gas"
	Reason  string `json:"reason"`
}

// Validate cross-checks the electricity and gas branches and clears the one
// that looks like cross-contamination rather than billing data. Rules run in
// order and each sees the effect of the previous ones. ext is modified in place.
func Validate(cfg Config, ext *models.Extraction) []Correction {
	var corrections []Correction

	if c, ok := asymmetricStrength(cfg, ext); ok {
		corrections = append(corrections, c)
	}
	corrections = append(corrections, singleServiceSupplier(cfg, ext)...)
	corrections = append(corrections, identifierOnly(ext)...)

	return corrections
}

func asymmetricStrength(cfg Config, ext *models.Extraction) (Correction, bool) {
	elec := ElectricityBranchIndicators(ext.Electricity)
	gas := GasBranchIndicators(ext.Gas)

	weak := func(n int) bool { return n > 0 && n <= cfg.AsymmetricWeakMax }

	switch {
	case elec >= cfg.AsymmetricStrongMin && weak(gas):
		ext.Gas = []models.GasBill{}
		return Correction{
			Rule:    RuleAsymmetricStrength,
			Cleared: "gas",
			Reason:  fmt.Sprintf("electricity indicators %d against gas %d", elec, gas),
		}, true
	case gas >= cfg.AsymmetricStrongMin && weak(elec):
		ext.Electricity = []models.ElectricityBill{}
		return Correction{
			Rule:    RuleAsymmetricStrength,
			Cleared: "electricity",
			Reason:  fmt.Sprintf("gas indicators %d against electricity %d", gas, elec),
		}, true
	}
	return Correction{}, false
}

func singleServiceSupplier(cfg Config, ext *models.Extraction) []Correction {
	var corrections []Correction

	if len(ext.Electricity) > 0 && len(ext.Gas) > 0 {
		supplier := ext.Electricity[0].SupplierDetails.Name
		if match := matchSupplier(supplier, cfg.ElectricityOnlySuppliers); match != "" {
			ext.Gas = []models.GasBill{}
			corrections = append(corrections, Correction{
				Rule:    RuleSingleServiceSupplier,
				Cleared: "gas",
				Reason:  fmt.Sprintf("supplier %q sells electricity only", supplier),
			})
		}
	}

	if len(ext.Gas) > 0 && len(ext.Electricity) > 0 {
		supplier := ext.Gas[0].SupplierDetails.Name
		if match := matchSupplier(supplier, cfg.GasOnlySuppliers); match != "" {
			ext.Electricity = []models.ElectricityBill{}
			corrections = append(corrections, Correction{
				Rule:    RuleSingleServiceSupplier,
				Cleared: "electricity",
				Reason:  fmt.Sprintf("supplier %q sells gas only", supplier),
			})
		}
	}

	return corrections
}

func identifierOnly(ext *models.Extraction) []Correction {
	var corrections []Correction

	if HasElectricityIdentifier(ext.Electricity) {
		d := ext.Electricity[0].ElectricityDetails
		billing := present(d.InvoiceNumber) || present(d.AccountNumber) ||
			present(ext.Electricity[0].SupplierDetails.BillingPeriod)
		if !billing && ElectricityBranchIndicators(ext.Electricity) <= 1 {
			ext.Electricity = []models.ElectricityBill{}
			corrections = append(corrections, Correction{
				Rule:    RuleIdentifierOnly,
				Cleared: "electricity",
				Reason:  "mprn/dg present without invoice, account or billing period",
			})
		}
	}

	if HasGasIdentifier(ext.Gas) {
		d := ext.Gas[0].GasDetails
		billing := present(d.InvoiceNumber) || present(d.AccountNumber) ||
			present(ext.Gas[0].SupplierDetails.BillingPeriod)
		if !billing && GasBranchIndicators(ext.Gas) <= 1 {
			ext.Gas = []models.GasBill{}
			corrections = append(corrections, Correction{
				Rule:    RuleIdentifierOnly,
				Cleared: "gas",
				Reason:  "gprn present without invoice, account or billing period",
			})
		}
	}

	return corrections
}

// matchSupplier returns the first list entry contained in name, case-insensitively
func matchSupplier(name string, list []string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && strings.Contains(name, s) {
			return s
		}
	}
	return ""
}
