package classify

import (
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Service names used for routing
const (
	ServiceElectricity = "electricity"
	ServiceGas         = "gas"
	ServiceMeter       = "meter"
)

// Config holds the tunable heuristics. Version is reported with every outcome
// so a classification can be traced to the rules that produced it.
type Config struct {
	Version                  string
	IndicatorThreshold       int
	AsymmetricStrongMin      int
	AsymmetricWeakMax        int
	ElectricityOnlySuppliers []string
	GasOnlySuppliers         []string
}

// DefaultConfig returns the production thresholds
func DefaultConfig() Config {
	return FromModel(models.DefaultConfig().Classifier)
}

// FromModel converts the YAML classifier section, filling unset values
func FromModel(c models.ClassifierConfig) Config {
	cfg := Config{
		Version:                  c.Version,
		IndicatorThreshold:       c.IndicatorThreshold,
		AsymmetricStrongMin:      c.AsymmetricStrongMin,
		AsymmetricWeakMax:        c.AsymmetricWeakMax,
		ElectricityOnlySuppliers: c.ElectricityOnlySuppliers,
		GasOnlySuppliers:         c.GasOnlySuppliers,
	}
	if cfg.Version == "" {
		cfg.Version = "2"
	}
	if cfg.IndicatorThreshold <= 0 {
		cfg.IndicatorThreshold = 3
	}
	if cfg.AsymmetricStrongMin <= 0 {
		cfg.AsymmetricStrongMin = 4
	}
	if cfg.AsymmetricWeakMax <= 0 {
		cfg.AsymmetricWeakMax = 2
	}
	if cfg.ElectricityOnlySuppliers == nil {
		cfg.ElectricityOnlySuppliers = []string{"electric ireland", "esb", "energia"}
	}
	if cfg.GasOnlySuppliers == nil {
		cfg.GasOnlySuppliers = []string{"flogas", "natural gas"}
	}
	return cfg
}

// Decision says which downstream services receive the document.
// DefaultToMeter is set exactly when neither utility is present.
type Decision struct {
	HasElectricity bool `json:"electricity"`
	HasGas         bool `json:"gas"`
	DefaultToMeter bool `json:"meter"`
}

// Services lists the routed services in dispatch order
func (d Decision) Services() []string {
	if d.DefaultToMeter {
		return []string{ServiceMeter}
	}
	var services []string
	if d.HasElectricity {
		services = append(services, ServiceElectricity)
	}
	if d.HasGas {
		services = append(services, ServiceGas)
	}
	return services
}

// Classify decides routing for an already validated extraction. A utility is
// present only when its identifier is present and its indicator count reaches
// the threshold; a bare identifier, as seen on a meter photo, is not enough.
func Classify(cfg Config, ext *models.Extraction) Decision {
	hasElectricity := HasElectricityIdentifier(ext.Electricity) &&
		ElectricityBranchIndicators(ext.Electricity) >= cfg.IndicatorThreshold
	hasGas := HasGasIdentifier(ext.Gas) &&
		GasBranchIndicators(ext.Gas) >= cfg.IndicatorThreshold

	return Decision{
		HasElectricity: hasElectricity,
		HasGas:         hasGas,
		DefaultToMeter: !hasElectricity && !hasGas,
	}
}

// Outcome is the full classification of one document
type Outcome struct {
	Version                 string       `json:"version"`
	Decision                Decision     `json:"classification"`
	Broadband               bool         `json:"broadband"`
	ElectricityIndicators   int          `json:"electricity_indicators"`
	GasIndicators           int          `json:"gas_indicators"`
	ElectricityDateWarnings []string     `json:"electricity_date_warnings"`
	GasDateWarnings         []string     `json:"gas_date_warnings"`
	Confidence              int          `json:"confidence_score"`
	Corrections             []Correction `json:"corrections"`

	// Validated is the extraction after the validator cleared any branch
	Validated models.Extraction `json:"-"`
}

// ClassifyDocument validates, scores and classifies a deep copy of ext, so the
// caller's bills are neither normalized nor cleared. The validated extraction is
// returned in Outcome.Validated.
func ClassifyDocument(cfg Config, ext models.Extraction) Outcome {
	ext = ext.Clone()
	ext.Normalize()

	corrections := Validate(cfg, &ext)
	if corrections == nil {
		corrections = []Correction{}
	}

	decision := Classify(cfg, &ext)

	return Outcome{
		Version:                 cfg.Version,
		Decision:                decision,
		Broadband:               len(ext.Broadband) > 0,
		ElectricityIndicators:   ElectricityBranchIndicators(ext.Electricity),
		GasIndicators:           GasBranchIndicators(ext.Gas),
		ElectricityDateWarnings: ElectricityDateWarnings(ext.Electricity),
		GasDateWarnings:         GasDateWarnings(ext.Gas),
		Confidence:              ConfidenceScore(&ext, decision.HasElectricity, decision.HasGas),
		Corrections:             corrections,
		Validated:               ext,
	}
}
