package api

import (
	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Classification is the routing summary of one bill
type Classification struct {
	Electricity bool `json:"electricity"`
	Gas         bool `json:"gas"`
	Meter       bool `json:"meter"`
	Broadband   bool `json:"broadband"`
}

// ClassificationDetails explains the classification
type ClassificationDetails struct {
	ElectricityIndicators   int      `json:"electricity_indicators"`
	GasIndicators           int      `json:"gas_indicators"`
	ElectricityDateWarnings []string `json:"electricity_date_warnings"`
	GasDateWarnings         []string `json:"gas_date_warnings"`
}

// ProcessResponse is returned for every processed bill, successful or not
type ProcessResponse struct {
	OK                    bool                  `json:"ok"`
	ConfidenceScore       int                   `json:"confidence_score"`
	Classification        Classification        `json:"classification"`
	ClassificationDetails ClassificationDetails `json:"classification_details"`
	APICalls              []dispatch.CallResult `json:"api_calls"`

	ClassifierVersion string                `json:"classifier_version"`
	Corrections       []classify.Correction `json:"corrections"`
	PlannedCalls      []dispatch.CallSpec   `json:"planned_calls,omitempty"`
	FileRef           string                `json:"file_ref,omitempty"`
	FileURL           string                `json:"file_url,omitempty"`
	Extraction        *models.Extraction    `json:"extraction,omitempty"`
	TotalDuration     float64               `json:"total_duration,omitempty"`
}

// NewProcessResponse builds the output surface from a classification and the
// results of its dispatched calls. ok is false when any call failed.
func NewProcessResponse(outcome classify.Outcome, results []dispatch.CallResult, ok bool) ProcessResponse {
	if results == nil {
		results = []dispatch.CallResult{}
	}
	validated := outcome.Validated

	return ProcessResponse{
		OK:              ok,
		ConfidenceScore: outcome.Confidence,
		Classification: Classification{
			Electricity: outcome.Decision.HasElectricity,
			Gas:         outcome.Decision.HasGas,
			Meter:       outcome.Decision.DefaultToMeter,
			Broadband:   outcome.Broadband,
		},
		ClassificationDetails: ClassificationDetails{
			ElectricityIndicators:   outcome.ElectricityIndicators,
			GasIndicators:           outcome.GasIndicators,
			ElectricityDateWarnings: outcome.ElectricityDateWarnings,
			GasDateWarnings:         outcome.GasDateWarnings,
		},
		APICalls:          results,
		ClassifierVersion: outcome.Version,
		Corrections:       outcome.Corrections,
		Extraction:        &validated,
	}
}
