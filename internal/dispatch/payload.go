package dispatch

import (
	"fmt"

	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// CallSpec is one outbound call to the billing API. It is not modified after BuildCalls.
type CallSpec struct {
	Service      string            `json:"service"`
	Endpoint     string            `json:"endpoint"`
	Fields       map[string]string `json:"fields"`
	RequiresFile bool              `json:"requires_file"`
}

// CallResult is the outcome of exactly one CallSpec
type CallResult struct {
	Service  string            `json:"service"`
	Endpoint string            `json:"endpoint"`
	Status   int               `json:"status"`
	OK       bool              `json:"ok"`
	Body     string            `json:"body,omitempty"`
	Error    string            `json:"error,omitempty"`
	Payload  map[string]string `json:"payload"`
}

// BuildCalls turns a decision into one CallSpec per routed service.
// Identifiers are taken from the first bill of each branch; the meter call
// trusts nothing but the phone number.
func BuildCalls(decision classify.Decision, ext *models.Extraction, phone string, endpoints map[string]string) ([]CallSpec, error) {
	phone = classify.NormalizePhone(phone)

	var specs []CallSpec
	for _, service := range decision.Services() {
		endpoint, ok := endpoints[service]
		if !ok || endpoint == "" {
			return nil, fmt.Errorf("%w: no endpoint for %s", models.ErrUnknownService, service)
		}

		fields := map[string]string{"phone": phone}
		switch service {
		case classify.ServiceElectricity:
			if len(ext.Electricity) > 0 {
				m := ext.Electricity[0].ElectricityDetails.MeterDetails
				fields["mprn"] = m.MPRN
				fields["mcc_type"] = classify.PrefixMCC(m.MCC)
				fields["dg_type"] = classify.PrefixDG(m.DG)
			}
		case classify.ServiceGas:
			if len(ext.Gas) > 0 {
				fields["gprn"] = ext.Gas[0].GasDetails.MeterDetails.GPRN
			}
		}

		specs = append(specs, CallSpec{
			Service:      service,
			Endpoint:     endpoint,
			Fields:       fields,
			RequiresFile: true,
		})
	}
	return specs, nil
}

// ValidService reports whether service has a billing endpoint
func ValidService(service string) bool {
	switch service {
	case classify.ServiceElectricity, classify.ServiceGas, classify.ServiceMeter:
		return true
	}
	return false
}
