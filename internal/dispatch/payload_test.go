package dispatch

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

var testEndpoints = map[string]string{
	classify.ServiceElectricity: "http://billing.local/electricity-file",
	classify.ServiceGas:         "http://billing.local/gas-file",
	classify.ServiceMeter:       "http://billing.local/meter-file",
}

// scenarioA is an electricity bill with four billing signals and no MCC/DG
func scenarioA() models.Extraction {
	var b models.ElectricityBill
	b.ElectricityDetails.InvoiceNumber = "INV-7781"
	b.ElectricityDetails.AccountNumber = "ACC-3321"
	b.ElectricityDetails.MeterDetails.MPRN = "10001234567"
	b.SupplierDetails.BillingPeriod = "01/01/2024 - 31/01/2024"
	b.ChargesAndUsage.MeterReadings = []models.MeterReading{{ReadingType: "A", Date: "2024-01-31", Value: decimal.NewFromInt(5120)}}

	ext := models.Extraction{Electricity: []models.ElectricityBill{b}}
	ext.Normalize()
	return ext
}

func TestBuildCalls_ElectricityBill(t *testing.T) {
	ext := scenarioA()
	out := classify.ClassifyDocument(classify.DefaultConfig(), ext)
	require.Equal(t, classify.Decision{HasElectricity: true}, out.Decision)

	specs, err := BuildCalls(out.Decision, &out.Validated, " 087 123 4567 ", testEndpoints)
	require.NoError(t, err)

	require.Len(t, specs, 1)
	spec := specs[0]
	assert.Equal(t, classify.ServiceElectricity, spec.Service)
	assert.Equal(t, testEndpoints[classify.ServiceElectricity], spec.Endpoint)
	assert.True(t, spec.RequiresFile)
	assert.Equal(t, map[string]string{
		"phone":    "0871234567",
		"mprn":     "10001234567",
		"mcc_type": "",
		"dg_type":  "",
	}, spec.Fields)
}

func TestBuildCalls_PrefixesCodes(t *testing.T) {
	ext := scenarioA()
	ext.Electricity[0].ElectricityDetails.MeterDetails.MCC = "01"
	ext.Electricity[0].ElectricityDetails.MeterDetails.DG = "dg5"

	specs, err := BuildCalls(classify.Decision{HasElectricity: true}, &ext, "0871234567", testEndpoints)
	require.NoError(t, err)

	assert.Equal(t, "MCC01", specs[0].Fields["mcc_type"])
	assert.Equal(t, "DG5", specs[0].Fields["dg_type"])
}

func TestBuildCalls_Meter(t *testing.T) {
	ext := scenarioA()

	specs, err := BuildCalls(classify.Decision{DefaultToMeter: true}, &ext, "087 1234567", testEndpoints)
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, classify.ServiceMeter, specs[0].Service)
	assert.Equal(t, map[string]string{"phone": "0871234567"}, specs[0].Fields)
}

func TestBuildCalls_CombinedBill(t *testing.T) {
	ext := scenarioA()
	var g models.GasBill
	g.GasDetails.MeterDetails.GPRN = "7654321"
	ext.Gas = []models.GasBill{g}

	specs, err := BuildCalls(classify.Decision{HasElectricity: true, HasGas: true}, &ext, "1", testEndpoints)
	require.NoError(t, err)

	require.Len(t, specs, 2)
	assert.Equal(t, classify.ServiceElectricity, specs[0].Service)
	assert.Equal(t, classify.ServiceGas, specs[1].Service)
	assert.Equal(t, "7654321", specs[1].Fields["gprn"])
}

func TestBuildCalls_MissingEndpoint(t *testing.T) {
	ext := scenarioA()

	_, err := BuildCalls(classify.Decision{HasGas: true}, &ext, "1", map[string]string{})
	assert.ErrorIs(t, err, models.ErrUnknownService)
}
