package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExtraction(t *testing.T) {
	valid := []string{
		`{}`,
		`{"customer": [{"name": "A"}], "electricity": [], "gas": null}`,
		`{"electricity": {"electricity_details": {"meter_details": {"mprn": 10012345678}}}}`,
		`{"gas": [{"financial_information": {"total_due": "€80.00"}, "charges_and_usage": {"meter_readings": [{"value": "1234"}]}}]}`,
		`{"customer": {"address": {"line_1": "1 Main St", "eircode": "D01 F5P2"}, "gas": "yes"}}`,
	}
	for _, doc := range valid {
		assert.NoError(t, ValidateExtraction([]byte(doc)), doc)
	}

	invalid := []string{
		`[]`,
		`"bill"`,
		`{"electricity": "none"}`,
		`{"gas": [{"gas_details": []}]}`,
		`{"customer": {"address": true}}`,
		`not json`,
	}
	for _, doc := range invalid {
		assert.Error(t, ValidateExtraction([]byte(doc)), doc)
	}
}

func TestSchemaJSON(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(SchemaJSON()), &m))

	props, ok := m["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"customer", "electricity", "gas", "broadband"} {
		assert.Contains(t, props, key)
	}
}
