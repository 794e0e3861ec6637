package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Models return numbers as strings and omit what they cannot read, so leaf
// types are deliberately loose; ParseExtraction does the strict coercion.
var (
	looseString = map[string]any{"type": []string{"string", "number", "null"}}
	looseNumber = map[string]any{"type": []string{"number", "string", "null"}}
	looseBool   = map[string]any{"type": []string{"boolean", "string", "null"}}
)

func object(props map[string]any) map[string]any {
	return map[string]any{
		"type":       []string{"object", "null"},
		"properties": props,
	}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": item,
	}
}

// branch accepts a list of bills or a single bill object
func branch(item map[string]any) map[string]any {
	return map[string]any{
		"anyOf": []any{arrayOf(item), item},
	}
}

func supplierDetails() map[string]any {
	return object(map[string]any{
		"name":           looseString,
		"tariff_name":    looseString,
		"issue_date":     looseString,
		"billing_period": looseString,
	})
}

func financialInformation() map[string]any {
	return object(map[string]any{
		"total_due":        looseNumber,
		"amount_due":       looseNumber,
		"due_date":         looseString,
		"payment_due_date": looseString,
	})
}

func meterReadings() map[string]any {
	return arrayOf(object(map[string]any{
		"reading_type": looseString,
		"date":         looseString,
		"value":        looseNumber,
		"unit":         looseString,
	}))
}

func usageLines() map[string]any {
	return arrayOf(object(map[string]any{
		"description": looseString,
		"start_date":  looseString,
		"end_date":    looseString,
		"kwh":         looseNumber,
		"rate":        looseNumber,
		"amount":      looseNumber,
	}))
}

func standingCharge() map[string]any {
	return object(map[string]any{
		"amount":   looseNumber,
		"currency": looseString,
		"period":   looseString,
	})
}

// ExtractionSchema is the declared shape of the model's output
func ExtractionSchema() map[string]any {
	electricity := object(map[string]any{
		"electricity_details": object(map[string]any{
			"invoice_number":    looseString,
			"account_number":    looseString,
			"contract_end_date": looseString,
			"meter_details": object(map[string]any{
				"mprn":    looseString,
				"dg":      looseString,
				"mcc":     looseString,
				"profile": looseString,
			}),
		}),
		"supplier_details": supplierDetails(),
		"charges_and_usage": object(map[string]any{
			"meter_readings":     meterReadings(),
			"detailed_kWh_usage": usageLines(),
			"unit_rates": object(map[string]any{
				"standard": looseNumber,
				"day":      looseNumber,
				"night":    looseNumber,
				"peak":     looseNumber,
				"ev":       looseNumber,
			}),
			"standing_charge": standingCharge(),
			"pso_levy":        looseNumber,
		}),
		"financial_information": financialInformation(),
	})

	gas := object(map[string]any{
		"gas_details": object(map[string]any{
			"invoice_number":    looseString,
			"account_number":    looseString,
			"contract_end_date": looseString,
			"meter_details": object(map[string]any{
				"gprn": looseString,
			}),
		}),
		"supplier_details": supplierDetails(),
		"charges_and_usage": object(map[string]any{
			"meter_readings":     meterReadings(),
			"detailed_kWh_usage": usageLines(),
			"unit_rates": object(map[string]any{
				"standard": looseNumber,
				"tier_2":   looseNumber,
			}),
			"standing_charge":   standingCharge(),
			"carbon_tax":        looseNumber,
			"conversion_factor": looseNumber,
			"calorific_value":   looseNumber,
		}),
		"financial_information": financialInformation(),
	})

	broadband := object(map[string]any{
		"broadband_details": object(map[string]any{
			"account_number": looseString,
			"phone_number":   looseString,
			"invoice_number": looseString,
		}),
		"supplier_details": supplierDetails(),
		"service_details": object(map[string]any{
			"package_name":      looseString,
			"speed":             looseString,
			"monthly_charge":    looseNumber,
			"contract_end_date": looseString,
		}),
		"financial_information": financialInformation(),
	})

	customer := object(map[string]any{
		"name": looseString,
		"address": map[string]any{
			"anyOf": []any{
				looseString,
				object(map[string]any{
					"line_1":  looseString,
					"line_2":  looseString,
					"city":    looseString,
					"county":  looseString,
					"eircode": looseString,
				}),
			},
		},
		"gas":         looseBool,
		"electricity": looseBool,
		"broadband":   looseBool,
	})

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"customer":    map[string]any{"anyOf": []any{customer, arrayOf(customer)}},
			"electricity": branch(electricity),
			"gas":         branch(gas),
			"broadband":   branch(broadband),
		},
	}
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func extractionSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = compileSchema(ExtractionSchema())
	})
	return compiledSchema, compileErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateExtraction checks raw model output against ExtractionSchema
func ValidateExtraction(data []byte) error {
	schema, err := extractionSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// SchemaJSON renders ExtractionSchema for inclusion in prompts
func SchemaJSON() string {
	b, _ := json.MarshalIndent(ExtractionSchema(), "", "  ")
	return string(b)
}
