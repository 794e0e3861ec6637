package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wattwise/bill-ingest-service/api"
	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// newClassifyCmd classifies an extraction document without calling anything
func newClassifyCmd() *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "classify <extraction.json|->",
		Short: "Classify an extraction document and print the planned billing calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ext, err := models.ParseExtraction(data)
			if err != nil {
				return fmt.Errorf("parse extraction: %w", err)
			}

			outcome := classify.ClassifyDocument(classify.FromModel(cfg.Classifier), *ext)
			response := api.NewProcessResponse(outcome, nil, true)

			resolver := dispatch.NewResolver(cfg.Billing.BaseURL, cfg.Billing.Endpoints, nil, 0, logger)
			specs, err := dispatch.BuildCalls(outcome.Decision, &outcome.Validated, phone, resolver.Endpoints(cmd.Context()))
			if err != nil {
				logger.Warn().Err(err).Msg("cannot plan billing calls")
			}
			response.PlannedCalls = specs

			return printJSON(cmd.OutOrStdout(), response)
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "customer phone number for the planned calls")
	return cmd
}

// readInput reads a file, or stdin when path is "-"
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
