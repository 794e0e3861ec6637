package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wattwise/bill-ingest-service/internal/db"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/storage"
)

// newRetryCmd re-executes one failed billing call
func newRetryCmd() *cobra.Command {
	var req dispatch.RetryRequest

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry a failed billing call with backoff",
		Example: `  billctl retry --service gas --endpoint https://billing.example.ie/gas-file \
    --field gprn=1234567 --phone 0871234567 --file-ref bills/2024/02/20240205_101500_ab12cd34.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := time.Duration(cfg.Billing.TimeoutSeconds) * time.Second

			if req.FileRef != "" && cfg.Storage.Endpoint != "" {
				if err := storage.Init(cfg.Storage); err != nil {
					logger.Warn().Err(err).Msg("MinIO storage not available, stored file refs cannot be fetched")
				}
			}

			// the retry may only target the endpoint routing would use now
			var source dispatch.EndpointSource
			if err := connect(); err != nil {
				logger.Warn().Err(err).Msg("using configured endpoints")
			} else {
				defer db.Close()
				source = db.NewEndpointStore(db.Pool)
			}
			resolver := dispatch.NewResolver(cfg.Billing.BaseURL, cfg.Billing.Endpoints, source, 0, logger)

			client := dispatch.NewClient(cfg.Billing.Token, timeout, cfg.Billing.MaxBodyChars, logger)
			fetcher := storage.NewFetcher(timeout, cfg.Storage.Endpoint)
			retrier := dispatch.NewRetrier(client, fetcher, resolver, cfg.Retry, logger)

			result, err := retrier.Retry(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&req.Service, "service", "", "electricity, gas or meter")
	cmd.Flags().StringVar(&req.Endpoint, "endpoint", "", "billing endpoint URL")
	cmd.Flags().StringToStringVar(&req.Fields, "field", nil, "form field key=value (repeatable)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number override")
	cmd.Flags().StringVar(&req.FileRef, "file-ref", "", "stored document ref or a URL on the storage host")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}
