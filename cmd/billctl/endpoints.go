package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wattwise/bill-ingest-service/internal/db"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
)

func connect() error {
	if err := db.Init(cfg.Database.URL); err != nil {
		return fmt.Errorf("connect to endpoint store: %w", err)
	}
	return nil
}

// newEndpointsCmd manages the api_endpoints configuration store
func newEndpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Inspect and update billing endpoint overrides",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the endpoints routing would use right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connect(); err != nil {
				return err
			}
			defer db.Close()

			resolver := dispatch.NewResolver(cfg.Billing.BaseURL, cfg.Billing.Endpoints, db.NewEndpointStore(db.Pool), 0, logger)
			endpoints := resolver.Endpoints(cmd.Context())

			services := make([]string, 0, len(endpoints))
			for s := range endpoints {
				services = append(services, s)
			}
			sort.Strings(services)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SERVICE\tURL")
			for _, s := range services {
				fmt.Fprintf(tw, "%s\t%s\n", s, endpoints[s])
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <service> <url>",
		Short: "Activate a new endpoint URL for a service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dispatch.ValidService(args[0]) {
				return fmt.Errorf("unknown service %q (want electricity, gas or meter)", args[0])
			}
			if err := connect(); err != nil {
				return err
			}
			defer db.Close()

			if err := db.NewEndpointStore(db.Pool).SetEndpoint(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}

// newMigrateCmd creates the api_endpoints table
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the endpoint configuration table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connect(); err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context(), db.Pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "endpoint store ready")
			return nil
		},
	}
}
