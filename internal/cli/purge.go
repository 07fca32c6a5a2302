package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type purgeOptions struct {
	locationID int64
	categories []string
}

// NewPurgeCmd creates the purge command.
func NewPurgeCmd() *cobra.Command {
	opts := &purgeOptions{}
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Evict cached rows for a location",
		Long: `Delete the cached rows of one or more categories for a location so the
next read refetches them from the provider.

Examples:
  explorectl purge --location-id 7 --category weather
  explorectl purge --location-id 7 --category weather,events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd, opts)
		},
	}

	cmd.Flags().Int64Var(&opts.locationID, "location-id", 0, "Location id to purge")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "Categories to purge")

	return cmd
}

func (o *purgeOptions) validate() error {
	if o.locationID <= 0 {
		return fmt.Errorf("--location-id must be positive, got %d", o.locationID)
	}
	if len(o.categories) == 0 {
		return errors.New("--category is required")
	}
	return nil
}

func runPurge(cmd *cobra.Command, opts *purgeOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	a, err := buildApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, c := range opts.categories {
		n, err := a.Service.Purge(cmd.Context(), c, opts.locationID)
		if err != nil {
			return fmt.Errorf("purging %s: %w", c, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows removed\n", c, n)
	}
	return nil
}
