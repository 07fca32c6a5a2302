package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

type resolveOptions struct {
	categories   []string
	locationOnly bool
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a place and print its cached categories",
		Long: `Resolve a free-text place through the location cache and print the
location together with every requested category as JSON. Misses and stale
rows are refetched from the providers exactly as the API would.

Examples:
  explorectl resolve 98103
  explorectl resolve "Lynnwood, WA" --categories weather,yelp
  explorectl resolve seattle --location-only`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.categories, "categories", nil, "Categories to include (default all)")
	cmd.Flags().BoolVar(&opts.locationOnly, "location-only", false, "Print only the resolved location")

	return cmd
}

func runResolve(cmd *cobra.Command, query string, opts *resolveOptions) error {
	a, err := buildApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if opts.locationOnly {
		loc, err := a.Service.Location(cmd.Context(), query)
		if err != nil {
			return err
		}
		return enc.Encode(loc)
	}

	ex, err := a.Service.Explore(cmd.Context(), query, opts.categories)
	if err != nil {
		return err
	}
	if err := enc.Encode(ex); err != nil {
		return err
	}
	for name, catErr := range ex.Errors {
		cmd.PrintErrf("%s: %v\n", name, catErr)
	}
	return nil
}
