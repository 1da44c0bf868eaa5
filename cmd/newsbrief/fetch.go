package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsbrief/internal/news"
)

func fetchCMD() *cobra.Command {
	var category string
	var customSources []string
	var fetch = &cobra.Command{
		Use:   "fetch",
		Short: "Aggregate news once and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.Aggregator.Aggregate(cmd.Context(), customSources, news.ParseCategory(category))
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	fetch.Flags().StringVar(&category, "category", "TECH", "TECH or FINANCE")
	fetch.Flags().StringSliceVar(&customSources, "source", nil, "custom source URL (repeatable)")
	return fetch
}
