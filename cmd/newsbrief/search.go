package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func searchCMD() *cobra.Command {
	var search = &cobra.Command{
		Use:   "search <query>",
		Short: "Search recent articles across the default sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			hits, err := a.Aggregator.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		},
	}
	return search
}
