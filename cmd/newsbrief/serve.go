package main

import (
	"github.com/spf13/cobra"
)

func serveCMD() *cobra.Command {
	var addr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.Config.HTTPAddr
			}
			return a.Server().Run(cmd.Context(), addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return serve
}
