package main

import (
	"context"

	cfg "navd/common/config"
	"navd/query/app"

	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	var configFile string
	app.APPVERSION = VERSION
	c := &cobra.Command{
		Use:   "serve",
		Short: "run the navmesh query http service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InitConfig(configFile)
			return app.Run(context.Background())
		},
	}
	c.Flags().StringVar(&configFile, "config", "application.hjson", "config file")
	return c
}
