package main

import (
	"github.com/spf13/cobra"
	"github.com/vidstream/vidstream-api/internal/config"
)

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "vidstream-server",
		Short:        "Video platform user and session API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
