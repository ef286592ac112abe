package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "genrelab",
		Short:         "Genre lab administration CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (defaults to CONFIG_FILE and environment)")

	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newCreateUserCommand(ctx))
	rootCmd.AddCommand(newResetPasswordCommand(ctx))
	rootCmd.AddCommand(newUsersCommand(ctx))

	return rootCmd
}
