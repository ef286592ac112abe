package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"genrelab/internal/model"
)

func newCreateUserCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string
	var role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with the given role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnvironment()
			if err != nil {
				return err
			}
			account, err := env.auth.CreateAccount(cmd.Context(), email, password, model.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", account.Email, account.Role, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (at least 6 characters)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Account role: User or Administrator")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newResetPasswordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email> <password>",
		Short: "Replace an account's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnvironment()
			if err != nil {
				return err
			}
			if err := env.auth.ResetPassword(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", args[0])
			return nil
		},
	}
}

func newUsersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnvironment()
			if err != nil {
				return err
			}
			accounts, err := env.users.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
				return nil
			}

			rows := make([][]string, 0, len(accounts))
			for _, a := range accounts {
				lockedUntil := "-"
				if a.LockedUntil != nil {
					lockedUntil = a.LockedUntil.UTC().Format(time.RFC3339)
				}
				rows = append(rows, []string{
					a.ID.String(),
					a.Email,
					string(a.Role),
					strconv.Itoa(a.FailedLoginCount),
					lockedUntil,
					a.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAccounts(
				[]string{"ID", "Email", "Role", "Failures", "Locked Until", "Created"},
				rows,
				3,
			))
			return nil
		},
	}
}
