package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "genrelab/internal/errors"
	"genrelab/internal/model"
)

const (
	seedAdminEmail = "admin@example.com"
	seedUserEmail  = "user@example.com"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var adminPassword string
	var userPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or refresh the default administrator and user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.ensureEnvironment()
			if err != nil {
				return err
			}

			seeds := []struct {
				email    string
				password string
				role     model.Role
			}{
				{seedAdminEmail, adminPassword, model.RoleAdministrator},
				{seedUserEmail, userPassword, model.RoleUser},
			}
			for _, s := range seeds {
				created, err := upsertAccount(cmd.Context(), env, s.email, s.password, s.role)
				if err != nil {
					return fmt.Errorf("seed %s: %w", s.email, err)
				}
				verb := "updated"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, s.email, s.role)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "Password for "+seedAdminEmail)
	cmd.Flags().StringVar(&userPassword, "user-password", "user123", "Password for "+seedUserEmail)
	return cmd
}

// upsertAccount creates the account, or resets the password and role of an
// existing one. It reports whether a new account was created.
func upsertAccount(ctx context.Context, env *environment, email, password string, role model.Role) (bool, error) {
	_, err := env.auth.CreateAccount(ctx, email, password, role)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, apperrors.ErrAccountExists) {
		return false, err
	}

	if err := env.auth.ResetPassword(ctx, email, password); err != nil {
		return false, err
	}
	account, err := env.accounts.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if account.Role != role {
		if err := env.accounts.UpdateRole(ctx, account.ID, role); err != nil {
			return false, err
		}
	}
	return false, nil
}
