package main

import (
	"fmt"

	"go-inventory-tracker/internal/service"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newUserCreateCmd(a), newResetPasswordCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var req service.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an active user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username = args[0]
			user, err := a.users.CreateUser(cmd.Context(), &req, service.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "initial password (min 6 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.FullName, "name", "", "display name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Set a new password for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.users.ResetPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (min 6 characters)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
