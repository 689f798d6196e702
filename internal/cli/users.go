package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
	"github.com/spec-kit/parking-service/internal/domain"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage accounts (administrators)"}
	cmd.AddCommand(
		a.usersListCommand(),
		a.userCreateCommand(),
		a.userUpdateCommand(),
		a.userStatusCommand("suspend", domain.UserStatusSuspended, "User suspended"),
		a.userStatusCommand("activate", domain.UserStatusActive, "User activated"),
		a.userDeleteCommand(),
	)
	return cmd
}

func (a *app) usersListCommand() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageUsers); err != nil {
				return err
			}
			return show(cmd.Context(), a, a.api.Users.List, a.listOptions("users"), lf, renderUsers)
		},
	}
	lf.bind(cmd, false)
	return cmd
}

func bindUserFlags(cmd *cobra.Command, f *controller.UserForm) {
	cmd.Flags().StringVar(&f.Name, "name", "", "full name")
	cmd.Flags().StringVar(&f.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&f.Role, "role", "", "USER or ADMIN")
	cmd.Flags().StringVar(&f.Status, "status", "", "ACTIVE, SUSPENDED or PENDING")
}

func (a *app) userCreateCommand() *cobra.Command {
	var f controller.UserForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageUsers); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Users.List, "users", renderUsers, controller.Mutation{
				Success:  "User created",
				Failure:  "Failed to create user",
				Fallback: "Could not create user.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(true)
					if err != nil {
						return err
					}
					_, err = a.api.Users.Create(ctx, payload)
					return err
				},
			})
		},
	}
	bindUserFlags(cmd, &f)
	return cmd
}

func (a *app) userUpdateCommand() *cobra.Command {
	var f controller.UserForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageUsers); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Users.List, "users", renderUsers, controller.Mutation{
				Success:  "User updated",
				Failure:  "Failed to update user",
				Fallback: "Could not update user.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(false)
					if err != nil {
						return err
					}
					_, err = a.api.Users.Update(ctx, args[0], payload)
					return err
				},
			})
		},
	}
	bindUserFlags(cmd, &f)
	return cmd
}

func (a *app) userStatusCommand(use string, status domain.UserStatus, success string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: "Set an account to " + string(status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageUsers); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Users.List, "users", renderUsers, controller.Mutation{
				Success:  success,
				Failure:  "Failed to update status",
				Fallback: "Could not update user status.",
				Run: func(ctx context.Context) error {
					payload, err := controller.UserForm{Status: string(status)}.Payload(false)
					if err != nil {
						return err
					}
					_, err = a.api.Users.Update(ctx, args[0], payload)
					return err
				},
			})
		},
	}
}

func (a *app) userDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageUsers); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Users.List, "users", renderUsers, controller.Mutation{
				Success:  "User deleted",
				Failure:  "Failed to delete user",
				Fallback: "Could not delete user.",
				Run: func(ctx context.Context) error {
					return a.api.Users.Delete(ctx, args[0])
				},
			})
		},
	}
}
