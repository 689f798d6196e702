package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
)

func (a *app) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Profile, password and notification settings"}
	cmd.AddCommand(
		a.settingsProfileCommand(),
		a.settingsPasswordCommand(),
		a.settingsNotificationsCommand(),
	)
	return cmd
}

func (a *app) settingsProfileCommand() *cobra.Command {
	var f controller.ProfileForm
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your name and email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageSettings); err != nil {
				return err
			}
			if f.Name == "" && f.Email == "" {
				renderUser(a.env.Out, a.session.State().User)
				return nil
			}
			payload, err := f.Payload()
			if err != nil {
				return a.fail("Failed to update profile", err, "")
			}
			if err := a.session.UpdateProfile(cmd.Context(), payload); err != nil {
				return a.fail("Failed to update profile", err, "Could not update profile.")
			}
			a.notify.Success("Profile updated", "")
			renderUser(a.env.Out, a.session.State().User)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "new name")
	cmd.Flags().StringVar(&f.Email, "email", "", "new email")
	return cmd
}

func (a *app) settingsPasswordCommand() *cobra.Command {
	var f controller.PasswordForm
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageSettings); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return a.fail("Failed to change password", err, "")
			}
			if err := a.session.UpdatePassword(cmd.Context(), f.Current, f.New); err != nil {
				return a.fail("Failed to change password", err, "Could not change password.")
			}
			a.notify.Success("Password updated", "")
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Current, "current", "", "current password")
	cmd.Flags().StringVar(&f.New, "new", "", "new password")
	cmd.Flags().StringVar(&f.Confirm, "confirm", "", "new password again")
	return cmd
}

// settingsNotificationsCommand shows the stored switches; any flag given is saved.
func (a *app) settingsNotificationsCommand() *cobra.Command {
	var email, approvals, updates bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show or change notification preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageSettings); err != nil {
				return err
			}
			prefs, err := a.session.Preferences()
			if err != nil {
				a.logger.Warn("stored preferences unreadable, using defaults", zap.Error(err))
			}
			flags := cmd.Flags()
			if flags.Changed("email") || flags.Changed("approvals") || flags.Changed("updates") {
				if flags.Changed("email") {
					prefs.EmailNotifications = email
				}
				if flags.Changed("approvals") {
					prefs.RequestApprovals = approvals
				}
				if flags.Changed("updates") {
					prefs.SystemUpdates = updates
				}
				if err := a.session.SavePreferences(prefs); err != nil {
					return a.fail("Failed to save preferences", err, "Could not save preferences.")
				}
				a.notify.Success("Preferences saved", "")
			}
			fmt.Fprintf(a.env.Out, "email notifications: %t\nrequest approvals:   %t\nsystem updates:      %t\n",
				prefs.EmailNotifications, prefs.RequestApprovals, prefs.SystemUpdates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&email, "email", false, "email notifications")
	cmd.Flags().BoolVar(&approvals, "approvals", false, "notify on request approvals")
	cmd.Flags().BoolVar(&updates, "updates", false, "system update notices")
	return cmd
}
