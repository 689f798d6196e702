package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/controller"
	"github.com/spec-kit/parking-service/internal/domain"
)

// readLine reads one trimmed line from the command input, used for secrets not given as flags.
func (a *app) readLine(prompt string) string {
	fmt.Fprint(a.env.Err, prompt)
	line, _ := bufio.NewReader(a.env.In).ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) loginCommand() *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = a.readLine("Password: ")
			}
			if strings.TrimSpace(req.Email) == "" || req.Password == "" {
				return a.fail("Login failed", &controller.ValidationError{Message: controller.RequiredFieldsMessage}, "")
			}
			if err := a.session.Login(cmd.Context(), req); err != nil {
				return a.fail("Login failed", err, a.session.State().Error)
			}
			user := a.session.State().User
			a.notify.Success("Login successful", "Welcome back, "+user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when empty)")
	return cmd
}

func (a *app) registerCommand() *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = a.readLine("Password: ")
			}
			form := controller.UserForm{Name: req.Name, Email: req.Email, Password: req.Password}
			if _, err := form.Payload(true); err != nil {
				return a.fail("Registration failed", err, "")
			}
			if err := a.session.Register(cmd.Context(), req); err != nil {
				return a.fail("Registration failed", err, a.session.State().Error)
			}
			a.notify.Success("Registration successful", "Welcome, "+a.session.State().User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when empty)")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session.Logout(cmd.Context())
			a.notify.Success("Logged out", "")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ViewDashboard); err != nil {
				return err
			}
			renderUser(a.env.Out, a.session.State().User)
			return nil
		},
	}
}

func (a *app) navCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nav [path]",
		Short: "List the pages you may open, or check one path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := a.session.State().Role()
			if len(args) == 1 {
				if denial := access.Guard(role, args[0]); denial != nil {
					a.notify.Error("Access denied", denial.Notice)
					fmt.Fprintln(a.env.Out, "redirect:", denial.Redirect)
					return reportedError{denial}
				}
				fmt.Fprintln(a.env.Out, "ok:", args[0])
				return nil
			}
			if err := a.require(access.ViewDashboard); err != nil {
				return err
			}
			renderNav(a.env.Out, access.Nav(role))
			return nil
		},
	}
}

func (a *app) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the overview for your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ViewDashboard); err != nil {
				return err
			}
			st := a.session.State()
			src := controller.DashboardSources{
				Vehicles: a.api.Vehicles,
				Slots:    a.api.Slots,
				Requests: a.api.Requests,
			}
			if access.Can(st.Role(), access.ManageUsers) {
				src.Users = a.api.Users
			}
			board, err := controller.LoadDashboard(cmd.Context(), st.Role(), src, a.notify, a.logger)
			if err != nil {
				return a.fail("Failed to load dashboard", err, "")
			}
			renderDashboard(a.env.Out, displayName(st.User), board)
			return nil
		},
	}
}

func displayName(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}
