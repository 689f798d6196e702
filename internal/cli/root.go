// Package cli implements parkctl, the command line portal of the parking service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/controller"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/session"
)

// Env is everything a command touches outside the process. Zero fields fall back to the
// real terminal, the config file and the session file.
type Env struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	Config     *config.ClientConfig
	Storage    session.Storage
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type app struct {
	env      Env
	cfg      *config.ClientConfig
	logger   *zap.Logger
	session  *session.Manager
	api      *client.Client
	notify   controller.Notifier
	shutdown func(context.Context) error

	configPath string
	apiURL     string
}

// reportedError has already been shown to the user through a notice.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Execute runs parkctl with args and returns the process exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	root := NewRootCommand(env)
	root.SetArgs(args)
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	if err := root.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(env.Err, "Error:", err)
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree.
func NewRootCommand(env Env) *cobra.Command {
	if env.In == nil {
		env.In = os.Stdin
	}
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	a := &app{env: env, notify: controller.NewWriterNotifier(env.Err)}

	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Parking management portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.parkctl.yaml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL, overrides the config file")

	root.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.navCommand(),
		a.dashboardCommand(),
		a.vehiclesCommand(),
		a.slotsCommand(),
		a.requestsCommand(),
		a.usersCommand(),
		a.settingsCommand(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg := a.env.Config
	if cfg == nil {
		loaded, err := config.LoadClient(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.apiURL != "" {
		copied := *cfg
		copied.APIURL = a.apiURL
		cfg = &copied
	}
	a.cfg = cfg

	a.logger = a.env.Logger
	if a.logger == nil {
		logger, err := observability.NewCLILogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.logger = logger
	}
	a.shutdown = observability.SetupTracing("parkctl", cfg.OTelEndpoint, true, a.logger)

	storage := a.env.Storage
	if storage == nil {
		storage = session.NewFileStorage(cfg.SessionFile)
	}
	a.session, a.api = session.Connect(client.Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: a.env.HTTPClient,
		Logger:     a.logger,
	}, storage, a.logger)

	if err := a.session.Init(ctx); errors.Is(err, session.ErrSessionExpired) {
		a.notify.Error("Session expired", "Please login again.")
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("tracing shutdown", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// require gates a command before any request is sent.
func (a *app) require(capability access.Capability) error {
	if err := access.Require(a.session.State().Role(), capability); err != nil {
		var denial *access.Denial
		if errors.As(err, &denial) {
			a.notify.Error("Access denied", denial.Notice)
		}
		return reportedError{err}
	}
	return nil
}

// fail shows err as a notice and marks it reported.
func (a *app) fail(title string, err error, fallback string) error {
	var invalid *controller.ValidationError
	if errors.As(err, &invalid) {
		a.notify.Error("Validation Error", invalid.Message)
		return reportedError{err}
	}
	a.notify.Error(title, client.MessageOf(err, fallback))
	return reportedError{err}
}

func (a *app) listOptions(resource string) controller.ListOptions {
	return controller.ListOptions{
		Resource: resource,
		PageSize: a.cfg.PageSize,
		Debounce: a.cfg.SearchDebounce,
		Notifier: a.notify,
		Logger:   a.logger,
	}
}

// mutate runs m through a list controller so the current page is re-fetched and printed once.
func mutate[T any](ctx context.Context, a *app, fetch controller.Fetch[T], resource string, render func(io.Writer, []T), m controller.Mutation) error {
	lc := controller.NewListController(ctx, fetch, a.listOptions(resource))
	defer lc.Close()
	if err := lc.Mutate(ctx, m); err != nil {
		return reportedError{err}
	}
	lc.Wait()
	if st := lc.State(); st.Error == "" {
		render(a.env.Out, st.Items)
	}
	return nil
}

// show loads one page with the given parameters and prints it.
func show[T any](ctx context.Context, a *app, fetch controller.Fetch[T], opts controller.ListOptions, lf listFlags, render func(io.Writer, []T)) error {
	if lf.limit > 0 {
		opts.PageSize = lf.limit
	}
	opts.Search = lf.search
	opts.Status = strings.ToUpper(lf.status)
	opts.VehicleType = strings.ToUpper(lf.vehicleType)
	lc := controller.NewListController(ctx, fetch, opts)
	defer lc.Close()

	lc.SetPage(lf.page)
	lc.Wait()

	st := lc.State()
	if st.Error != "" {
		return reportedError{errors.New(st.Error)}
	}
	render(a.env.Out, st.Items)
	fmt.Fprintf(a.env.Out, "page %d of %d (%d total)\n", st.Page, max(st.TotalPages, 1), st.Total)
	return nil
}

type listFlags struct {
	page        int
	limit       int
	search      string
	status      string
	vehicleType string
}

func (lf *listFlags) bind(cmd *cobra.Command, withType bool) {
	cmd.Flags().IntVar(&lf.page, "page", 1, "page number")
	cmd.Flags().IntVar(&lf.limit, "limit", 0, "page size (default from config)")
	cmd.Flags().StringVar(&lf.search, "search", "", "search term")
	cmd.Flags().StringVar(&lf.status, "status", "", "status filter")
	if withType {
		cmd.Flags().StringVar(&lf.vehicleType, "type", "", "vehicle type filter")
	}
}
