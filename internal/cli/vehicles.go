package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
	"github.com/spec-kit/parking-service/internal/domain"
)

func (a *app) vehiclesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "vehicles", Short: "Register and review vehicles"}
	cmd.AddCommand(
		a.vehiclesListCommand(),
		a.vehiclesSearchCommand(),
		a.vehicleCreateCommand(),
		a.vehicleUpdateCommand(),
		a.vehicleDeleteCommand(),
		a.vehicleApproveCommand(),
		a.vehicleRejectCommand(),
	)
	return cmd
}

func (a *app) vehiclesListCommand() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles (your own, or all for administrators)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageOwnVehicles); err != nil {
				return err
			}
			return show(cmd.Context(), a, a.api.Vehicles.List, a.listOptions("vehicles"), lf, renderVehicles)
		},
	}
	lf.bind(cmd, false)
	return cmd
}

// vehiclesSearchCommand treats every input line as the new search term. Terms typed faster
// than the debounce delay collapse into one request and only the newest answer is printed.
func (a *app) vehiclesSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Search vehicles interactively, one term per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageOwnVehicles); err != nil {
				return err
			}
			var lc *controller.ListController[domain.Vehicle]
			opts := a.listOptions("vehicles")
			opts.OnLoad = func() {
				st := lc.State()
				if st.Error != "" {
					return
				}
				fmt.Fprintf(a.env.Out, "search %q: %d match(es)\n", st.Search, st.Total)
				renderVehicles(a.env.Out, st.Items)
			}
			lc = controller.NewListController(cmd.Context(), a.api.Vehicles.List, opts)
			defer lc.Close()

			lc.Load()
			lc.Wait()
			scanner := bufio.NewScanner(a.env.In)
			for scanner.Scan() {
				lc.SetSearch(strings.TrimSpace(scanner.Text()))
			}
			lc.Wait()
			return scanner.Err()
		},
	}
}

type vehicleFlags struct {
	controller.VehicleForm
}

func (f *vehicleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.PlateNumber, "plate", "", "plate number")
	cmd.Flags().StringVar(&f.VehicleType, "type", "", "CAR, MOTORCYCLE or TRUCK")
	cmd.Flags().StringVar(&f.Size, "size", "", "SMALL, MEDIUM or LARGE")
	cmd.Flags().StringVar(&f.Color, "color", "", "color")
	cmd.Flags().StringVar(&f.Model, "model", "", "model")
}

func (a *app) vehicleCreateCommand() *cobra.Command {
	var f vehicleFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a vehicle for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageOwnVehicles); err != nil {
				return err
			}
			if f.OwnerID != "" {
				if err := a.require(access.ViewAllVehicles); err != nil {
					return err
				}
			}
			return mutate(cmd.Context(), a, a.api.Vehicles.List, "vehicles", renderVehicles, controller.Mutation{
				Success:     "Vehicle submitted for approval",
				Description: "An administrator will review it shortly.",
				Failure:     "Failed to register vehicle",
				Fallback:    "Could not register vehicle.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(true)
					if err != nil {
						return err
					}
					_, err = a.api.Vehicles.Create(ctx, payload)
					return err
				},
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&f.OwnerID, "owner", "", "owner user id (administrators only)")
	return cmd
}

func (a *app) vehicleUpdateCommand() *cobra.Command {
	var f vehicleFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a vehicle; an owner edit sends it back for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageOwnVehicles); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Vehicles.List, "vehicles", renderVehicles, controller.Mutation{
				Success:  "Vehicle updated",
				Failure:  "Failed to update vehicle",
				Fallback: "Could not update vehicle.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(false)
					if err != nil {
						return err
					}
					_, err = a.api.Vehicles.Update(ctx, args[0], payload)
					return err
				},
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) vehicleDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageOwnVehicles); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Vehicles.List, "vehicles", renderVehicles, controller.Mutation{
				Success:  "Vehicle deleted",
				Failure:  "Failed to delete vehicle",
				Fallback: "Could not delete vehicle.",
				Run: func(ctx context.Context) error {
					return a.api.Vehicles.Delete(ctx, args[0])
				},
			})
		},
	}
}

func (a *app) vehicleApproveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ReviewVehicles); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Vehicles.List, "vehicles", renderVehicles, controller.Mutation{
				Success:  "Vehicle approved",
				Failure:  "Failed to approve vehicle",
				Fallback: "Could not approve vehicle.",
				Run: func(ctx context.Context) error {
					v, err := a.api.Vehicles.Get(ctx, args[0])
					if err != nil {
						return err
					}
					_, err = controller.ApproveVehicle(ctx, a.api.Vehicles, *v)
					return err
				},
			})
		},
	}
}

func (a *app) vehicleRejectCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending vehicle with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ReviewVehicles); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Vehicles.List, "vehicles", renderVehicles, controller.Mutation{
				Success:  "Vehicle rejected",
				Failure:  "Failed to reject vehicle",
				Fallback: "Could not reject vehicle.",
				Run: func(ctx context.Context) error {
					if _, err := controller.RequireReason(reason); err != nil {
						return err
					}
					v, err := a.api.Vehicles.Get(ctx, args[0])
					if err != nil {
						return err
					}
					_, err = controller.RejectVehicle(ctx, a.api.Vehicles, *v, reason)
					return err
				},
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	return cmd
}
