package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
)

func (a *app) slotsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "slots", Short: "Browse and manage parking slots"}
	cmd.AddCommand(
		a.slotsListCommand(),
		a.slotCreateCommand(),
		a.slotUpdateCommand(),
		a.slotDeleteCommand(),
	)
	return cmd
}

func (a *app) slotsListCommand() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parking slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ViewSlots); err != nil {
				return err
			}
			return show(cmd.Context(), a, a.api.Slots.List, a.listOptions("parking slots"), lf, renderSlots)
		},
	}
	lf.bind(cmd, true)
	return cmd
}

func bindSlotFlags(cmd *cobra.Command, f *controller.SlotForm) {
	cmd.Flags().StringVar(&f.VehicleType, "type", "", "CAR, MOTORCYCLE or TRUCK")
	cmd.Flags().StringVar(&f.Size, "size", "", "SMALL, MEDIUM or LARGE")
	cmd.Flags().StringVar(&f.Location, "location", "", "location, e.g. Level 1")
}

// slotCreateCommand creates one slot, or --count slots numbered after --prefix.
func (a *app) slotCreateCommand() *cobra.Command {
	var (
		f      controller.SlotForm
		count  int
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one slot, or many with --count and --prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageSlots); err != nil {
				return err
			}
			bulk := cmd.Flags().Changed("count") || prefix != ""
			m := controller.Mutation{
				Success:  "Parking slot created",
				Failure:  "Failed to create parking slot",
				Fallback: "Could not create parking slot.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(true)
					if err != nil {
						return err
					}
					_, err = a.api.Slots.Create(ctx, payload)
					return err
				},
			}
			if bulk {
				form := controller.BulkSlotForm{Count: count, Prefix: prefix, VehicleType: f.VehicleType, Size: f.Size, Location: f.Location}
				m = controller.Mutation{
					Success:  "Parking slots created",
					Failure:  "Failed to create parking slots",
					Fallback: "Could not create parking slots.",
					Run: func(ctx context.Context) error {
						payload, err := form.Payload()
						if err != nil {
							return err
						}
						created, err := a.api.Slots.BulkCreate(ctx, payload)
						if err == nil {
							fmt.Fprintf(a.env.Out, "created %d slot(s)\n", len(created))
						}
						return err
					},
				}
			}
			return mutate(cmd.Context(), a, a.api.Slots.List, "parking slots", renderSlots, m)
		},
	}
	bindSlotFlags(cmd, &f)
	cmd.Flags().StringVar(&f.SlotNumber, "number", "", "slot number for a single slot, e.g. A-01")
	cmd.Flags().IntVar(&count, "count", 0, "number of slots to create (1-100)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "slot number prefix for bulk creation")
	return cmd
}

func (a *app) slotUpdateCommand() *cobra.Command {
	var f controller.SlotForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a parking slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageSlots); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Slots.List, "parking slots", renderSlots, controller.Mutation{
				Success:  "Parking slot updated",
				Failure:  "Failed to update parking slot",
				Fallback: "Could not update parking slot.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(false)
					if err != nil {
						return err
					}
					_, err = a.api.Slots.Update(ctx, args[0], payload)
					return err
				},
			})
		},
	}
	bindSlotFlags(cmd, &f)
	cmd.Flags().StringVar(&f.SlotNumber, "number", "", "new slot number")
	cmd.Flags().StringVar(&f.Status, "status", "", "AVAILABLE, RESERVED or MAINTENANCE")
	return cmd
}

func (a *app) slotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a parking slot that is not occupied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageSlots); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Slots.List, "parking slots", renderSlots, controller.Mutation{
				Success:  "Parking slot deleted",
				Failure:  "Failed to delete parking slot",
				Fallback: "Could not delete parking slot.",
				Run: func(ctx context.Context) error {
					return a.api.Slots.Delete(ctx, args[0])
				},
			})
		},
	}
}
