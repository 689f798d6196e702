package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
)

func (a *app) requestsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "requests", Short: "Request parking slots and review requests"}
	cmd.AddCommand(
		a.requestsListCommand(),
		a.requestCreateCommand(),
		a.requestUpdateCommand(),
		a.requestDeleteCommand(),
		a.requestApproveCommand(),
		a.requestRejectCommand(),
		a.requestReasonCommand(),
	)
	return cmd
}

func (a *app) requestsListCommand() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List slot requests (your own, or all for administrators)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageOwnRequests); err != nil {
				return err
			}
			return show(cmd.Context(), a, a.api.Requests.List, a.listOptions("slot requests"), lf, renderRequests)
		},
	}
	lf.bind(cmd, false)
	return cmd
}

func bindRequestFlags(cmd *cobra.Command, f *controller.SlotRequestForm) {
	cmd.Flags().StringVar(&f.VehicleID, "vehicle", "", "id of an approved vehicle")
	cmd.Flags().StringVar(&f.StartDate, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.PreferredLocation, "location", "", "preferred location")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "notes for the reviewer")
}

func (a *app) requestCreateCommand() *cobra.Command {
	var f controller.SlotRequestForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request a parking slot for one of your approved vehicles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.require(access.ManageOwnRequests); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Requests.List, "slot requests", renderRequests, controller.Mutation{
				Success:     "Request submitted",
				Description: "Your slot request is waiting for approval.",
				Failure:     "Failed to submit request",
				Fallback:    "Could not submit request.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(true)
					if err != nil {
						return err
					}
					_, err = a.api.Requests.Create(ctx, payload)
					return err
				},
			})
		},
	}
	bindRequestFlags(cmd, &f)
	return cmd
}

func (a *app) requestUpdateCommand() *cobra.Command {
	var f controller.SlotRequestForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a pending slot request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageOwnRequests); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Requests.List, "slot requests", renderRequests, controller.Mutation{
				Success:  "Request updated",
				Failure:  "Failed to update request",
				Fallback: "Could not update request.",
				Run: func(ctx context.Context) error {
					payload, err := f.Payload(false)
					if err != nil {
						return err
					}
					_, err = a.api.Requests.Update(ctx, args[0], payload)
					return err
				},
			})
		},
	}
	bindRequestFlags(cmd, &f)
	return cmd
}

func (a *app) requestDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Withdraw a slot request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageOwnRequests); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Requests.List, "slot requests", renderRequests, controller.Mutation{
				Success:  "Request deleted",
				Failure:  "Failed to delete request",
				Fallback: "Could not delete request.",
				Run: func(ctx context.Context) error {
					return a.api.Requests.Delete(ctx, args[0])
				},
			})
		},
	}
}

// requestApproveCommand opens the approval dialog: the available slots are loaded fresh and,
// without --slot, listed so the reviewer can pick one.
func (a *app) requestApproveCommand() *cobra.Command {
	var slot string
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending request by binding an available slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ReviewRequests); err != nil {
				return err
			}
			ctx := cmd.Context()
			req, err := a.api.Requests.Get(ctx, args[0])
			if err != nil {
				return a.fail("Failed to load request", err, "Could not load request.")
			}
			dialog, err := controller.OpenApproval(ctx, a.api.Slots, *req)
			if err != nil {
				return a.fail("Failed to load parking slots", err, "Could not load available slots.")
			}
			if slot == "" {
				fmt.Fprintf(a.env.Out, "Available %s slots for %s:\n", req.VehicleType, req.VehiclePlate)
				renderSlots(a.env.Out, dialog.Slots)
			}
			return mutate(ctx, a, a.api.Requests.List, "slot requests", renderRequests, controller.Mutation{
				Success:  "Request approved",
				Failure:  "Failed to approve request",
				Fallback: "Could not approve request.",
				Run: func(ctx context.Context) error {
					_, err := dialog.Confirm(ctx, a.api.Requests, slot)
					return err
				},
			})
		},
	}
	cmd.Flags().StringVar(&slot, "slot", "", "slot id or number to assign")
	return cmd
}

func (a *app) requestRejectCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending request with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ReviewRequests); err != nil {
				return err
			}
			return mutate(cmd.Context(), a, a.api.Requests.List, "slot requests", renderRequests, controller.Mutation{
				Success:  "Request rejected",
				Failure:  "Failed to reject request",
				Fallback: "Could not reject request.",
				Run: func(ctx context.Context) error {
					if _, err := controller.RequireReason(reason); err != nil {
						return err
					}
					req, err := a.api.Requests.Get(ctx, args[0])
					if err != nil {
						return err
					}
					_, err = controller.RejectRequest(ctx, a.api.Requests, *req, reason)
					return err
				},
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	return cmd
}

func (a *app) requestReasonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reason <id>",
		Short: "Show why a request was rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(access.ManageOwnRequests); err != nil {
				return err
			}
			rejection, err := a.api.Requests.Reason(cmd.Context(), args[0])
			if err != nil {
				return a.fail("Failed to load rejection reason", err, "Could not load rejection reason.")
			}
			fmt.Fprintf(a.env.Out, "status: %s\nreason: %s\n", rejection.Status, orDash(rejection.Reason))
			return nil
		},
	}
}
