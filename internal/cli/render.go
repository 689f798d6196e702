package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/controller"
	"github.com/spec-kit/parking-service/internal/domain"
)

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func renderVehicles(w io.Writer, items []domain.Vehicle) {
	table(w, "ID\tPLATE\tTYPE\tSIZE\tCOLOR\tMODEL\tSTATUS", func(tw *tabwriter.Writer) {
		for _, v := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", v.ID, v.PlateNumber, v.VehicleType, v.Size,
				orDash(v.Attributes.Color), orDash(v.Attributes.Model), v.Status)
		}
	})
}

func renderSlots(w io.Writer, items []domain.ParkingSlot) {
	table(w, "ID\tSLOT\tTYPE\tSIZE\tLOCATION\tSTATUS\tASSIGNED", func(tw *tabwriter.Writer) {
		for _, s := range items {
			assigned := "-"
			if s.AssignedTo != nil {
				assigned = s.AssignedTo.VehiclePlate
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.SlotNumber, s.VehicleType, s.Size, s.Location, s.Status, assigned)
		}
	})
}

func renderRequests(w io.Writer, items []domain.SlotRequest) {
	table(w, "ID\tVEHICLE\tTYPE\tFROM\tTO\tLOCATION\tSTATUS\tSLOT", func(tw *tabwriter.Writer) {
		for _, r := range items {
			slot := "-"
			if r.AssignedSlot != nil {
				slot = r.AssignedSlot.SlotNumber
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.VehiclePlate, r.VehicleType,
				r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout),
				orDash(r.PreferredLocation), r.Status, slot)
		}
	})
}

func renderUsers(w io.Writer, items []domain.User) {
	table(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS", func(tw *tabwriter.Writer) {
		for _, u := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status)
		}
	})
}

func renderUser(w io.Writer, u *domain.User) {
	fmt.Fprintf(w, "%s <%s>\nrole: %s\nstatus: %s\n", u.Name, u.Email, u.Role, u.Status)
}

func renderNav(w io.Writer, items []access.Route) {
	for _, r := range items {
		fmt.Fprintf(w, "%-16s %s\n", r.Name, r.Path)
	}
}

func renderDashboard(w io.Writer, name string, board *controller.Dashboard) {
	fmt.Fprintf(w, "Welcome back, %s\n\n", name)
	table(w, "CARD\tVALUE\t", func(tw *tabwriter.Writer) {
		for _, s := range board.Stats {
			value := fmt.Sprint(s.Value)
			if s.Unavailable {
				value = "n/a"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Title, value, s.Description)
		}
	})
	if len(board.Recent) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecent requests")
	renderRequests(w, board.Recent)
}
