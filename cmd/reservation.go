package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/reservations"
	"github.com/spf13/cobra"
)

func newReservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Manage reservations (non-UI)",
	}
	cmd.AddCommand(newReservationCreateCmd())
	cmd.AddCommand(newReservationListCmd())
	cmd.AddCommand(newReservationCancelCmd())
	return cmd
}

func newReservationCreateCmd() *cobra.Command {
	var (
		roomID   int64
		clientID int64
		checkIn  string
		checkOut string
		notes    string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Book a room for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			stay, err := booking.ParseStay(checkIn, checkOut)
			if err != nil {
				return fmt.Errorf("invalid --check-in/--check-out (want YYYY-MM-DD, check-out after check-in): %w", err)
			}

			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := booking.NewService(reservations.NewRepo(d))
			r, err := svc.Create(ctx, booking.NewReservation{
				RoomID:   roomID,
				ClientID: clientID,
				CheckIn:  stay.CheckIn,
				CheckOut: stay.CheckOut,
				Notes:    notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created reservation id=%d room=%s stay=%s nights=%d total=%s\n",
				r.ID, r.Room.Number, r.Stay(), r.Nights, r.TotalPrice)
			return nil
		},
	}

	c.Flags().Int64Var(&roomID, "room-id", 0, "room id")
	c.Flags().Int64Var(&clientID, "client-id", 0, "client id")
	c.Flags().StringVar(&checkIn, "check-in", "", "check-in date YYYY-MM-DD")
	c.Flags().StringVar(&checkOut, "check-out", "", "check-out date YYYY-MM-DD")
	c.Flags().StringVar(&notes, "notes", "", "free-form notes")

	_ = c.MarkFlagRequired("room-id")
	_ = c.MarkFlagRequired("client-id")
	_ = c.MarkFlagRequired("check-in")
	_ = c.MarkFlagRequired("check-out")
	return c
}

func newReservationListCmd() *cobra.Command {
	var (
		status string
		roomID int64
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List reservations, newest check-in first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := booking.NewService(reservations.NewRepo(d))
			rs, err := svc.List(ctx, booking.Filter{Status: booking.Status(status), RoomID: roomID})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROOM\tCLIENT\tCHECK-IN\tCHECK-OUT\tNIGHTS\tTOTAL\tSTATUS")
			for _, r := range rs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.Room.Number, r.Client.Name, booking.FormatDate(r.CheckIn), booking.FormatDate(r.CheckOut), r.Nights, r.TotalPrice, r.Status)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&status, "status", "", "filter by status (pending, confirmed, cancelled, finalized)")
	c.Flags().Int64Var(&roomID, "room-id", 0, "filter by room")
	return c
}

func newReservationCancelCmd() *cobra.Command {
	var id int64
	c := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a reservation and free its dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := booking.NewService(reservations.NewRepo(d))
			r, err := svc.Cancel(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reservation id=%d status=%s\n", r.ID, r.Status)
			return nil
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "reservation id")
	_ = c.MarkFlagRequired("id")
	return c
}
