package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/example/hotel-booking/internal/hotel"
	"github.com/example/hotel-booking/internal/money"
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
	}
	cmd.AddCommand(newRoomAddCmd())
	cmd.AddCommand(newRoomListCmd())
	return cmd
}

func newRoomAddCmd() *cobra.Command {
	var (
		number      string
		roomType    string
		capacity    int
		rate        string
		description string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(rate)
			if err != nil {
				return fmt.Errorf("invalid --rate: %w", err)
			}

			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			r, err := hotel.NewRepo(d).CreateRoom(ctx, hotel.Room{
				Number:      number,
				Type:        hotel.RoomType(roomType),
				Capacity:    capacity,
				NightlyRate: amount,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created room id=%d number=%s rate=%s\n", r.ID, r.Number, r.NightlyRate)
			return nil
		},
	}

	c.Flags().StringVar(&number, "number", "", "room number")
	c.Flags().StringVar(&roomType, "type", "single", "single, double, deluxe or suite")
	c.Flags().IntVar(&capacity, "capacity", 1, "guests")
	c.Flags().StringVar(&rate, "rate", "", "nightly rate, e.g. 150.00")
	c.Flags().StringVar(&description, "description", "", "free-form description")
	_ = c.MarkFlagRequired("number")
	_ = c.MarkFlagRequired("rate")
	return c
}

func newRoomListCmd() *cobra.Command {
	var status, roomType string

	c := &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			rooms, err := hotel.NewRepo(d).ListRooms(ctx, hotel.RoomFilter{
				Status: hotel.RoomStatus(status),
				Type:   hotel.RoomType(roomType),
			})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNUMBER\tTYPE\tCAPACITY\tRATE\tSTATUS")
			for _, r := range rooms {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Number, r.Type, r.Capacity, r.NightlyRate, r.Status)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&status, "status", "", "filter by status")
	c.Flags().StringVar(&roomType, "type", "", "filter by type")
	return c
}
