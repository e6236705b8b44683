package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/example/hotel-booking/internal/booking"
	"github.com/example/hotel-booking/internal/hotel"
	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientAddCmd())
	cmd.AddCommand(newClientListCmd())
	return cmd
}

func newClientAddCmd() *cobra.Command {
	var name, document, email, phone, address, birthDate string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl := hotel.Client{Name: name, Document: document, Email: email, Phone: phone, Address: address}
			if birthDate != "" {
				bd, err := booking.ParseDate(birthDate)
				if err != nil {
					return fmt.Errorf("invalid --birth-date (want YYYY-MM-DD)")
				}
				cl.BirthDate = &bd
			}

			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			cl, err = hotel.NewRepo(d).CreateClient(ctx, cl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created client id=%d name=%q\n", cl.ID, cl.Name)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "full name")
	c.Flags().StringVar(&document, "document", "", "identity document")
	c.Flags().StringVar(&email, "email", "", "email")
	c.Flags().StringVar(&phone, "phone", "", "phone")
	c.Flags().StringVar(&address, "address", "", "postal address")
	c.Flags().StringVar(&birthDate, "birth-date", "", "birth date YYYY-MM-DD")
	for _, f := range []string{"name", "document", "email", "phone"} {
		_ = c.MarkFlagRequired(f)
	}
	return c
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, err := connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			cs, err := hotel.NewRepo(d).ListClients(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDOCUMENT\tEMAIL\tPHONE")
			for _, c := range cs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Document, c.Email, c.Phone)
			}
			return tw.Flush()
		},
	}
}
