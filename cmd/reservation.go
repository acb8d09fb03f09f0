package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cafe-reservations/internal/application/usecases"
	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
)

func newReservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Inspect availability and manage reservations (non-HTTP)",
	}
	cmd.AddCommand(newReservationAvailabilityCmd())
	cmd.AddCommand(newReservationListCmd())
	cmd.AddCommand(newReservationCancelCmd())
	return cmd
}

func newReservationAvailabilityCmd() *cobra.Command {
	var date, slot string

	c := &cobra.Command{
		Use:   "availability",
		Short: "Show free tables for a date, or for one slot with --slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reservation.ValidateDate(date); err != nil {
				return err
			}
			if slot != "" {
				if err := reservation.ValidateTimeSlot(slot); err != nil {
					return err
				}
			}

			ctx := context.Background()
			e, err := openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			engine, err := availability.New(e.cfg.Availability(), e.store.Reservations(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if slot != "" {
				key := availability.BookingKey{Date: date, Slot: slot}
				free, err := engine.AvailableTables(ctx, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d/%d tables free %v\n", key, len(free), engine.TotalTables(), free)
				return nil
			}

			slots, err := engine.AvailableSlots(ctx, date)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLOT\tFREE\tTOTAL")
			for _, s := range slots {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Slot, s.AvailableCount, engine.TotalTables())
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD")
	c.Flags().StringVar(&slot, "slot", "", "optional time slot HH:MM")
	_ = c.MarkFlagRequired("date")
	return c
}

func newReservationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all reservations with customer details",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := usecases.Booking{Store: e.store, Log: e.log}.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSLOT\tTABLE\tGUESTS\tSTATUS\tCUSTOMER\tEMAIL")
			for _, r := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					r.ID, r.Date, r.TimeSlot, r.TableNumber, r.GuestCount, r.Status, r.CustomerName, r.CustomerEmail)
			}
			return tw.Flush()
		},
	}
}

func newReservationCancelCmd() *cobra.Command {
	var id int64

	c := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a reservation by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := (usecases.Booking{Store: e.store, Log: e.log}).Cancel(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled reservation id=%d\n", id)
			return nil
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "reservation id")
	_ = c.MarkFlagRequired("id")
	return c
}
