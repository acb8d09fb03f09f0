package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/cafe-reservations/internal/application/usecases"
)

func newNewsletterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Newsletter subscribers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			subs, err := usecases.Newsletter{Subscribers: e.store.Subscribers()}.ListActive(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tSUBSCRIBED")
			for _, s := range subs {
				name := ""
				if s.Name != nil {
					name = *s.Name
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Email, name, s.SubscribedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})
	return cmd
}
