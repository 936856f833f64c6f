package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/starter/internal/app"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPATTERN\tTITLE")
			for _, r := range app.Routes().Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Pattern, r.Title)
			}
			return w.Flush()
		},
	}
}
