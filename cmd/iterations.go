package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracklight/tracklight/internal/azuredevops"
)

var iterationsCmd = &cobra.Command{
	Use:   "iterations",
	Short: "List the iterations (sprints) of the configured project",
	Long: `This command fetches the full iteration tree of the connection's
project, across all teams, and prints it as a flat list. The paths shown
here are what 'import --iteration' expects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		conn, pat, err := resolveConnection(cmd, cfg)
		if err != nil {
			return err
		}

		client := azuredevops.NewClient(conn.OrganizationURL, pat)

		proj, err := client.GetProject(cmd.Context(), conn.Project)
		if err != nil {
			return err
		}

		iterations, err := client.GetIterations(cmd.Context(), proj.ID)
		if err != nil {
			return err
		}

		if len(iterations) == 0 {
			fmt.Printf("No iterations defined in project %q\n", proj.Name)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ITERATION\tSTART\tFINISH\tPATH")
		for _, it := range iterations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				it.DisplayName,
				formatDate(it.StartDate),
				formatDate(it.FinishDate),
				it.Path,
			)
		}
		return w.Flush()
	},
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
