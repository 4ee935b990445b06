package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklight/tracklight/internal/azuredevops"
	"github.com/tracklight/tracklight/internal/store"
	"github.com/tracklight/tracklight/internal/sync"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the work items of an iteration as local tasks",
	Long: `This command fetches every Bug, Task, and User Story assigned to the
given iteration path and creates a local task for each one that has not
been imported before. Re-running the same import is safe: work items
that already have a task are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		iterationPath, err := cmd.Flags().GetString("iteration")
		if err != nil {
			return err
		}
		if iterationPath == "" {
			return fmt.Errorf("--iteration is required (see 'tracklight iterations')")
		}

		user, err := cmd.Flags().GetString("user")
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if user == "" {
			user = cfg.Import.DefaultUserID
		}
		if user == "" {
			return fmt.Errorf("--user is required (or set import.default_user_id in the config)")
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

		workItems, err := client.GetWorkItemsByIteration(cmd.Context(), proj.ID, iterationPath)
		if err != nil {
			return err
		}

		fmt.Printf("Found %d work items in %q\n", len(workItems), iterationPath)

		db, err := store.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		localProject, err := db.EnsureProject(cmd.Context(), conn.Project)
		if err != nil {
			return err
		}
		localUser, err := db.EnsureUser(cmd.Context(), user)
		if err != nil {
			return err
		}

		engine := sync.NewEngine(db)
		result := engine.ImportWorkItems(cmd.Context(), workItems, localProject.ID, localUser.ID)

		for _, task := range result.Tasks {
			fmt.Printf("  imported #%d %s\n", task.AzureDevOps.ExternalID, task.Name)
		}
		fmt.Printf("Done: %d imported, %d skipped\n", result.Imported, result.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("iteration", "i", "", "iteration path to import (backslash-delimited, including the project name)")
	importCmd.Flags().StringP("user", "u", "", "local user the imported tasks are assigned to")
}
