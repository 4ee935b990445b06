package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tracklight/tracklight/internal/azuredevops"
	"github.com/tracklight/tracklight/internal/credential"
	"github.com/tracklight/tracklight/internal/logging"
	"github.com/tracklight/tracklight/internal/model"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and validate an Azure DevOps connection",
	Long: `This command stores a new Azure DevOps connection: the organization
URL and project name go into the config file, the personal access token
into the system keyring. The credentials are validated with a probe
request before anything is saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orgURL, err := cmd.Flags().GetString("org")
		if err != nil {
			return err
		}
		project, err := cmd.Flags().GetString("project")
		if err != nil {
			return err
		}
		pat, err := cmd.Flags().GetString("pat")
		if err != nil {
			return err
		}
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}

		if orgURL == "" || project == "" || pat == "" {
			return fmt.Errorf("--org, --project, and --pat are required")
		}
		if name == "" {
			name = project
		}

		client := azuredevops.NewClient(orgURL, pat)
		if !client.ValidateConnection(cmd.Context()) {
			return fmt.Errorf("could not reach %s with the given token; check the URL and the token's scopes", orgURL)
		}

		// The project must exist too; a typo here would only surface
		// at import time otherwise.
		proj, err := client.GetProject(cmd.Context(), project)
		if err != nil {
			return err
		}

		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		conn := model.ConnectionConfig{
			ID:              uuid.New().String(),
			Name:            name,
			OrganizationURL: orgURL,
			Project:         proj.Name,
			Enabled:         true,
		}

		if err := credential.SetPAT(conn.ID, pat); err != nil {
			return err
		}

		cfg.Connections = append(cfg.Connections, conn)
		if err := model.SaveConfig(path, cfg); err != nil {
			return err
		}

		logging.Info("connection saved", "name", conn.Name, "project", proj.Name)
		fmt.Printf("Connected to %s (project %q)\n", orgURL, proj.Name)
		return nil
	},
}

func init() {
	connectCmd.Flags().String("org", "", "organization base URL (e.g. https://dev.azure.com/acme)")
	connectCmd.Flags().String("project", "", "Azure DevOps project name")
	connectCmd.Flags().String("pat", "", "personal access token with the Work Items (Read) scope")
	connectCmd.Flags().String("name", "", "label for this connection (defaults to the project name)")
}
