package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklight/tracklight/internal/credential"
	"github.com/tracklight/tracklight/internal/model"
)

var rootCmd = &cobra.Command{
	Use:   "tracklight",
	Short: "Tracklight imports Azure DevOps work items as local tasks",
	Long: `Tracklight synchronizes work items from an Azure DevOps organization
into a local task database. Configure a connection once with 'connect',
inspect the available sprints with 'iterations', then pull the work
items of a sprint with 'import'.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("connection", "c", "", "Azure DevOps connection name")
	rootCmd.PersistentFlags().String("config", "", "path to the config file (default ~/.config/tracklight/config.yaml)")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(iterationsCmd)
	rootCmd.AddCommand(importCmd)
}

// loadConfig reads the application config honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*model.AppConfig, string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveConnection picks the connection named by --connection (or the
// single enabled one) and fetches its token from the keyring.
func resolveConnection(cmd *cobra.Command, cfg *model.AppConfig) (*model.ConnectionConfig, string, error) {
	name, err := cmd.Flags().GetString("connection")
	if err != nil {
		return nil, "", err
	}

	conn, err := cfg.Connection(name)
	if err != nil {
		return nil, "", err
	}

	pat, err := credential.GetPAT(conn.ID)
	if err != nil {
		return nil, "", fmt.Errorf("no stored token for connection %q; run 'tracklight connect' again: %w", conn.Name, err)
	}

	return conn, pat, nil
}
