package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cmsclean/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the effective configuration",
	Long: `Print the configuration after merging the config file, CMSCLEAN_*
environment variables and flags. With --write the result is saved to
the --config path, or ` + config.DefaultPath() + ` when none is given.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("write", false, "write the configuration file")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	write, _ := cmd.Flags().GetBool("write")
	if !write {
		return config.Write(os.Stdout, cfg)
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.WriteFile(path, cfg); err != nil {
		logError("%v", err)
		return err
	}
	logInfo("Configuration written to %s", path)
	return nil
}
