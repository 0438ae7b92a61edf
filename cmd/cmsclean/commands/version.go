package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cmsclean/internal/output"
	"github.com/jmylchreest/cmsclean/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			w := output.NewJSONWriter(os.Stdout, true, "  ")
			if err := w.Write(version.Get()); err != nil {
				return err
			}
			return w.Close()
		}
		fmt.Println(version.Full())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.Version = version.String()
}
