package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cmsclean/internal/logger"
	"github.com/jmylchreest/cmsclean/pkg/cleaner"
	"github.com/jmylchreest/cmsclean/pkg/cleaner/cms"
)

var textCmd = &cobra.Command{
	Use:   "text [file|url|-]",
	Short: "Convert HTML to plain text",
	Long: `Convert HTML to plain text. Entities are decoded, paragraphs and
headers end with a line break, divs are surrounded by line breaks and <br>
becomes a newline. Each table row becomes a line of " | " separated cells,
and the table sits between two "----------" rules. Script and style content
is dropped and runs of blank lines collapse to one.

With --clean the HTML is cleaned first using the clean settings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)

	flags := textCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("clean", false, "clean the HTML before converting it")
}

func runText(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	html, source, err := readSource(ctx, cmd, args)
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}

	var c cleaner.Cleaner = cms.NewText()
	if clean, _ := cmd.Flags().GetBool("clean"); clean {
		c = cleaner.NewChain(cms.New(&cfg.Clean), cms.NewText())
	}
	logger.Debug("converting to text", "source", source, "cleaner", c.Name())

	text, err := c.Clean(html)
	if err != nil {
		logger.Error("conversion failed", "error", err)
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	return writeText(outPath, text)
}
