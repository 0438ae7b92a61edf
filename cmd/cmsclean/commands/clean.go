package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/cmsclean/internal/logger"
	"github.com/jmylchreest/cmsclean/internal/output"
	"github.com/jmylchreest/cmsclean/pkg/cleaner/cms"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file|url|-]",
	Short: "Clean pasted HTML for the CMS editor",
	Long: `Remove styling, Office markup and empty elements, promote bold
paragraphs to headers, merge split links and apply the configured link,
query string and quote rules.

Examples:
  cmsclean clean paste.html
  pbpaste | cmsclean clean --quotes to_smart --linkify
  cmsclean clean paste.html --format markdown --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "html", "output format: html, json, yaml, markdown")
	flags.Bool("pretty", false, "indent block elements")
	flags.Bool("stats", false, "print cleaning statistics to stderr")

	flags.StringSlice("remove-markup", nil, "inline markup to unwrap: bold, italic, underline")
	flags.String("quotes", "", "quote conversion: no_change, to_simple, to_smart")
	flags.String("query", "", "query string cleaning: none, remove_tracking_params, remove_query")
	flags.Bool("linkify", false, "turn bare URLs into links")
	flags.Bool("target-blank", true, "add target=\"_blank\" to external links")
	flags.Bool("noopener", true, "add rel=\"noopener\" to external links")
	flags.StringSlice("local-host", nil, "host of the CMS itself; links to it are not external (repeatable)")

	_ = viper.BindPFlag("clean.markup_to_remove", flags.Lookup("remove-markup"))
	_ = viper.BindPFlag("clean.quote_process", flags.Lookup("quotes"))
	_ = viper.BindPFlag("clean.query_clean_level", flags.Lookup("query"))
	_ = viper.BindPFlag("clean.create_link_from_text", flags.Lookup("linkify"))
	_ = viper.BindPFlag("clean.add_target_blank", flags.Lookup("target-blank"))
	_ = viper.BindPFlag("clean.add_rel_noopener", flags.Lookup("noopener"))
	_ = viper.BindPFlag("clean.local_hosts", flags.Lookup("local-host"))
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	html, source, err := readSource(ctx, cmd, args)
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}

	pretty, _ := cmd.Flags().GetBool("pretty")
	c := cms.New(&cfg.Clean, cms.WithPrettyPrint(pretty))

	logger.Debug("cleaning", "source", source, "cleaner", c.Name())
	result := c.CleanStyling(html)
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "phase", w.Phase, "context", w.Context)
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		logInfo("%s", result.Stats.String())
	}

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if format == "html" {
		return writeText(outPath, result.Content)
	}
	return writeFormatted(outPath, format, result)
}

// writeFormatted serialises data with an output.Writer.
func writeFormatted(path, format string, data any) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput(path)
	if err != nil {
		logger.Error("failed to create output file", "path", path, "error", err)
		return err
	}
	defer closeOut()

	w, err := output.NewWriter(out, f)
	if err != nil {
		return err
	}
	if err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return w.Close()
}
