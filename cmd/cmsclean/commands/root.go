// Package commands implements the CLI commands for cmsclean.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/cmsclean/internal/config"
	"github.com/jmylchreest/cmsclean/internal/logger"
)

// cfg is the configuration loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cmsclean",
	Short: "Clean pasted HTML for a CMS editor and audit its links",
	Long: `cmsclean prepares rich text pasted from Word, web pages or e-mail for a
CMS rich-text editor, converts HTML to plain text, and checks the links
of a document for redirects and breakage.

Input is a file, "-" for stdin, or an http(s) URL.

Examples:
  # Clean a Word paste saved from the clipboard
  cmsclean clean paste.html -o clean.html

  # Clean the article body of a web page with smart quotes
  cmsclean clean https://example.com/post --selector article --quotes to_smart

  # Plain text of a cleaned document
  cmsclean text --clean paste.html

  # Audit links, apply safe fixes and write a Markdown report
  cmsclean audit page.html --apply-safe -o fixed.html --report audit.md`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./cmsclean.yaml or "+config.DefaultPath()+")")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("encoding", "utf-8", "input encoding for files and stdin: utf-8, windows-1252, iso-8859-1, iso-8859-15")
	flags.String("fetch-mode", "static", "fetch mode for URL input: static, dynamic")
	flags.String("selector", "", "CSS selector of the element to take from fetched pages")
	flags.Bool("absolutize", true, "resolve relative links of fetched pages against the page URL")
	flags.String("log-file", "", "append logs to this file")

	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log.file", flags.Lookup("log-file"))
}

func initConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(viper.GetViper(), path)
	if err != nil {
		logError("%v", err)
		return err
	}
	cfg = loaded

	opts := logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	}
	if cfg.Log.File != "" {
		opts.FlushInterval = cfg.Log.FlushInterval
	}
	if err := logger.Init(opts); err != nil {
		logError("%v", err)
		return err
	}

	if used := config.Used(viper.GetViper()); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	return nil
}

// Execute runs the root command and flushes logs before returning.
func Execute() error {
	err := rootCmd.Execute()
	if serr := logger.Shutdown(); serr != nil {
		logError("flush logs: %v", serr)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
