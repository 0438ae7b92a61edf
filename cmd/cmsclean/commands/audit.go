package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/cmsclean/internal/logger"
	"github.com/jmylchreest/cmsclean/internal/output"
	"github.com/jmylchreest/cmsclean/pkg/dom"
	"github.com/jmylchreest/cmsclean/pkg/linkaudit"
)

// ErrBrokenLinks is returned with --fail-on-broken when any link is broken.
var ErrBrokenLinks = errors.New("broken links found")

var auditCmd = &cobra.Command{
	Use:   "audit [file|url|-]",
	Short: "Check the links of a document",
	Long: `Probe every http(s) link of a document and classify it as ok,
redirected (with the proposed replacement), broken or timed out.

Redirects that only change the scheme, a www. prefix, host case or a
trailing slash are safe; --apply-safe rewrites them and -o writes the
updated document. --mark-broken flags broken anchors with
data-link-invalid="true" so editors can find them.

Examples:
  cmsclean audit page.html
  cmsclean audit page.html --format json --rescan-timeouts 2
  cmsclean audit page.html --apply-safe --mark-broken -o fixed.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	flags := auditCmd.Flags()
	flags.StringP("output", "o", "", "write the updated document here (needs --apply-safe or --mark-broken)")
	flags.String("report", "", "report file (default: stdout)")
	flags.String("format", "markdown", "report format: json, jsonl, yaml, markdown")
	flags.Int("rescan-timeouts", 0, "probe timed-out links again this many times")
	flags.Bool("apply-safe", false, "apply scheme, www and trailing-slash redirects")
	flags.Bool("mark-broken", false, "flag broken anchors with data-link-invalid")
	flags.Bool("fail-on-broken", false, "exit with an error when any link is broken")

	flags.Duration("timeout", 0, "timeout per link (default from config, 10s)")
	flags.Duration("stagger", 0, "delay between starting checks")
	flags.IntP("concurrency", "c", 0, "concurrent checks")
	flags.Int("max-redirects", 0, "longest redirect chain followed")

	_ = viper.BindPFlag("audit.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("audit.stagger", flags.Lookup("stagger"))
	_ = viper.BindPFlag("audit.concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("audit.max_redirects", flags.Lookup("max-redirects"))
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	html, source, err := readSource(ctx, cmd, args)
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	doc := dom.Parse(html)
	links := linkaudit.Extract(doc)
	auditor := linkaudit.New(cfg.Audit)

	run := auditor.Start(ctx, links, linkaudit.SelectUnchecked)
	logInfo("Checking %d links (run %s)", run.Total(), run.ID())
	waitWithProgress(run)

	rescans, _ := cmd.Flags().GetInt("rescan-timeouts")
	for i := 0; i < rescans && ctx.Err() == nil; i++ {
		if linkaudit.Tally(links)[linkaudit.Timeout] == 0 {
			break
		}
		rerun := auditor.Start(ctx, links, linkaudit.SelectTimeouts)
		logInfo("Rescanning %d timed-out links", rerun.Total())
		waitWithProgress(rerun)
	}

	report := output.NewAuditReport(run.ID(), source, links)

	applySafe, _ := cmd.Flags().GetBool("apply-safe")
	if applySafe {
		applied, err := linkaudit.ApplyAutoFixes(doc, links)
		if err != nil {
			logger.Error("failed to apply fixes", "error", err)
			return err
		}
		report.AutoFixed = applied
		logger.Info("safe fixes applied", "count", applied)
	}

	reportPath, _ := cmd.Flags().GetString("report")
	if err := writeFormatted(reportPath, format, report); err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}
	broken := report.Broken()

	markBroken, _ := cmd.Flags().GetBool("mark-broken")
	if markBroken {
		for _, l := range links {
			if !l.Result.Broken() {
				continue
			}
			if err := linkaudit.MarkInvalid(doc, l); err != nil {
				logger.Error("failed to mark link", "link", l.OriginalLink, "error", err)
				return err
			}
		}
	}

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		if !applySafe && !markBroken {
			logger.Warn("document written unchanged; use --apply-safe or --mark-broken")
		}
		if err := writeText(outPath, dom.Render(doc, false)); err != nil {
			logger.Error("failed to write document", "path", outPath, "error", err)
			return err
		}
	}

	if failOnBroken, _ := cmd.Flags().GetBool("fail-on-broken"); failOnBroken && broken > 0 {
		logError("%d broken link(s)", broken)
		return fmt.Errorf("%w: %d", ErrBrokenLinks, broken)
	}
	return nil
}

// waitWithProgress logs progress every second until run finishes.
func waitWithProgress(run *linkaudit.Run) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-run.Done():
			checked, total := run.Progress()
			logger.Debug("audit run finished", "run", run.ID(), "checked", checked, "total", total)
			return
		case <-ticker.C:
			checked, total := run.Progress()
			logInfo("  %d/%d links checked", checked, total)
		}
	}
}
