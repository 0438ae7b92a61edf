package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cmsclean/internal/input"
	"github.com/jmylchreest/cmsclean/internal/logger"
	"github.com/jmylchreest/cmsclean/pkg/fetcher"
)

// readSource loads the HTML named by the first argument: an http(s) URL is
// fetched, anything else is read as a file ("-" or no argument is stdin).
// It returns the HTML and a label for reports.
func readSource(ctx context.Context, cmd *cobra.Command, args []string) (string, string, error) {
	src := "-"
	if len(args) > 0 {
		src = args[0]
	}

	if !isURL(src) {
		enc, _ := cmd.Flags().GetString("encoding")
		html, err := input.ReadFile(src, enc)
		if err != nil {
			return "", src, err
		}
		if src == "-" {
			src = "stdin"
		}
		logger.Debug("input read", "source", src, "bytes", len(html))
		return html, src, nil
	}

	mode, _ := cmd.Flags().GetString("fetch-mode")
	selector, _ := cmd.Flags().GetString("selector")
	absolutize, _ := cmd.Flags().GetBool("absolutize")

	f, err := fetcher.New(mode, fetcher.Config{})
	if err != nil {
		return "", src, err
	}
	defer func() { _ = f.Close() }()

	content, err := f.Fetch(ctx, src, fetcher.Options{
		Selector:   selector,
		Absolutize: absolutize,
	})
	if err != nil {
		return "", src, err
	}
	logger.Debug("page fetched", "url", content.URL, "fetcher", f.Type(), "status", content.StatusCode, "bytes", len(content.HTML))
	return content.HTML, content.URL, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// writeText writes s to path, or stdout when path is empty.
func writeText(path, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if path == "" {
		_, err := os.Stdout.WriteString(s)
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644) //#nosec G306 -- output is user content, not secrets
}

// openOutput returns stdout or a created file and its closer.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
