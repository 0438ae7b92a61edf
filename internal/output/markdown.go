package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/jmylchreest/cmsclean/pkg/cleaner/cms"
	"github.com/jmylchreest/cmsclean/pkg/linkaudit"
)

// MarkdownWriter renders audit reports and cleaning results as
// GitHub-flavoured Markdown. Items are written in order on Flush.
type MarkdownWriter struct {
	w     io.Writer
	items []any
}

// NewMarkdownWriter creates a Markdown writer.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{w: w}
}

// Write buffers an *AuditReport or a *cms.Result.
func (w *MarkdownWriter) Write(data any) error {
	switch data.(type) {
	case *AuditReport, *cms.Result:
	default:
		return fmt.Errorf("markdown output does not support %T", data)
	}
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *MarkdownWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush renders the buffered items.
func (w *MarkdownWriter) Flush() error {
	var buf bytes.Buffer
	for i, item := range w.items {
		md := markdown.NewMarkdown(&buf)
		if i > 0 {
			md.HorizontalRule()
			md.PlainText("")
		}
		switch v := item.(type) {
		case *AuditReport:
			writeAudit(md, v)
		case *cms.Result:
			writeCleaning(md, v)
		}
		if err := md.Build(); err != nil {
			return err
		}
	}
	w.items = nil
	_, err := w.w.Write(buf.Bytes())
	return err
}

// Close flushes the writer.
func (w *MarkdownWriter) Close() error {
	return w.Flush()
}

// auditStates is the order states appear in the summary table.
var auditStates = []linkaudit.Summary{
	linkaudit.OK,
	linkaudit.SimpleChange,
	linkaudit.SchemaChange,
	linkaudit.Redirected,
	linkaudit.NotFound,
	linkaudit.Error,
	linkaudit.Timeout,
	linkaudit.Ignored,
	linkaudit.Updated,
	linkaudit.NotCheckedYet,
}

func writeAudit(md *markdown.Markdown, r *AuditReport) {
	md.H1("Link Audit")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", cell(r.Source)},
			{"Run", "`" + r.RunID + "`"},
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Links", strconv.Itoa(len(r.Links))},
		},
	})
	md.PlainText("")

	md.H2("Summary")
	md.PlainText("")
	rows := make([][]string, 0, len(auditStates))
	chart := piechart.NewPieChart(io.Discard, piechart.WithTitle("Link States"), piechart.WithShowData(true))
	for _, state := range auditStates {
		n := r.Count(state)
		if n == 0 {
			continue
		}
		rows = append(rows, []string{state.String(), strconv.Itoa(n)})
		chart.LabelAndIntValue(state.String(), uint64(n))
	}
	md.Table(markdown.TableSet{Header: []string{"State", "Count"}, Rows: rows})
	md.PlainText("")
	if len(rows) > 1 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case r.Broken() > 0:
		md.Warningf("%d broken link(s) need attention.", r.Broken())
	case r.Proposals() > 0:
		md.Importantf("%d link(s) redirect and have a proposed replacement.", r.Proposals())
	default:
		md.Tip("No broken or redirected links.")
	}
	md.PlainText("")
	if r.AutoFixed > 0 {
		md.Note(fmt.Sprintf("%d link(s) were updated automatically.", r.AutoFixed))
		md.PlainText("")
	}

	md.H2("Links")
	md.PlainText("")
	if len(r.Links) == 0 {
		md.PlainText("The document has no links.")
		md.PlainText("")
		return
	}
	links := make([][]string, 0, len(r.Links))
	for _, l := range r.Links {
		status := ""
		if l.StatusCode != 0 {
			status = strconv.Itoa(l.StatusCode)
		}
		detail := l.LinkAfterRedirect
		if detail == "" {
			detail = l.Err
		}
		links = append(links, []string{
			strconv.Itoa(l.Index),
			cell(l.LinkText),
			cell(l.OriginalLink),
			l.Result.String(),
			status,
			cell(detail),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Text", "Link", "Result", "Status", "Proposal / Error"},
		Rows:   links,
	})
	md.PlainText("")
}

func writeCleaning(md *markdown.Markdown, r *cms.Result) {
	md.H1("Cleaning Result")
	md.PlainText("")

	if s := r.Stats; s != nil {
		rows := [][]string{
			{"Input", humanize.Bytes(uint64(s.InputBytes))},
			{"Output", humanize.Bytes(uint64(s.OutputBytes))},
			{"Reduction", fmt.Sprintf("%.1f%%", s.ReductionPercent())},
			{"Elements removed", strconv.Itoa(s.TotalElementsRemoved())},
			{"Elements kept", strconv.Itoa(s.ElementsKept)},
			{"Links merged", strconv.Itoa(s.LinksMerged)},
			{"Headers created", strconv.Itoa(s.HeadersCreated)},
			{"Duration", s.TotalDuration.String()},
		}
		md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: rows})
		md.PlainText("")

		if len(s.ElementsRemoved) > 0 {
			tags := make([]string, 0, len(s.ElementsRemoved))
			for tag := range s.ElementsRemoved {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			removed := make([]string, 0, len(tags))
			for _, tag := range tags {
				removed = append(removed, fmt.Sprintf("`%s` x%d", tag, s.ElementsRemoved[tag]))
			}
			md.Details("Removed elements", strings.Join(removed, ", "))
			md.PlainText("")
		}
	}

	if r.HasWarnings() {
		md.H2("Warnings")
		md.PlainText("")
		warnings := make([]string, 0, len(r.Warnings))
		for _, w := range r.Warnings {
			warnings = append(warnings, w.String())
		}
		md.BulletList(warnings...)
		md.PlainText("")
	}

	md.H2("Content")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlight("html"), r.Content)
	md.PlainText("")
}

// cell makes s safe inside a Markdown table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
