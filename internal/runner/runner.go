// Package runner performs one synchronous pass over the status report:
// every listed credential pair is checked with the verification service,
// its row is rewritten, and the document is saved.
//
// Failures are local to a pair. A pair whose files are missing, whose check
// fails or whose response cannot be read keeps its previous row. Only
// reading or writing the report aborts a run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"p12status/internal/bundle"
	"p12status/internal/checker"
	"p12status/internal/dates"
	"p12status/internal/diff"
	"p12status/internal/extract"
	"p12status/internal/logging"
	"p12status/internal/report"
	"p12status/internal/status"
	"p12status/internal/ui"
)

// Submitter sends a credential pair to the verification service and returns
// the response page.
type Submitter interface {
	Submit(ctx context.Context, s checker.Submission) (string, error)
}

// Loader reads a credential pair from disk.
type Loader interface {
	Load(name string) (*bundle.Bundle, error)
}

// Options configures a Runner. Zero values take defaults.
type Options struct {
	ReportPath         string
	RecommendMarker    string
	RecommendedCompany string

	// DryRun prints a diff of the report instead of writing it.
	DryRun bool

	Normalizer *dates.Normalizer
	Classifier *status.Classifier

	Out    io.Writer
	Styles *ui.Styles // nil prints unstyled
	Logger *zap.Logger
}

// Summary counts what a run did.
type Summary struct {
	RunID   string
	Total   int
	Valid   int
	Revoked int
	Unknown int
	Skipped int

	// Written is false for a no-op run.
	Written bool
}

// Checked is the number of pairs that got a fresh verdict.
func (s *Summary) Checked() int {
	return s.Valid + s.Revoked + s.Unknown
}

func (s *Summary) record(o status.Outcome) {
	switch o {
	case status.Valid:
		s.Valid++
	case status.Revoked:
		s.Revoked++
	default:
		s.Unknown++
	}
}

// Runner ties the report, the bundle loader and the service together.
type Runner struct {
	submitter Submitter
	loader    Loader
	opts      Options
	styles    ui.Styles
	logger    *zap.Logger
	reportLog *zap.Logger
}

// verdict is a fresh outcome for one row, kept in table order.
type verdict struct {
	company string
	outcome status.Outcome
}

// New returns a Runner.
func New(submitter Submitter, loader Loader, opts Options) *Runner {
	if opts.ReportPath == "" {
		opts.ReportPath = "README.md"
	}
	if opts.RecommendMarker == "" {
		opts.RecommendMarker = report.DefaultRecommendMarker
	}
	if opts.Normalizer == nil {
		opts.Normalizer = dates.NewNormalizer(dates.DefaultPolicy())
	}
	if opts.Classifier == nil {
		opts.Classifier = status.NewClassifier(status.DefaultKeywords())
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	styles := ui.PlainStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	return &Runner{
		submitter: submitter,
		loader:    loader,
		opts:      opts,
		styles:    styles,
		logger:    logging.For(opts.Logger, logging.CategoryRunner),
		reportLog: logging.For(opts.Logger, logging.CategoryReport),
	}
}

// Run checks every row of the report and writes it back.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", sum.RunID))
	path := r.opts.ReportPath
	name := filepath.Base(path)

	table, err := report.Read(path)
	if err != nil && !errors.Is(err, report.ErrNoTable) {
		r.reportLog.Error("Failed to read report", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	r.reportLog.Debug("Read report",
		zap.String("path", path),
		zap.Int("lines", len(table.Lines)),
		zap.Int("rows", len(table.Rows)))
	if len(table.Rows) == 0 {
		r.printf(r.styles.Warning, "No certificates found in %s", name)
		logger.Info("No rows to check", zap.String("report", path))
		return sum, nil
	}

	original := table.String()
	sum.Total = len(table.Rows)
	r.printf(r.styles.Title, "Found %d certificates in %s", sum.Total, name)
	logger.Info("Starting run", zap.String("report", path), zap.Int("rows", sum.Total))

	fresh := make([]verdict, 0, len(table.Rows))
	rows := append([]report.Row(nil), table.Rows...)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("run interrupted: %w", err)
		}

		r.printf(r.styles.Body, "Checking %s...", row.Company)
		start := time.Now()

		a, err := r.check(ctx, row.Company)
		if err != nil {
			sum.Skipped++
			r.printf(r.styles.Warning, "  ⚠️  Could not check status")
			logging.Audit(logger, logging.AuditEvent{
				Type:     logging.AuditCheckSkipped,
				Company:  row.Company,
				Duration: time.Since(start),
				Err:      err,
			})
			continue
		}

		merged := report.Merge(row, a.Outcome, a.Window)
		table.Apply(merged)
		fresh = append(fresh, verdict{company: row.Company, outcome: a.Outcome})
		sum.record(a.Outcome)

		style := r.styles.Outcome(a.Outcome)
		r.printf(style, "  %s Status: %s", a.Outcome.Symbol(), a.Outcome)
		r.printf(r.styles.Muted, "  📅 Actual Effective: %s", a.Window.Effective)
		r.printf(r.styles.Muted, "  📅 Actual Expiry: %s", a.Window.Expiration)

		logging.Audit(logger, logging.AuditEvent{
			Type:       logging.AuditCheckComplete,
			Company:    row.Company,
			Outcome:    a.Outcome.String(),
			Effective:  a.Window.Effective.String(),
			Expiration: a.Window.Expiration.String(),
			Duration:   time.Since(start),
		})
	}

	if company := r.opts.RecommendedCompany; company != "" {
		if v, ok := recommended(fresh, company); ok {
			if table.UpdateRecommended(r.opts.RecommendMarker, company, v.outcome) {
				logger.Debug("Updated recommended highlight",
					zap.String("company", company),
					zap.String("row", v.company))
			}
		}
	}

	fmt.Fprintln(r.opts.Out)
	r.printf(r.styles.Muted, "Checked %d of %d: %d valid, %d revoked, %d unknown, %d skipped",
		sum.Checked(), sum.Total, sum.Valid, sum.Revoked, sum.Unknown, sum.Skipped)

	if r.opts.DryRun {
		r.preview(name, original, table.String())
		return sum, nil
	}

	if err := table.WriteFile(path); err != nil {
		r.reportLog.Error("Failed to write report", zap.String("path", path), zap.Error(err))
		return sum, err
	}
	sum.Written = true
	r.reportLog.Info("Wrote report", zap.String("path", path), zap.Int("rows", sum.Total))

	logging.Audit(logger, logging.AuditEvent{Type: logging.AuditReportWritten, RunID: sum.RunID})
	r.printf(r.styles.Success, "✅ %s updated successfully!", name)

	return sum, nil
}

// recommended picks the first freshly checked row whose company contains
// name. Report rows often carry a suffix such as "(New)".
func recommended(fresh []verdict, name string) (verdict, bool) {
	for _, v := range fresh {
		if strings.Contains(v.company, name) {
			return v, true
		}
	}
	return verdict{}, false
}

// preview prints the pending report changes.
func (r *Runner) preview(name, before, after string) {
	hunks := diff.Lines(before, after, diff.DefaultContext)
	if len(hunks) == 0 {
		r.printf(r.styles.Muted, "No changes to %s", name)
		return
	}
	fmt.Fprintln(r.opts.Out)
	r.printf(r.styles.Title, "--- %s", name)
	r.printf(r.styles.Title, "+++ %s (dry run)", name)
	for _, h := range hunks {
		r.printf(r.styles.Info, "@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, ln := range h.Lines {
			style := r.styles.Body
			switch ln.Type {
			case diff.LineAdded:
				style = r.styles.Success
			case diff.LineRemoved:
				style = r.styles.Error
			}
			r.printf(style, "%s%s", ln.Prefix(), ln.Content)
		}
	}
}

// check loads, submits and assesses one pair. A response without a result
// block is not an error; it yields an Unknown assessment.
func (r *Runner) check(ctx context.Context, company string) (*Assessment, error) {
	b, err := r.loader.Load(company)
	if err != nil {
		if errors.Is(err, bundle.ErrMissingInput) {
			r.printf(r.styles.Error, "❌ Missing files for %s", company)
		}
		return nil, err
	}

	markup, err := r.submitter.Submit(ctx, checker.Submission{
		P12:         b.P12,
		P12Name:     filepath.Base(b.P12Path),
		Password:    b.Password,
		Profile:     b.Profile,
		ProfileName: filepath.Base(b.ProfilePath),
	})
	if err != nil {
		r.printf(r.styles.Error, "❌ Error checking %s: %v", company, err)
		return nil, err
	}

	a, err := Assess(markup, r.opts.Normalizer, r.opts.Classifier)
	if err != nil {
		if !errors.Is(err, extract.ErrNoResultBlock) {
			r.logger.Warn("Unreadable response", zap.String("company", company), zap.Error(err))
		} else {
			r.logger.Debug("Response has no result block", zap.String("company", company))
		}
	}
	return a, nil
}

// printf writes one styled console line.
func (r *Runner) printf(style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(r.opts.Out, style.Render(fmt.Sprintf(format, args...)))
}
