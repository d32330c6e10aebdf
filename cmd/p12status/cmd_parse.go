package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"p12status/internal/dates"
	"p12status/internal/extract"
	"p12status/internal/runner"
	"p12status/internal/status"
	"p12status/internal/ui"
)

// parseCmd reads a saved service response without contacting the service
var parseCmd = &cobra.Command{
	Use:   "parse <response.html>",
	Short: "Show what would be extracted from a saved result page",
	Long: `Parse a result page saved from the verification service and print the
segmented lines, the fields found in each block, and the resulting status and
validity window. Useful when the service changes its wording or layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()

	norm := dates.NewNormalizer(cfg.Extraction.DatePolicy())
	a, err := runner.Assess(string(data), norm, status.NewClassifier(cfg.Extraction.Keywords()))
	if err != nil {
		if !errors.Is(err, extract.ErrNoResultBlock) {
			return err
		}
		fmt.Fprintln(out, styles.Warning.Render("No result block found"))
	}

	if a.Result != nil {
		fmt.Fprintln(out, styles.Title.Render("Lines"))
		for i, ln := range a.Result.Lines {
			fmt.Fprintf(out, "%s %s\n", styles.Muted.Render(fmt.Sprintf("%3d", i)), ln)
		}

		printRecord(out, styles, norm, "Certificate", a.Result.Certificate)
		printRecord(out, styles, norm, "Provisioning profile", a.Result.Profile)
		printRecord(out, styles, norm, "Binding certificate", a.Result.Binding)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.Outcome(a.Outcome).Render(a.Outcome.Decoration()))
	fmt.Fprintf(out, "Valid From: %s\n", a.Window.Effective)
	fmt.Fprintf(out, "Valid To:   %s\n", a.Window.Expiration)
	return nil
}

func printRecord(w io.Writer, styles ui.Styles, norm *dates.Normalizer, title string, rec extract.FieldRecord) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Title.Render(title))
	if len(rec) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("  (none)"))
		return
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, rec[k])
	}
	if v, ok := rec.Get(extract.FieldEffective); ok {
		fmt.Fprintf(w, "  %s\n", styles.Info.Render("effective → "+norm.Parse(v).String()))
	}
	if v, ok := rec.Get(extract.FieldExpiration); ok {
		fmt.Fprintf(w, "  %s\n", styles.Info.Render("expiration → "+norm.Parse(v).String()))
	}
}
