package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	showStyle string
	showWidth int
)

// showCmd renders the status report in the terminal
var showCmd = &cobra.Command{
	Use:   "show [report.md]",
	Short: "Render the status report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showStyle, "style", "auto", "Glamour style: auto, dark, light, notty")
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Word wrap width")
}

func runShow(cmd *cobra.Command, args []string) error {
	path := cfg.Report.Path
	if len(args) == 1 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	style := glamour.WithAutoStyle()
	if showStyle != "" && showStyle != "auto" {
		style = glamour.WithStylePath(showStyle)
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(showWidth))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
