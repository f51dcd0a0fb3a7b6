// Package report renders verification run reports for terminals and tools.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"rijks-verifier/internal/core/domain"
	"rijks-verifier/internal/core/services"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// document is the rendered shape of a report for the structured formats.
type document struct {
	domain.RunReport `yaml:",inline"`
	Summary          domain.RunSummary `json:"summary" yaml:"summary"`
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *domain.RunReport, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document{RunReport: *r, Summary: r.Summary()})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{RunReport: *r, Summary: r.Summary()}); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderText(w io.Writer, r *domain.RunReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tDURATION\tDETAIL")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			res.Name,
			strings.ToUpper(string(res.Status)),
			res.Duration.Round(time.Millisecond),
			detail(res),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Summary()
	_, err := fmt.Fprintf(w, "\nrun %s: %d passed, %d failed, %d inconclusive, %d skipped (%d total)\n",
		r.ID, s.Passed, s.Failed, s.Inconclusive, s.Skipped, s.Total)
	return err
}

func detail(res domain.CheckResult) string {
	if res.Message == "" {
		return "-"
	}
	if res.Kind == "" {
		return res.Message
	}
	return fmt.Sprintf("[%s] %s", res.Kind, res.Message)
}

// Catalogue writes the check list as a table.
func Catalogue(w io.Writer, checks []services.CheckInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tNEEDS KEY\tRUNNABLE\tDESCRIPTION")
	for _, c := range checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, yesNo(c.RequiresKey), yesNo(c.Runnable), c.Description)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
