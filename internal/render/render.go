// Package render writes valuation reports to an io.Writer in text,
// markdown or JSON form. Rendering is deterministic: the same report
// always produces the same bytes.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fairsight/fairsight/pkg/models"
)

// Format selects the output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a user-supplied string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Render writes the report in the given format.
func Render(w io.Writer, report models.ValuationReport, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, report)
	case FormatMarkdown:
		return renderMarkdown(w, report)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Verdict compares the aggregate fair value to the current market price.
// Empty when either side is missing.
func Verdict(report models.ValuationReport) string {
	if report.Summary == nil || report.CurrentPrice == nil {
		return ""
	}
	if report.Summary.Mean > *report.CurrentPrice {
		return "UNDERVALUED"
	}
	return "OVERVALUED"
}

func renderText(w io.Writer, r models.ValuationReport) error {
	separator := strings.Repeat("=", 58)

	title := r.Ticker
	if r.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Name, r.Ticker)
	}
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Valuation: %s\n", title)
	fmt.Fprintln(w, separator)

	if r.CurrentPrice != nil {
		fmt.Fprintf(w, "Current price: %s\n\n", money(*r.CurrentPrice))
	} else {
		fmt.Fprintf(w, "Current price: N/A\n\n")
	}

	fmt.Fprintf(w, "%-28s %-14s %s\n", "Method", "Fair Value", "Note")
	fmt.Fprintln(w, strings.Repeat("-", 58))
	for _, res := range r.Results {
		fmt.Fprintf(w, "%-28s %-14s %s\n",
			res.Method.DisplayName(), resultValue(res), resultNote(res))
	}
	fmt.Fprintln(w, strings.Repeat("-", 58))

	if r.Summary != nil {
		fmt.Fprintf(w, "Fair value (mean of %d): %s  [%s .. %s]\n",
			r.Summary.Count, money(r.Summary.Mean), money(r.Summary.Min), money(r.Summary.Max))
		if v := Verdict(r); v != "" {
			fmt.Fprintf(w, "Verdict: %s\n", v)
		}
	} else {
		fmt.Fprintln(w, "No method produced a fair value.")
	}
	fmt.Fprintln(w, separator)
	return nil
}

func renderMarkdown(w io.Writer, r models.ValuationReport) error {
	title := r.Ticker
	if r.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Name, r.Ticker)
	}
	fmt.Fprintf(w, "# Valuation: %s\n\n", title)

	if r.CurrentPrice != nil {
		fmt.Fprintf(w, "Current price: **%s**\n\n", money(*r.CurrentPrice))
	}

	fmt.Fprintln(w, "| Method | Fair Value | Note |")
	fmt.Fprintln(w, "|--------|-----------:|------|")
	for _, res := range r.Results {
		fmt.Fprintf(w, "| %s | %s | %s |\n",
			res.Method.DisplayName(), resultValue(res), resultNote(res))
	}
	fmt.Fprintln(w)

	if r.Summary != nil {
		fmt.Fprintf(w, "**Fair value (mean of %d): %s** (range %s to %s)\n",
			r.Summary.Count, money(r.Summary.Mean), money(r.Summary.Min), money(r.Summary.Max))
		if v := Verdict(r); v != "" {
			fmt.Fprintf(w, "\nVerdict: **%s**\n", v)
		}
	} else {
		fmt.Fprintln(w, "No method produced a fair value.")
	}
	return nil
}

// RenderHeadlines appends a news section after a report.
func RenderHeadlines(w io.Writer, articles []models.NewsArticle, format Format) error {
	if len(articles) == 0 {
		return nil
	}
	switch format {
	case FormatText:
		fmt.Fprintln(w, "\nRecent headlines:")
		for _, a := range articles {
			fmt.Fprintf(w, "  - %s (%s)\n", a.Title, a.Source)
		}
		return nil
	case FormatMarkdown:
		fmt.Fprintln(w, "\n## Recent headlines")
		fmt.Fprintln(w)
		for _, a := range articles {
			fmt.Fprintf(w, "- [%s](%s)\n", a.Title, a.URL)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func resultValue(res models.ValuationResult) string {
	if !res.Available() {
		return "N/A"
	}
	return money(*res.Value)
}

func resultNote(res models.ValuationResult) string {
	if !res.Available() {
		return string(res.Reason)
	}
	if res.Approximate {
		return "approximate (incomplete balance sheet)"
	}
	return ""
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
