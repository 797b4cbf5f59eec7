// Package cli renders occupations, pages, metadata and suggestions for the nocs command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/canoeh/nocs/internal/models"
	"github.com/canoeh/nocs/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-separated line per record, for shell pipelines.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is indented JSON, the same shape as the HTTP API.
	OutputJSON OutputFormat = "json"
)

// descriptionWidth is how many characters of a description text output shows in lists.
const descriptionWidth = 160

const rule = "─────────────────────────────────────────────────────────"

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WritePage writes a page of occupations. Unknown formats fall back to text.
func WritePage(w io.Writer, page models.Page, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, page)
	case OutputCompact:
		for _, occ := range page.Data {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", occ.Code, occ.Title); err != nil {
				return err
			}
		}
		return nil
	default:
		p := page.Pagination
		fmt.Fprintf(w, "\nFound %d occupations (page %d of %d, %d per page)\n\n", p.Total, p.Page, max(p.TotalPages, 1), p.Limit)
		for _, occ := range page.Data {
			fmt.Fprintln(w, rule)
			writeOccupationText(w, occ, descriptionWidth)
		}
		if p.HasNext {
			fmt.Fprintf(w, "More results: --page %d\n", p.Page+1)
		}
		return nil
	}
}

// WriteOccupation writes a single occupation with its full description.
func WriteOccupation(w io.Writer, occ *models.Occupation, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, occ)
	case OutputCompact:
		_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", occ.Code, occ.Title, occ.Tier.Level, occ.ReferenceLink)
		return err
	default:
		writeOccupationText(w, occ, 0)
		return nil
	}
}

func writeOccupationText(w io.Writer, occ *models.Occupation, width int) {
	fmt.Fprintf(w, "%s  %s\n", occ.Code, occ.Title)
	fmt.Fprintf(w, "Tier: %s\n", occ.Tier.Label)
	h := occ.Hierarchy
	fmt.Fprintf(w, "Hierarchy: %s > %s > %s\n", groupText(h.Broad), groupText(h.Major), groupText(h.Minor))
	if occ.Description != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Indent(utils.Truncate(occ.Description, width), "  "))
	}
	if width == 0 && occ.ReferenceLink != "" {
		fmt.Fprintf(w, "\nReference: %s\n", occ.ReferenceLink)
	}
	fmt.Fprintln(w)
}

func groupText(g models.GroupRef) string {
	if g.Title == "" {
		return g.Code
	}
	return g.Code + " " + g.Title
}

// WriteMetadata writes dataset metadata.
func WriteMetadata(w io.Writer, meta models.Metadata, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, meta)
	case OutputCompact:
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", meta.Version, meta.TotalEntries, meta.GeneratedAt.Format(time.RFC3339), meta.Source)
		return err
	default:
		fmt.Fprintf(w, "Version:      %s\n", meta.Version)
		fmt.Fprintf(w, "Entries:      %d\n", meta.TotalEntries)
		fmt.Fprintf(w, "Generated at: %s\n", meta.GeneratedAt.Format(time.RFC3339))
		fmt.Fprintf(w, "Source:       %s\n", meta.Source)
		return nil
	}
}

// WriteSuggestions writes ranked title suggestions.
func WriteSuggestions(w io.Writer, resp *models.SuggestResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		for _, s := range resp.Suggestions {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%.4f\n", s.Code, s.Title, s.Score); err != nil {
				return err
			}
		}
		return nil
	default:
		if resp.DidYouMean != "" {
			fmt.Fprintf(w, "Did you mean: %s\n\n", resp.DidYouMean)
		}
		if len(resp.Suggestions) == 0 {
			fmt.Fprintf(w, "No suggestions for %q\n", resp.Query)
			return nil
		}
		for i, s := range resp.Suggestions {
			fmt.Fprintf(w, "%2d. %s  %s (score %.4f)\n", i+1, s.Code, s.Title, s.Score)
		}
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
