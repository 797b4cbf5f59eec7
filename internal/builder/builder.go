// Package builder turns the flat classification table into an immutable occupation snapshot.
package builder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/canoeh/nocs/internal/models"
	"go.uber.org/zap"
)

// Defaults for snapshot metadata and reference links.
const (
	DefaultVersion      = "NOC 2021 Version 1.0"
	DefaultSource       = "https://www23.statcan.gc.ca/imdb/p3VD.pl?Function=getVD&TVD=1322554"
	DefaultLinkTemplate = "https://www23.statcan.gc.ca/imdb/p3VD.pl?Function=getVD&TVD=1322554&CVD=1322870&CPV={code}&CST=01052021&CLV=5&MLV=5"

	// CodePlaceholder is replaced by the occupation code in a link template.
	CodePlaceholder = "{code}"
)

// Prefix lengths of the ancestor groups within an occupation code.
const (
	broadPrefix = 1
	majorPrefix = 2
	minorPrefix = 4
)

// Options configures a build. Zero values fall back to the package defaults.
type Options struct {
	Version      string
	Source       string
	LinkTemplate string
	// Now returns the generation time; defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// Report summarizes a build for logging.
type Report struct {
	Rows             int `json:"rows"`
	Records          int `json:"records"`
	Skipped          int `json:"skipped"`
	Duplicates       int `json:"duplicates"`
	MissingAncestors int `json:"missingAncestors"`
}

// Build converts classification rows, in source order, into a snapshot sorted by code.
// Rows with an unparseable level are skipped; a missing ancestor title becomes an empty
// string. A table that yields no occupations is an error.
func Build(rows []models.ClassificationRow, opts Options) (*models.Snapshot, *Report, error) {
	opts = withDefaults(opts)
	report := &Report{Rows: len(rows)}

	ancestors := make(map[string]models.ClassificationRow)
	seen := make(map[string]bool)
	records := make([]*models.Occupation, 0, len(rows))

	for _, row := range rows {
		if row.Level < 0 || row.Level > models.LevelUnitGroup {
			report.Skipped++
			opts.Logger.Warn("skipping row with invalid level",
				zap.Int("line", row.Line), zap.String("code", row.Code))
			continue
		}
		if row.Code == "" {
			continue
		}
		if row.Level < models.LevelUnitGroup {
			ancestors[row.Code] = row
			continue
		}
		if seen[row.Code] {
			report.Duplicates++
			opts.Logger.Warn("skipping duplicate occupation code",
				zap.Int("line", row.Line), zap.String("code", row.Code))
			continue
		}
		seen[row.Code] = true

		occ, missing := newOccupation(row, ancestors, opts.LinkTemplate)
		if missing > 0 {
			report.MissingAncestors++
			opts.Logger.Debug("occupation has missing ancestor titles",
				zap.String("code", row.Code), zap.Int("missing", missing))
		}
		records = append(records, occ)
	}

	if len(records) == 0 {
		return nil, report, fmt.Errorf("classification table has no unit group rows (%d rows read)", len(rows))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Code < records[j].Code
	})
	report.Records = len(records)

	snap := &models.Snapshot{
		Records: records,
		Metadata: models.Metadata{
			Version:      opts.Version,
			Source:       opts.Source,
			GeneratedAt:  opts.Now().UTC(),
			TotalEntries: len(records),
		},
	}
	return snap, report, nil
}

func withDefaults(opts Options) Options {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.LinkTemplate == "" {
		opts.LinkTemplate = DefaultLinkTemplate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

// newOccupation resolves a unit group row against the ancestors seen so far.
// It returns the record and the number of ancestor titles that could not be resolved.
func newOccupation(row models.ClassificationRow, ancestors map[string]models.ClassificationRow, linkTemplate string) (*models.Occupation, int) {
	missing := 0
	group := func(n int) models.GroupRef {
		code := prefix(row.Code, n)
		a, ok := ancestors[code]
		if !ok {
			missing++
		}
		return models.GroupRef{Code: code, Title: a.Title}
	}

	h := models.Hierarchy{
		Broad: group(broadPrefix),
		Major: group(majorPrefix),
		Minor: group(minorPrefix),
	}
	occ := &models.Occupation{
		Code:          row.Code,
		Title:         row.Title,
		Description:   row.Definition,
		ReferenceLink: ReferenceLink(linkTemplate, row.Code),
		Tier:          TierFor(row.Code),
		Hierarchy:     h,
	}
	occ.SearchIndex = SearchIndex(occ)
	return occ, missing
}

func prefix(code string, n int) string {
	if len(code) < n {
		return code
	}
	return code[:n]
}

// ReferenceLink interpolates code into template at every CodePlaceholder.
func ReferenceLink(template, code string) string {
	return strings.ReplaceAll(template, CodePlaceholder, code)
}

// SearchIndex returns the lowercased text matched by substring search: code, title,
// description and the three ancestor titles joined by spaces.
func SearchIndex(o *models.Occupation) string {
	return strings.ToLower(strings.Join([]string{
		o.Code,
		o.Title,
		o.Description,
		o.Hierarchy.Broad.Title,
		o.Hierarchy.Major.Title,
		o.Hierarchy.Minor.Title,
	}, " "))
}
