package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/canoeh/nocs/internal/cli"
	"github.com/canoeh/nocs/internal/models"
)

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
}

func searchCmd(a *app) *cobra.Command {
	var (
		page   int
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "search [term...]",
		Short: "Search occupations by code, title or description",
		Long: `Search lists occupations whose code, title or description contains the term
(case-insensitive). Multi-word terms work with or without quotes. With no term every
occupation is listed.`,
		Example: `  nocs search software
  nocs search web developer --limit 5 -o compact
  nocs search --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			svc := a.newCatalog()
			defer svc.Close()
			result, err := svc.Query(cmd.Context(), models.ListQuery{
				Search: buildSearchTerm(args),
				Page:   page,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			return cli.WritePage(cmd.OutOrStdout(), result, format)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "results per page (default from config)")
	addOutputFlag(cmd, &output)
	return cmd
}

// buildSearchTerm joins positional args so multi-word terms work with or without shell quoting.
func buildSearchTerm(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func getCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <code>",
		Short: "Show one occupation by its five-digit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			svc := a.newCatalog()
			defer svc.Close()
			occ, err := svc.LookupByCode(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return cli.WriteOccupation(cmd.OutOrStdout(), occ, format)
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func infoCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show snapshot metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			svc := a.newCatalog()
			defer svc.Close()
			meta, err := svc.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteMetadata(cmd.OutOrStdout(), meta, format)
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func suggestCmd(a *app) *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "suggest <text...>",
		Short: "Suggest occupation titles for partial or misspelled text",
		Args:  cobra.MinimumNArgs(1),
		Example: `  nocs suggest web developr
  nocs suggest machin --limit 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			svc := a.newCatalog()
			defer svc.Close()
			resp, err := svc.Suggest(cmd.Context(), buildSearchTerm(args), limit)
			if err != nil {
				return err
			}
			return cli.WriteSuggestions(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (default from config)")
	addOutputFlag(cmd, &output)
	return cmd
}
