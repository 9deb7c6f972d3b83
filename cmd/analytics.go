package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show skill frequency and experience statistics for the pool",
	Run: func(cmd *cobra.Command, _ []string) {
		a := newApplication(cmd.Context())
		defer a.close()

		format := mustOutputFormat(a, cmd)
		stats := analytics.ComputeStatistics(a.pool.Items)

		if err := printStatistics(cmd.OutOrStdout(), format, stats); err != nil {
			a.logger.Fatal("printing statistics", zap.Error(err))
		}
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find candidates that list any of the given skills",
	Run: func(cmd *cobra.Command, _ []string) {
		a := newApplication(cmd.Context())
		defer a.close()

		format := mustOutputFormat(a, cmd)
		requested, _ := cmd.Flags().GetStringSlice("skill")
		matches := analytics.FindBySkills(a.pool.Items, requested)

		a.logger.Debug("skill search", zap.Strings("skills", requested), zap.Int("matches", len(matches)))

		if err := printMatches(cmd.OutOrStdout(), format, matches); err != nil {
			a.logger.Fatal("printing matches", zap.Error(err))
		}
	},
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print which candidate has which skill",
	Run: func(cmd *cobra.Command, _ []string) {
		a := newApplication(cmd.Context())
		defer a.close()

		format := mustOutputFormat(a, cmd)
		matrix := analytics.BuildMatrix(a.pool.Items)

		if err := printMatrix(cmd.OutOrStdout(), format, matrix); err != nil {
			a.logger.Fatal("printing matrix", zap.Error(err))
		}
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate profiles without a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		a := newApplication(cmd.Context())
		defer a.close()

		format := mustOutputFormat(a, cmd)
		by, _ := cmd.Flags().GetString("by")
		sortKey, err := analytics.ParseProfileSort(by)
		if err != nil {
			a.logger.Fatal("parsing flags", zap.Error(err))
		}

		ranked := analytics.RankProfiles(a.pool.Items, sortKey)

		if err := printProfiles(cmd.OutOrStdout(), format, ranked); err != nil {
			a.logger.Fatal("printing ranking", zap.Error(err))
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, searchCmd, matrixCmd, rankCmd} {
		c.Flags().StringP("output", "o", formatTable, "output format: table, json or yaml")
		rootCmd.AddCommand(c)
	}

	searchCmd.Flags().StringSliceP("skill", "s", nil, "skill to look for, can be repeated")
	searchCmd.MarkFlagRequired("skill")

	rankCmd.Flags().String("by", string(analytics.SortByCombined), "sort key: experience, internships, combined or activity")
}

func mustOutputFormat(a *application, cmd *cobra.Command) string {
	output, _ := cmd.Flags().GetString("output")
	format, err := parseOutputFormat(output)
	if err != nil {
		a.logger.Fatal("parsing flags", zap.Error(err))
	}
	return format
}

func printStatistics(w io.Writer, format string, stats analytics.Statistics) error {
	if format != formatTable {
		return writeStructured(w, format, stats)
	}

	fmt.Fprintf(w, "Candidates: %d\n", stats.TotalCandidates)
	fmt.Fprintf(w, "Average experience: %s years\n", strconv.FormatFloat(stats.AverageExperience, 'f', 1, 64))
	fmt.Fprintf(w, "Unique skills: %d\n\n", stats.TotalUniqueSkills)

	tw := newTable(w)
	fmt.Fprintln(tw, "SKILL\tCANDIDATES")
	for _, sc := range stats.TopSkills {
		fmt.Fprintf(tw, "%s\t%d\n", sc.Skill, sc.Count)
	}
	return tw.Flush()
}

func printMatches(w io.Writer, format string, matches []analytics.SkillMatch) error {
	if format != formatTable {
		return writeStructured(w, format, matches)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tMATCHED\tCOUNT\tPERCENT\tEMAIL")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s%%\t%s\n",
			m.Name,
			joinOrDash(m.MatchedSkills),
			m.MatchCount,
			strconv.FormatFloat(m.MatchPercentage, 'f', 0, 64),
			dashIfEmpty(m.Email),
		)
	}
	return tw.Flush()
}

func printMatrix(w io.Writer, format string, matrix analytics.Matrix) error {
	if format != formatTable {
		return writeStructured(w, format, matrix)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "NAME\t%s\n", strings.Join(matrix.Skills, "\t"))
	for i, row := range matrix.Candidates {
		cells := make([]string, 0, len(matrix.Skills))
		for _, skill := range matrix.Skills {
			mark := "."
			if matrix.Has(i, skill) {
				mark = "x"
			}
			cells = append(cells, mark)
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.Name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func printProfiles(w io.Writer, format string, ranked []analytics.ProfileRank) error {
	if format != formatTable {
		return writeStructured(w, format, ranked)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tNAME\tYEARS\tINTERNSHIPS\tACTIVITY\tCOMBINED")
	for i, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i+1,
			r.Name,
			strconv.FormatFloat(r.YearsOfExperience, 'f', -1, 64),
			r.Internships,
			r.ActivityBoost,
			strconv.FormatFloat(r.CombinedScore, 'f', -1, 64),
		)
	}
	return tw.Flush()
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
