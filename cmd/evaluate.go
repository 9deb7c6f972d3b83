package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/scoring"
	"github.com/spigell/candidate-ranker/internal/utils"
)

const explanationColumnWidth = 80

var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Aliases: []string{"match"},
	Short:   "Score every candidate against a job description and print the ranking",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		a := newApplication(ctx)
		defer a.close()

		format := mustOutputFormat(a, cmd)

		jobDescription, err := readJobDescription(cmd, a.config.JobFile)
		if err != nil {
			a.logger.Fatal("reading job description", zap.Error(err))
		}

		if skip, _ := cmd.Flags().GetBool("skip-contacted"); skip {
			a.skipContacted()
		}

		evaluated := a.evaluate(ctx, jobDescription)

		minScore, _ := cmd.Flags().GetInt("min-score")
		if minScore > 0 {
			evaluated = scoring.AboveThreshold(evaluated, minScore)
		}

		top, _ := cmd.Flags().GetInt("top")
		if top > 0 && top < len(evaluated) {
			evaluated = evaluated[:top]
		}

		a.logger.Info("printing ranking", zap.Int("shown", len(evaluated)), zap.Int("pool", a.pool.Len()))

		if err := printEvaluated(cmd.OutOrStdout(), format, evaluated); err != nil {
			a.logger.Fatal("printing results", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	addJobFlags(evaluateCmd)
	evaluateCmd.Flags().StringP("output", "o", formatTable, "output format: table, json or yaml")
	evaluateCmd.Flags().Int("top", 0, "show only the first N candidates")
	evaluateCmd.Flags().Int("min-score", 0, "hide candidates scoring below this value")
	evaluateCmd.Flags().Bool("skip-contacted", false, "leave out candidates recorded in the outreach exclude file")
}

func printEvaluated(w io.Writer, format string, evaluated []scoring.EvaluatedCandidate) error {
	if format != formatTable {
		return writeStructured(w, format, evaluated)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tSCORE\tNAME\tYEARS\tSTRENGTHS\tGAPS\tEXPLANATION")
	for i, ec := range evaluated {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			ec.FitScore,
			ec.Name,
			strconv.FormatFloat(ec.YearsOfExperience, 'f', -1, 64),
			joinOrDash(ec.Strengths),
			joinOrDash(ec.Gaps),
			utils.TruncateForLog(ec.FitExplanation, explanationColumnWidth),
		)
	}
	return tw.Flush()
}
