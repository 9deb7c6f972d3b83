package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/analytics"
	"github.com/spigell/candidate-ranker/internal/candidate"
)

var compareCmd = &cobra.Command{
	Use:   "compare <name|id> <name|id>",
	Short: "Compare two candidates by name or id",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApplication(ctx)
		defer a.close()

		first := findCandidate(a, args[0])
		second := findCandidate(a, args[1])

		fmt.Fprintln(cmd.OutOrStdout(), analytics.CompareWithFallback(ctx, a.comparer(), first, second, a.logger))
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func findCandidate(a *application, key string) *candidate.Candidate {
	if c := a.pool.FindByName(key); c != nil {
		return c
	}
	if c := a.pool.FindByID(key); c != nil {
		return c
	}

	a.logger.Fatal("candidate not found", zap.String("key", key), zap.Strings("available", a.pool.Names()))
	return nil
}
