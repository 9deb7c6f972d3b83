package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about the candidate pool",
	Long: `Ask questions about the candidate pool. Listing, statistics, skill and
experience searches and comparisons are answered locally. Other questions go
to the AI assistant when AI is enabled. Without arguments an interactive
session is started; type "exit" to leave.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApplication(ctx)
		defer a.close()

		handler := a.chatHandler()
		out := cmd.OutOrStdout()

		if len(args) > 0 {
			fmt.Fprintln(out, handler.Handle(ctx, strings.Join(args, " ")))
			return
		}

		for {
			prompt := promptui.Prompt{
				Label: "Ask about candidates",
			}

			query, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			if err != nil {
				a.logger.Fatal("prompt failed", zap.Error(err))
			}

			query = strings.TrimSpace(query)
			switch strings.ToLower(query) {
			case "":
				continue
			case "exit", "quit":
				return
			}

			fmt.Fprintln(out, handler.Handle(ctx, query))
			fmt.Fprintln(out)

			if ctx.Err() != nil {
				return
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
