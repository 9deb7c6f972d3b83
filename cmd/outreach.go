package cmd

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/filtering"
	"github.com/spigell/candidate-ranker/internal/scoring"
)

const (
	PromptYes           = "Yes"
	PromptNo            = "No"
	PromptShowSelection = "Show selected candidates"
	PromptDumpToFile    = "Dump selection to file"
)

var errExit = errors.New("exit requested")

var outreachPrompt = promptui.Select{
	Label: "Record outreach for the selected candidates?",
	Items: []string{PromptYes, PromptNo, PromptShowSelection, PromptDumpToFile},
}

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Pick candidates worth contacting for a job and record them in the exclude file",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		a := newApplication(ctx)
		defer a.close()

		steps := filtering.Default()

		if include, _ := cmd.Flags().GetBool("include-interns"); include {
			filtering.DisableByName(steps, "no_interns", "disabled by --include-interns")
		}

		filterConfig := &filtering.Config{
			MinimumFitScore:   a.config.Outreach.MinimumFitScore,
			MinimumExperience: a.config.Outreach.MinimumExperience,
			ExcludeFile:       a.config.Outreach.ExcludeFile,
		}
		if cmd.Flags().Changed("min-score") {
			filterConfig.MinimumFitScore, _ = cmd.Flags().GetInt("min-score")
		}

		if listOnly, _ := cmd.Flags().GetBool("list-filters"); listOnly {
			if err := filtering.Validate(filterConfig, steps); err != nil {
				a.logger.Fatal("validating filters", zap.Error(err))
			}
			printFilterStatuses(cmd.OutOrStdout(), filtering.Describe(steps))
			return
		}

		jobDescription, err := readJobDescription(cmd, a.config.JobFile)
		if err != nil {
			a.logger.Fatal("reading job description", zap.Error(err))
		}

		evaluated := a.evaluate(ctx, jobDescription)

		selection, err := filtering.Run(ctx, filterConfig, filtering.Deps{Logger: a.logger.Named("filtering")}, steps, filtering.NewSelection(evaluated))
		if err != nil {
			a.logger.Fatal("filtering candidates", zap.Error(err))
		}

		if selection.Len() == 0 {
			a.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
			return
		}

		autoApprove, _ := cmd.Flags().GetBool("yes")
		action := PromptYes
		for {
			if !autoApprove {
				_, action, err = outreachPrompt.Run()
				if err != nil {
					a.logger.Fatal("exiting", zap.Error(err))
				}
			}

			a.logger.Info("current selection", zap.Int("count", selection.Len()))

			if err := handleOutreachAction(cmd.OutOrStdout(), action, a, selection); err != nil {
				if errors.Is(err, errExit) {
					return
				}
				a.logger.Fatal("exiting", zap.Error(err))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(outreachCmd)

	addJobFlags(outreachCmd)
	outreachCmd.Flags().Int("min-score", filtering.DefaultMinimumFitScore, "minimum fit score to contact a candidate (default from config outreach.minimum-fit-score)")
	outreachCmd.Flags().Bool("include-interns", false, "keep candidates whose experience mentions internships")
	outreachCmd.Flags().Bool("list-filters", false, "print the filter chain and exit")
	outreachCmd.Flags().BoolP("yes", "y", false, "record outreach without asking")
}

func handleOutreachAction(w io.Writer, action string, a *application, selection *filtering.Selection) error {
	switch action {
	case PromptYes:
		if err := recordOutreach(a.config.Outreach.ExcludeFile, selection.Items); err != nil {
			return err
		}
		printContacts(w, selection.Items)
		a.logger.Info("outreach recorded",
			zap.String("exclude_file", a.config.Outreach.ExcludeFile),
			zap.Int("count", selection.Len()),
		)
		return errExit
	case PromptNo:
		a.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptShowSelection:
		return printEvaluated(w, formatTable, selection.Items)
	case PromptDumpToFile:
		filename, err := dumpSelection(selection.Items)
		if err != nil {
			return fmt.Errorf("dump selection to file: %w", err)
		}
		a.logger.Info("dumping selection to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// recordOutreach appends the selected candidates to the exclude file so the
// next run skips them. An empty path records nothing.
func recordOutreach(path string, selected []scoring.EvaluatedCandidate) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	excluded, err := candidate.GetExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	for i := range selected {
		excluded.Append(candidate.NewExcluded(&selected[i].Candidate, selected[i].FitScore))
	}

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}
	return nil
}

func dumpSelection(selected []scoring.EvaluatedCandidate) (string, error) {
	file, err := os.CreateTemp("", app+"-selection-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeStructured(file, formatJSON, selected); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func printContacts(w io.Writer, selected []scoring.EvaluatedCandidate) {
	tw := newTable(w)
	fmt.Fprintln(tw, "SCORE\tNAME\tEMAIL\tPHONE")
	for _, ec := range selected {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ec.FitScore, ec.Name, dashIfEmpty(ec.Email), dashIfEmpty(ec.Phone))
	}
	tw.Flush()
}

func printFilterStatuses(w io.Writer, statuses []filtering.Status) {
	tw := newTable(w)
	fmt.Fprintln(tw, "FILTER\tENABLED\tREASON\tDETAILS")
	for _, st := range statuses {
		details := make([]string, 0, len(st.Details))
		for _, key := range slices.Sorted(maps.Keys(st.Details)) {
			details = append(details, key+"="+st.Details[key])
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", st.Name, st.Enabled, dashIfEmpty(st.Reason), joinOrDash(details))
	}
	tw.Flush()
}
