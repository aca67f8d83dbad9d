package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/agent"
	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/workflow"
)

var errOverwriteDeclined = errors.New("overwrite declined")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a resume file against a job description file and dump the result",
	Run: func(cmd *cobra.Command, _ []string) {
		runReview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringP("resume", "r", "", "resume text file (default resume.txt)")
	reviewCmd.Flags().StringP("job", "b", "", "job description text file (default jd.txt)")
	reviewCmd.Flags().StringP("output", "o", "", "where to write the review state (default result.json)")
	reviewCmd.Flags().BoolP("yes", "y", false, "overwrite the output file without asking")

	viper.BindPFlag("review.resume-file", reviewCmd.Flags().Lookup("resume"))
	viper.BindPFlag("review.job-file", reviewCmd.Flags().Lookup("job"))
	viper.BindPFlag("review.output-file", reviewCmd.Flags().Lookup("output"))
}

func runReview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the review", zap.String("version", version),
		zap.String("resume_file", config.Review.ResumeFile),
		zap.String("job_file", config.Review.JobFile),
	)

	resume, err := os.ReadFile(config.Review.ResumeFile)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}
	jobDescription, err := os.ReadFile(config.Review.JobFile)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if err := confirmOverwrite(config.Review.OutputFile, yes); err != nil {
		if errors.Is(err, errOverwriteDeclined) {
			logger.Info("exiting", zap.String("reason", "output file exists"), zap.String("output_file", config.Review.OutputFile))
			return
		}
		logger.Fatal("checking output file", zap.Error(err))
	}

	wf, err := newWorkflow(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the workflow", zap.Error(err))
	}

	result, err := wf.Run(ctx, string(resume), string(jobDescription))
	if err != nil {
		logger.Fatal("review failed", zap.Error(err))
	}

	if err := dumpState(config.Review.OutputFile, result.State); err != nil {
		logger.Fatal("writing the result", zap.Error(err))
	}
	logger.Info("result written", zap.String("output_file", config.Review.OutputFile))

	fmt.Println(summary(result))
}

// confirmOverwrite returns nil when path is free or the user agreed to replace it.
func confirmOverwrite(path string, yes bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if yes {
		return nil
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s exists. Overwrite", path),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return errOverwriteDeclined
		}
		return err
	}
	return nil
}

func dumpState(path string, state workflow.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func summary(result *workflow.Result) string {
	r, ok := result.Review()
	if !ok {
		for _, step := range []string{agent.StepAnalyzeMatch, agent.StepGenerateScore} {
			if reason := result.State.Outcomes[step].Reason; reason != "" {
				return "no review result: " + reason
			}
		}
		return "no review result"
	}
	return fmt.Sprintf("overall score %.2f (experience %.2f, education %.2f, skills %.2f), %d recommendations",
		r.OverallScore, r.MatchDetails.ExperienceMatch, r.MatchDetails.EducationMatch, r.MatchDetails.SkillsMatch,
		len(r.Recommendations))
}
