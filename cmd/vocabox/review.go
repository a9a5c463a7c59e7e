package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/cli"
)

func newReviewCommand() *cobra.Command {
	var userID int64
	var trainingTypeName string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the vocabulary due today in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			trainingType, err := parseTrainingType(trainingTypeName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			deps, err := newDependencies(cfg)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, deps.Close())
			}()

			ctx := cmd.Context()
			sess, err := deps.sessionService(cfg).StartSession(ctx, userID, trainingType)
			if err != nil {
				return fmt.Errorf("StartSession() > %w", err)
			}
			if sess.CurrentItem() == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to review. Come back later!")
				return nil
			}

			reviewCLI := cli.NewReviewCLI(sess, cmd.InOrStdin(), cmd.OutOrStdout())
			runErr := reviewCLI.Run(ctx, reviewCLI)
			return errors.Join(runErr, reviewCLI.Finish(ctx, shutdownTimeout))
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&trainingTypeName, "training-type", "vocabulary", "vocabulary, sentence, translation or listening")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
