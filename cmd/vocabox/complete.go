package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/study"
)

func newCompleteCommand() *cobra.Command {
	var userID, vocabularyID int64
	var trainingTypeName string
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Take a vocabulary out of the reviews of a user",
		Long:  "Take a vocabulary out of the reviews of a user. With --undo it is reviewed again.",
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

			item, err := deps.store.GetItem(cmd.Context(), vocabularyID)
			if err != nil {
				return fmt.Errorf("store.GetItem() > %w", err)
			}
			key := study.Key{UserID: userID, VocabularyID: vocabularyID, TrainingType: trainingType}
			if err := deps.studies.MarkCompleted(cmd.Context(), key, !undo); err != nil {
				return fmt.Errorf("studies.MarkCompleted() > %w", err)
			}

			if undo {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is reviewed again for user %d (%s)\n", item.Text, userID, trainingType)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is completed for user %d (%s)\n", item.Text, userID, trainingType)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().Int64Var(&vocabularyID, "vocabulary", 0, "vocabulary id")
	cmd.Flags().StringVar(&trainingTypeName, "training-type", "vocabulary", "vocabulary, sentence, translation or listening")
	cmd.Flags().BoolVar(&undo, "undo", false, "put the vocabulary back into the reviews")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("vocabulary")
	return cmd
}
