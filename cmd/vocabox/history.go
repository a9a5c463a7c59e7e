package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/study"
)

func newHistoryCommand() *cobra.Command {
	var userID, vocabularyID int64
	var trainingTypeName string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded answers of a user for a vocabulary",
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
			entries, err := deps.studies.ListHistory(cmd.Context(), study.Key{
				UserID:       userID,
				VocabularyID: vocabularyID,
				TrainingType: trainingType,
			})
			if err != nil {
				return fmt.Errorf("studies.ListHistory() > %w", err)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "History of %s for user %d (%s)\n", item.Text, userID, trainingType)
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(w, "No answers recorded yet")
				return nil
			}
			for _, entry := range entries {
				result := "wrong"
				if entry.IsCorrect {
					result = "correct"
				}
				_, _ = fmt.Fprintf(w, "%s  box %d -> %d  %s\n",
					entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.BeforeBoxLevel, entry.AfterBoxLevel, result)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().Int64Var(&vocabularyID, "vocabulary", 0, "vocabulary id")
	cmd.Flags().StringVar(&trainingTypeName, "training-type", "vocabulary", "vocabulary, sentence, translation or listening")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("vocabulary")
	return cmd
}
