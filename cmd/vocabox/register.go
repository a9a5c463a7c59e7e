package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/study"
)

func newRegisterCommand() *cobra.Command {
	var userID, levelID int64
	var trainingTypeName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register every vocabulary of a level for a user",
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

			count, err := study.RegisterLevel(cmd.Context(), deps.studies, deps.vocabularies, userID, levelID, trainingType)
			if err != nil {
				return fmt.Errorf("study.RegisterLevel() > %w", err)
			}
			if _, err := deps.aggregator.Recompute(cmd.Context(), userID, levelID); err != nil {
				return fmt.Errorf("aggregator.Recompute() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %d vocabulary of level %d for user %d (%s)\n", count, levelID, userID, trainingType)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().Int64Var(&levelID, "level", 0, "level id")
	cmd.Flags().StringVar(&trainingTypeName, "training-type", "vocabulary", "vocabulary, sentence, translation or listening")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}
