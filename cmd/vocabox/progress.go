package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/pdf"
	"github.com/at-ishikawa/vocabox/internal/progress"
)

func newProgressCommand() *cobra.Command {
	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Level progress commands",
	}

	progressCmd.AddCommand(
		newProgressRecomputeCommand(),
		newProgressShowCommand(),
		newProgressReportCommand(),
	)
	return progressCmd
}

func newProgressRecomputeCommand() *cobra.Command {
	var userID, levelID int64

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute level progress, for one user and level or for everything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if (userID == 0) != (levelID == 0) {
				return errors.New("--user and --level must be given together")
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

			output := cmd.OutOrStdout()
			if userID != 0 {
				snapshot, err := deps.aggregator.Recompute(cmd.Context(), userID, levelID)
				if err != nil {
					return fmt.Errorf("aggregator.Recompute() > %w", err)
				}
				printSnapshot(output, snapshot)
				return nil
			}

			summary, err := deps.aggregator.RecomputeAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("aggregator.RecomputeAll() > %w", err)
			}
			_, _ = fmt.Fprintf(output, "Recomputed %d snapshots, %d failed\n", summary.Succeeded, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d snapshots: %w", summary.Failed, progress.ErrAggregationFailure)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().Int64Var(&levelID, "level", 0, "level id")
	return cmd
}

func newProgressShowCommand() *cobra.Command {
	var userID, levelID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the progress of a user in a level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			snapshot, err := deps.aggregator.Get(cmd.Context(), userID, levelID)
			if err != nil {
				return fmt.Errorf("aggregator.Get() > %w", err)
			}
			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().Int64Var(&levelID, "level", 0, "level id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func newProgressReportCommand() *cobra.Command {
	var userID int64
	var format string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the progress report of a user as markdown or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != "md" && format != "pdf" {
				return fmt.Errorf("--format must be md or pdf, got %q", format)
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

			if outputPath == "" {
				outputPath = filepath.Join(cfg.Outputs.ReportDirectory, fmt.Sprintf("progress-user-%d.md", userID))
			}
			if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
				return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(outputPath), err)
			}
			file, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("os.Create(%s) > %w", outputPath, err)
			}
			writeErr := deps.aggregator.WriteReport(cmd.Context(), file, userID, cfg.Outputs.ReportTemplate)
			if err := errors.Join(writeErr, file.Close()); err != nil {
				return fmt.Errorf("WriteReport() > %w", err)
			}

			if format == "pdf" {
				pdfPath, err := pdf.ConvertMarkdownToPDF(outputPath)
				if err != nil {
					return fmt.Errorf("pdf.ConvertMarkdownToPDF() > %w", err)
				}
				outputPath = pdfPath
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&format, "format", "md", "md or pdf")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "markdown file to write, defaults to the report directory")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printSnapshot(output io.Writer, snapshot progress.Snapshot) {
	_, _ = fmt.Fprintf(output, "Level %d of user %d: %d items, %d new\n", snapshot.LevelID, snapshot.UserID, snapshot.TotalCount, snapshot.NewCount())
	for i, count := range snapshot.BoxLevelCounts {
		_, _ = fmt.Fprintf(output, "  box %d: %d\n", i+1, count)
	}
	completed := "no"
	if snapshot.IsCompleted {
		completed = "yes"
	}
	_, _ = fmt.Fprintf(output, "  completed: %s\n", completed)
}
