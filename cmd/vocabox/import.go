package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/datasync"
)

func newImportCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import <levels.yml>",
		Short: "Import levels and their vocabulary into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			file, err := datasync.ReadLevelsFile(args[0])
			if err != nil {
				return fmt.Errorf("datasync.ReadLevelsFile() > %w", err)
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
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := datasync.NewImporter(deps.vocabularies, output).ImportLevels(cmd.Context(), file, opts)
			if err != nil {
				return fmt.Errorf("importer.ImportLevels() > %w", err)
			}

			_, _ = fmt.Fprintln(output, "\nImport Summary:")
			if opts.DryRun {
				_, _ = fmt.Fprintln(output, "  (dry-run mode, no changes made)")
			}
			_, _ = fmt.Fprintf(output, "  Levels:     %d upserted\n", result.LevelsUpserted)
			_, _ = fmt.Fprintf(output, "  Vocabulary: %d new, %d skipped, %d updated\n", result.VocabularyNew, result.VocabularySkipped, result.VocabularyUpdated)
			_, _ = fmt.Fprintf(output, "  Links:      %d\n", result.LinksAdded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing vocabulary with the data of the file")
	return cmd
}
