// Package datasync imports levels and their vocabulary from YAML files into the database.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// LevelsFile is the document of a levels import file.
type LevelsFile struct {
	Levels []LevelEntry `yaml:"levels"`
}

// LevelEntry is one level with its vocabulary.
type LevelEntry struct {
	ID           int64             `yaml:"id"`
	Name         string            `yaml:"name"`
	SortOrder    int               `yaml:"sort_order"`
	Vocabularies []VocabularyEntry `yaml:"vocabularies"`
}

// VocabularyEntry is one vocabulary item of a level.
type VocabularyEntry struct {
	Text         string   `yaml:"text"`
	PartOfSpeech string   `yaml:"part_of_speech"`
	Meanings     []string `yaml:"meanings"`
	Examples     []string `yaml:"examples"`
	Synonyms     []string `yaml:"synonyms"`
	Notes        string   `yaml:"notes"`
}

// ErrInvalidLevelsFile is returned for a levels file that cannot be imported.
var ErrInvalidLevelsFile = errors.New("invalid levels file")

// ReadLevelsFile reads and validates a levels import file.
func ReadLevelsFile(path string) (*LevelsFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return DecodeLevelsFile(file)
}

// DecodeLevelsFile decodes a levels import document and validates it.
// Unknown keys are rejected so that typos do not silently drop data.
func DecodeLevelsFile(r io.Reader) (*LevelsFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var result LevelsFile
	if err := decoder.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidLevelsFile)
		}
		return nil, fmt.Errorf("%w: yaml.NewDecoder().Decode() > %w", ErrInvalidLevelsFile, err)
	}
	if err := result.validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (f *LevelsFile) validate() error {
	seen := make(map[int64]bool, len(f.Levels))
	for i, level := range f.Levels {
		if level.ID <= 0 {
			return fmt.Errorf("%w: levels[%d] has no positive id", ErrInvalidLevelsFile, i)
		}
		if seen[level.ID] {
			return fmt.Errorf("%w: level id %d is duplicated", ErrInvalidLevelsFile, level.ID)
		}
		seen[level.ID] = true
		if strings.TrimSpace(level.Name) == "" {
			return fmt.Errorf("%w: level %d has no name", ErrInvalidLevelsFile, level.ID)
		}
		for j, entry := range level.Vocabularies {
			if strings.TrimSpace(entry.Text) == "" {
				return fmt.Errorf("%w: level %d vocabularies[%d] has no text", ErrInvalidLevelsFile, level.ID, j)
			}
		}
	}
	return nil
}

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	LevelsUpserted    int
	VocabularyNew     int
	VocabularySkipped int
	VocabularyUpdated int
	LinksAdded        int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer writes levels files to the vocabulary tables.
// Vocabulary is matched by text and part of speech, so importing the same file twice changes nothing.
type Importer struct {
	writer vocabulary.Writer
	output io.Writer
}

// NewImporter creates a new Importer that reports each item to output.
func NewImporter(writer vocabulary.Writer, output io.Writer) *Importer {
	return &Importer{
		writer: writer,
		output: output,
	}
}

type itemKey struct {
	text         string
	partOfSpeech string
}

// ImportLevels imports every level of file with its vocabulary.
func (imp *Importer) ImportLevels(ctx context.Context, file *LevelsFile, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	// Items seen earlier in this run. In a dry run, new items have no id.
	imported := make(map[itemKey]*vocabulary.Item)

	levels := slices.Clone(file.Levels)
	slices.SortStableFunc(levels, func(a, b LevelEntry) int { return a.SortOrder - b.SortOrder })
	for _, level := range levels {
		if !opts.DryRun {
			if err := imp.writer.UpsertLevel(ctx, vocabulary.Level{
				ID:        level.ID,
				Name:      level.Name,
				SortOrder: level.SortOrder,
			}); err != nil {
				return nil, fmt.Errorf("UpsertLevel(%d) > %w", level.ID, err)
			}
		}
		fmt.Fprintf(imp.output, "[LEVEL]  %d %s\n", level.ID, level.Name)
		result.LevelsUpserted++

		var items []*vocabulary.Item
		for _, entry := range level.Vocabularies {
			item, err := imp.importVocabulary(ctx, entry, imported, opts, &result)
			if err != nil {
				return nil, fmt.Errorf("importVocabulary(%q) > %w", entry.Text, err)
			}
			if !slices.Contains(items, item) {
				items = append(items, item)
			}
		}
		result.LinksAdded += len(items)
		if opts.DryRun {
			continue
		}

		vocabularyIDs := make([]int64, 0, len(items))
		for _, item := range items {
			vocabularyIDs = append(vocabularyIDs, item.ID)
		}
		if err := imp.writer.LinkLevelVocabularies(ctx, level.ID, vocabularyIDs); err != nil {
			return nil, fmt.Errorf("LinkLevelVocabularies(%d) > %w", level.ID, err)
		}
	}
	return &result, nil
}

func (imp *Importer) importVocabulary(ctx context.Context, entry VocabularyEntry, imported map[itemKey]*vocabulary.Item, opts ImportOptions, result *ImportResult) (*vocabulary.Item, error) {
	key := itemKey{text: strings.TrimSpace(entry.Text), partOfSpeech: strings.TrimSpace(entry.PartOfSpeech)}
	if item, ok := imported[key]; ok {
		return item, nil
	}

	existing, err := imp.writer.FindItemByText(ctx, key.text, key.partOfSpeech)
	if err != nil {
		return nil, fmt.Errorf("FindItemByText(%s, %s) > %w", key.text, key.partOfSpeech, err)
	}

	if existing == nil {
		item := &vocabulary.Item{
			Text:         key.text,
			PartOfSpeech: key.partOfSpeech,
			Meanings:     entry.Meanings,
			Examples:     entry.Examples,
			Synonyms:     entry.Synonyms,
			Notes:        entry.Notes,
		}
		if !opts.DryRun {
			if err := imp.writer.CreateItem(ctx, item); err != nil {
				return nil, fmt.Errorf("CreateItem() > %w", err)
			}
		}
		fmt.Fprintf(imp.output, "  [NEW]  %q (%s)\n", key.text, key.partOfSpeech)
		result.VocabularyNew++
		imported[key] = item
		return item, nil
	}

	if !opts.UpdateExisting {
		fmt.Fprintf(imp.output, "  [SKIP]  %q (%s)\n", key.text, key.partOfSpeech)
		result.VocabularySkipped++
		imported[key] = existing
		return existing, nil
	}

	existing.Meanings = entry.Meanings
	existing.Examples = entry.Examples
	existing.Synonyms = entry.Synonyms
	existing.Notes = entry.Notes
	if !opts.DryRun {
		if err := imp.writer.UpdateItem(ctx, existing); err != nil {
			return nil, fmt.Errorf("UpdateItem() > %w", err)
		}
	}
	fmt.Fprintf(imp.output, "  [UPDATE]  %q (%s)\n", key.text, key.partOfSpeech)
	result.VocabularyUpdated++
	imported[key] = existing
	return existing, nil
}
