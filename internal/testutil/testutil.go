// Package testutil provides shared test helpers: config and import file fixtures
// and in-memory repositories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a config file that stores everything in an SQLite database under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	reportsDir := filepath.Join(tmpDir, "reports")
	require.NoError(t, os.MkdirAll(reportsDir, 0755))

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
auth:
  jwt_secret: test-secret
review:
  batch_size: 10
  outbox:
    max_attempts: 2
    initial_delay: 1ms
    max_delay: 5ms
outputs:
  report_directory: %s
`,
		filepath.Join(tmpDir, "vocabox.db"),
		reportsDir,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// LevelsFileOption configures optional content of a levels import file fixture.
type LevelsFileOption func(*levelsFileConfig)

type levelsFileConfig struct {
	extraWord string
}

// WithExtraWord adds one more vocabulary to the first level.
func WithExtraWord(text string) LevelsFileOption {
	return func(cfg *levelsFileConfig) {
		cfg.extraWord = text
	}
}

// CreateLevelsFile writes a levels import file with two levels and returns its path.
func CreateLevelsFile(t *testing.T, dir string, opts ...LevelsFileOption) string {
	t.Helper()

	var cfg levelsFileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	extra := ""
	if cfg.extraWord != "" {
		extra = fmt.Sprintf(`      - text: %s
        part_of_speech: noun
        meanings:
          - an extra word
`, cfg.extraWord)
	}

	content := `levels:
  - id: 1
    name: Basic
    sort_order: 1
    vocabularies:
      - text: abide
        part_of_speech: verb
        meanings:
          - to accept or act in accordance with
        examples:
          - You have to abide by the rules.
        synonyms:
          - obey
      - text: candid
        part_of_speech: adjective
        meanings:
          - truthful and straightforward
` + extra + `  - id: 2
    name: Intermediate
    sort_order: 2
    vocabularies:
      - text: abide
        part_of_speech: verb
        meanings:
          - to accept or act in accordance with
      - text: serendipity
        part_of_speech: noun
        meanings:
          - the occurrence of events by chance in a happy way
`
	path := filepath.Join(dir, "levels.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
