package assets

import (
	_ "embed"
	"fmt"
	"io"
	"time"
)

const progressReportTemplateName = "progress-report.md.go.tmpl"

//go:embed templates/progress-report.md.go.tmpl
var fallbackProgressReportTemplate string

// ProgressReportTemplate is the data of a progress report.
type ProgressReportTemplate struct {
	UserID      int64
	GeneratedAt time.Time
	Levels      []ProgressReportLevel
}

// ProgressReportLevel is one row of a progress report.
type ProgressReportLevel struct {
	Name           string
	TotalCount     int
	NewCount       int
	BoxLevelCounts []int
	IsCompleted    bool
}

// WriteProgressReport renders a markdown progress report.
// templatePath overrides the embedded template when it points to a valid file.
func WriteProgressReport(output io.Writer, templatePath string, templateData ProgressReportTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, progressReportTemplateName, fallbackProgressReportTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
