// Package pdf renders markdown documents to PDF files.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

// Render writes markdown content to pdfPath and returns its absolute path.
func Render(content []byte, pdfPath string) (string, error) {
	if filepath.Ext(pdfPath) != ".pdf" {
		return "", fmt.Errorf("output file must have .pdf extension: %s", pdfPath)
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(pdfPath), err)
	}

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

// ConvertMarkdownToPDF converts a markdown file to a PDF next to it.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}
	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}
	return Render(content, strings.TrimSuffix(markdownPath, ".md")+".pdf")
}
