package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/bloemp/stockreport/internal/domain/models"
)

//go:embed templates/test_report.html
var reportTemplate string

// FormatContext carries the presentation settings the renderer needs, passed
// explicitly so rendering stays a pure function of its inputs.
type FormatContext struct {
	DateLayout string
}

// DefaultFormat returns the standard report formatting.
func DefaultFormat() FormatContext {
	return FormatContext{DateLayout: "2006-01-02"}
}

// ReportData is everything the report template consumes.
type ReportData struct {
	Part        models.Part
	Item        models.StockItem
	ImageURI    string
	Rows        []models.TestRow
	Installed   []models.InstalledRow
	GeneratedAt time.Time
}

// Renderer turns reconciled report data into a standalone HTML document.
type Renderer struct {
	tmpl   *template.Template
	format FormatContext
}

// NewRenderer parses the embedded report template with the given formatting.
func NewRenderer(format FormatContext) (*Renderer, error) {
	if format.DateLayout == "" {
		format.DateLayout = DefaultFormat().DateLayout
	}

	funcs := template.FuncMap{
		"fmtdate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(format.DateLayout)
		},
	}

	tmpl, err := template.New("test_report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &Renderer{tmpl: tmpl, format: format}, nil
}

// Render executes the report template. It never mutates data; rendering the
// same input twice produces identical documents.
func (r *Renderer) Render(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render test report: %w", err)
	}
	return buf.String(), nil
}
