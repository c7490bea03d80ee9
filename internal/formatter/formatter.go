// Package formatter renders generation reports and catalog listings as
// tables, markdown, JSON or YAML.
package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/types"
	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for formatting data
type Formatter interface {
	Format(report *types.Report) (string, error)
	FormatCatalog(c *catalog.Catalog) (string, error)
}

// Options holds configuration for formatters
type Options struct {
	// IncludeMetadata adds the run parameters to the output
	IncludeMetadata bool
}

// DefaultOptions returns the default formatter options
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
	}
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(s)) {
	case TypeJSON, TypeYAML, TypeTable, TypeMarkdown:
		return Type(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type, opts *Options) (Formatter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch t {
	case TypeJSON:
		return &JSON{opts: opts}, nil
	case TypeYAML:
		return &YAML{opts: opts}, nil
	case TypeTable:
		return &Table{opts: opts}, nil
	case TypeMarkdown:
		return &Markdown{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}

// reportData flattens a report into its serializable form
func reportData(report *types.Report, opts *Options) (*ReportData, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	data := &ReportData{
		Files:    report.Files,
		Fetch:    report.Fetch,
		Warnings: report.Warnings,
	}
	if data.Files == nil {
		data.Files = []types.FileRecord{}
	}
	if opts.IncludeMetadata {
		data.Metadata = &Metadata{
			Profile:                report.Profile,
			RepoURL:                report.RepoURL,
			ObservabilityNamespace: report.ObservabilityNamespace,
			OutputDir:              report.OutputDir,
			Success:                report.Success,
			Timestamp:              report.Timestamp,
		}
	}
	return data, nil
}

func catalogData(c *catalog.Catalog) (*CatalogData, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	return &CatalogData{Profile: string(c.Profile()), Entries: c.Entries()}, nil
}

// Format formats a report as JSON
func (j *JSON) Format(report *types.Report) (string, error) {
	data, err := reportData(report, j.opts)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// FormatCatalog formats a catalog listing as JSON
func (j *JSON) FormatCatalog(c *catalog.Catalog) (string, error) {
	data, err := catalogData(c)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

func marshalJSON(v interface{}) (string, error) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats a report as YAML
func (y *YAML) Format(report *types.Report) (string, error) {
	data, err := reportData(report, y.opts)
	if err != nil {
		return "", err
	}
	return marshalYAML(data)
}

// FormatCatalog formats a catalog listing as YAML
func (y *YAML) FormatCatalog(c *catalog.Catalog) (string, error) {
	data, err := catalogData(c)
	if err != nil {
		return "", err
	}
	return marshalYAML(data)
}

func marshalYAML(v interface{}) (string, error) {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// Format formats a report as tables using go-pretty/v6/table
func (t *Table) Format(report *types.Report) (string, error) {
	data, err := reportData(report, t.opts)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, tw := range buildReportTables(data) {
		out.WriteString(tw.Render())
		out.WriteString("\n\n")
	}
	writeWarnings(&out, data.Warnings)
	return out.String(), nil
}

// FormatCatalog formats a catalog listing as a table
func (t *Table) FormatCatalog(c *catalog.Catalog) (string, error) {
	data, err := catalogData(c)
	if err != nil {
		return "", err
	}
	return buildCatalogTable(data).Render() + "\n", nil
}

// Format formats a report as markdown tables
func (m *Markdown) Format(report *types.Report) (string, error) {
	data, err := reportData(report, m.opts)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, tw := range buildReportTables(data) {
		out.WriteString(tw.RenderMarkdown())
		out.WriteString("\n\n")
	}
	writeWarnings(&out, data.Warnings)
	return out.String(), nil
}

// FormatCatalog formats a catalog listing as a markdown table
func (m *Markdown) FormatCatalog(c *catalog.Catalog) (string, error) {
	data, err := catalogData(c)
	if err != nil {
		return "", err
	}
	return buildCatalogTable(data).RenderMarkdown() + "\n", nil
}

func writeWarnings(out *strings.Builder, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
}
