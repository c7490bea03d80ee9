package formatter

import (
	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/types"
)

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats data as JSON
	TypeJSON Type = "json"
	// TypeYAML formats data as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats data as a table
	TypeTable Type = "table"
	// TypeMarkdown formats data as markdown
	TypeMarkdown Type = "markdown"
)

// JSON implements JSON formatting
type JSON struct {
	opts *Options
}

// YAML implements YAML formatting
type YAML struct {
	opts *Options
}

// Table implements table formatting
type Table struct {
	opts *Options
}

// Markdown implements markdown formatting
type Markdown struct {
	opts *Options
}

type Metadata struct {
	Profile                string `json:"profile" yaml:"profile"`
	RepoURL                string `json:"repoURL" yaml:"repoURL"`
	ObservabilityNamespace string `json:"observabilityNamespace" yaml:"observabilityNamespace"`
	OutputDir              string `json:"outputDir" yaml:"outputDir"`
	Success                bool   `json:"success" yaml:"success"`
	Timestamp              int64  `json:"timestamp" yaml:"timestamp"`
}

type ReportData struct {
	Metadata *Metadata          `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Files    []types.FileRecord `json:"files" yaml:"files"`
	Fetch    types.FetchOutcome `json:"fetch" yaml:"fetch"`
	Warnings []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type CatalogData struct {
	Profile string          `json:"profile" yaml:"profile"`
	Entries []catalog.Entry `json:"entries" yaml:"entries"`
}
