package types

// Manifest represents a single Kubernetes object of a rendered tree
type Manifest struct {
	// Name of the object
	Name string `json:"name" yaml:"name"`
	// Kind of the object
	Kind string `json:"kind" yaml:"kind"`
	// Namespace of the object, empty for cluster scoped objects
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	// Content is the parsed YAML content
	Content map[string]interface{} `json:"-" yaml:"-"`
}

// FileSource tells where the content of a written file came from
type FileSource string

const (
	// FileSourceTemplate is a catalog template rendered with the configuration
	FileSourceTemplate FileSource = "template"
	// FileSourceRemote is the fetched passthrough file
	FileSourceRemote FileSource = "remote"
)

// FileRecord describes one file of the output tree
type FileRecord struct {
	Path    string     `json:"path" yaml:"path"`
	Section string     `json:"section" yaml:"section"`
	Source  FileSource `json:"source" yaml:"source"`
	Bytes   int        `json:"bytes" yaml:"bytes"`
	SHA256  string     `json:"sha256" yaml:"sha256"`
	Written bool       `json:"written" yaml:"written"`
}

// FetchOutcome records the result of the remote fetch
type FetchOutcome struct {
	URL        string `json:"url" yaml:"url"`
	StatusCode int    `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Attempts   int    `json:"attempts" yaml:"attempts"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report represents the outcome of a generation run
type Report struct {
	// Basic information
	Profile                string `json:"profile" yaml:"profile"`
	RepoURL                string `json:"repoURL" yaml:"repoURL"`
	ObservabilityNamespace string `json:"observabilityNamespace" yaml:"observabilityNamespace"`
	OutputDir              string `json:"outputDir" yaml:"outputDir"`
	Success                bool   `json:"success" yaml:"success"`
	Timestamp              int64  `json:"timestamp" yaml:"timestamp"`

	// Files in write order; the fetched file comes last
	Files    []FileRecord `json:"files" yaml:"files"`
	Fetch    FetchOutcome `json:"fetch" yaml:"fetch"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Written returns how many files reached the disk and their total size
func (r *Report) Written() (files, bytes int) {
	for _, f := range r.Files {
		if f.Written {
			files++
			bytes += f.Bytes
		}
	}
	return files, bytes
}
