// Package catalog holds the fixed, ordered set of manifest templates that
// make up the generated GitOps tree, and renders them for a configuration.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"slices"
	"text/template"
	"text/template/parse"

	"github.com/alevsk/meshgen/internal/config"
)

//go:embed templates
var templatesFS embed.FS

// Section groups catalog entries for progress reporting
type Section string

const (
	SectionNamespaces    Section = "namespaces"
	SectionMesh          Section = "mesh"
	SectionObservability Section = "observability"
	SectionApplication   Section = "application"
	SectionGateway       Section = "gateway"
	SectionKustomize     Section = "kustomize"
	SectionBootstrap     Section = "bootstrap"
)

// RemotePath is where the fetched sample application manifest is stored
const RemotePath = "apps/bookinfo/base/bookinfo-deployment.yaml"

// ExternalNamespaces are referenced by the catalog but owned by the cluster
// platform (the GitOps operator), so no catalog entry declares them.
var ExternalNamespaces = []string{"openshift-gitops"}

// ErrUnknownPath is returned when a path is not part of the catalog
var ErrUnknownPath = fmt.Errorf("path not in catalog")

// Entry is a single output file of the tree
type Entry struct {
	// Path is the output path relative to the tree root
	Path string `json:"path" yaml:"path"`
	// Template is the embedded template file; empty for the remote entry
	Template string `json:"-" yaml:"-"`
	// Section is the logical group the file belongs to
	Section Section `json:"section" yaml:"section"`
	// Remote marks the passthrough file fetched over the network
	Remote bool `json:"remote" yaml:"remote"`
	// Profiles restricts the entry to some profiles; empty means all
	Profiles []config.Profile `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	// Placeholders lists the configuration fields the template references
	Placeholders []string `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
}

// Namespaces come first, then namespaced resources, then the aggregation
// files and the bootstrap descriptor that point at them.
var entries = []Entry{
	{Path: "infra/ossm/base/namespace.yaml", Section: SectionNamespaces},
	{Path: "infra/observability/base/namespace.yaml", Section: SectionNamespaces},
	{Path: "apps/bookinfo/base/namespace.yaml", Section: SectionNamespaces},

	{Path: "infra/ossm/base/istio.yaml", Section: SectionMesh},
	{Path: "infra/ossm/base/telemetry.yaml", Section: SectionMesh},

	{Path: "infra/observability/base/minio.yaml", Section: SectionObservability},
	{Path: "infra/observability/base/tempo.yaml", Section: SectionObservability},
	{Path: "infra/observability/base/grafana-datasource.yaml", Section: SectionObservability, Profiles: []config.Profile{config.ProfileCentral}},
	{Path: "infra/observability/base/kiali-config.yaml", Section: SectionObservability},

	{Path: RemotePath, Section: SectionApplication, Remote: true},

	{Path: "apps/bookinfo/gateway/gateway.yaml", Section: SectionGateway},
	{Path: "apps/bookinfo/gateway/httproute.yaml", Section: SectionGateway},
	{Path: "apps/bookinfo/gateway/openshift-route.yaml", Section: SectionGateway},

	{Path: "infra/ossm/base/kustomization.yaml", Section: SectionKustomize},
	{
		Path:     "infra/observability/base/kustomization.yaml",
		Template: "infra/observability/base/kustomization.tracing.yaml",
		Section:  SectionKustomize,
		Profiles: []config.Profile{config.ProfileTracing},
	},
	{
		Path:     "infra/observability/base/kustomization.yaml",
		Template: "infra/observability/base/kustomization.central.yaml",
		Section:  SectionKustomize,
		Profiles: []config.Profile{config.ProfileCentral},
	},
	{Path: "apps/bookinfo/base/kustomization.yaml", Section: SectionKustomize},
	{Path: "apps/bookinfo/gateway/kustomization.yaml", Section: SectionKustomize},

	{Path: "bootstrap/app-of-apps.yaml", Section: SectionBootstrap},
}

// parsed maps a template file to its parsed form, built once at init
var parsed = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template)
	for i := range entries {
		e := &entries[i]
		if e.Remote {
			continue
		}
		if e.Template == "" {
			e.Template = e.Path
		}
		body, err := templatesFS.ReadFile(path.Join("templates", e.Template))
		if err != nil {
			panic(fmt.Sprintf("catalog template %s: %v", e.Template, err))
		}
		tmpl := template.Must(template.New(e.Template).Option("missingkey=error").Parse(string(body)))
		out[e.Template] = tmpl
		e.Placeholders = fieldNames(tmpl.Tree.Root)
	}
	return out
}

// fieldNames collects the distinct fields referenced by a template, in order
func fieldNames(node parse.Node) []string {
	var names []string
	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			for _, c := range n.Nodes {
				walk(c)
			}
		case *parse.ActionNode:
			for _, cmd := range n.Pipe.Cmds {
				for _, arg := range cmd.Args {
					if f, ok := arg.(*parse.FieldNode); ok {
						name := f.Ident[0]
						if !slices.Contains(names, name) {
							names = append(names, name)
						}
					}
				}
			}
		}
	}
	walk(node)
	return names
}

// Values are the configuration fields substituted into templates
type Values struct {
	RepoURL                string
	ObservabilityNamespace string
}

// ValuesFrom extracts the substitution values from a configuration
func ValuesFrom(cfg *config.Config) Values {
	return Values{
		RepoURL:                cfg.RepoURL,
		ObservabilityNamespace: cfg.ObservabilityNamespace,
	}
}

// File is a rendered catalog entry
type File struct {
	Path    string
	Section Section
	Content []byte
}

// Catalog is the ordered view of the entries active for one profile
type Catalog struct {
	profile config.Profile
	entries []Entry
}

// New returns the catalog for the given profile
func New(profile config.Profile) (*Catalog, error) {
	switch profile {
	case config.ProfileTracing, config.ProfileCentral:
	default:
		return nil, fmt.Errorf("%w: unknown profile %q", config.ErrInvalidConfig, profile)
	}

	c := &Catalog{profile: profile}
	for _, e := range entries {
		if len(e.Profiles) == 0 || slices.Contains(e.Profiles, profile) {
			c.entries = append(c.entries, e)
		}
	}
	return c, nil
}

// Profile returns the profile the catalog was built for
func (c *Catalog) Profile() config.Profile {
	return c.profile
}

// Entries returns every entry of the catalog in order, including the remote one
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Remote returns the entry for the fetched passthrough file
func (c *Catalog) Remote() Entry {
	for _, e := range c.entries {
		if e.Remote {
			return e
		}
	}
	// every profile carries the remote entry
	panic("catalog has no remote entry")
}

// Paths returns the output paths of every entry, in catalog order
func (c *Catalog) Paths() []string {
	paths := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		paths = append(paths, e.Path)
	}
	return paths
}

// Dirs returns the distinct directories of the tree in order of first use
func (c *Catalog) Dirs() []string {
	var dirs []string
	for _, e := range c.entries {
		d := path.Dir(e.Path)
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Render substitutes the values into every templated entry, in catalog order
func (c *Catalog) Render(v Values) ([]File, error) {
	files := make([]File, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Remote {
			continue
		}
		f, err := render(e, v)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// RenderPath renders a single templated entry by its output path
func (c *Catalog) RenderPath(p string, v Values) (File, error) {
	for _, e := range c.entries {
		if e.Path != p {
			continue
		}
		if e.Remote {
			return File{}, fmt.Errorf("%w: %s is fetched, not templated", ErrUnknownPath, p)
		}
		return render(e, v)
	}
	return File{}, fmt.Errorf("%w: %s", ErrUnknownPath, p)
}

func render(e Entry, v Values) (File, error) {
	var buf bytes.Buffer
	if err := parsed[e.Template].Execute(&buf, v); err != nil {
		return File{}, fmt.Errorf("render %s: %w", e.Path, err)
	}
	return File{Path: e.Path, Section: e.Section, Content: buf.Bytes()}, nil
}
