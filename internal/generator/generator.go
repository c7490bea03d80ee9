// Package generator writes the manifest tree: it renders the catalog for a
// configuration, optionally validates it, writes every file and stores the
// fetched sample application manifest next to them.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/config"
	"github.com/alevsk/meshgen/internal/fetcher"
	"github.com/alevsk/meshgen/internal/logger"
	"github.com/alevsk/meshgen/internal/renderer"
	"github.com/alevsk/meshgen/internal/types"
	"sigs.k8s.io/kustomize/kyaml/filesys"
)

// Options holds the collaborators of a Generator
type Options struct {
	// FS is where the tree is written; defaults to the local disk
	FS filesys.FileSystem
	// HTTPClient is used for the remote fetch; defaults to the fetcher's client
	HTTPClient *http.Client
	// RetryInterval is the initial backoff between fetch attempts
	RetryInterval time.Duration
}

// Generator produces the output tree for one configuration
type Generator struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	fs      filesys.FileSystem
	client  *http.Client
	retry   time.Duration
}

// New creates a Generator. The configuration is validated here so that a
// bad value never leaves a half-written tree behind.
func New(cfg *config.Config, opts *Options) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration cannot be nil", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := catalog.New(cfg.Profile)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &Options{}
	}
	fs := opts.FS
	if fs == nil {
		fs = filesys.MakeFsOnDisk()
	}

	return &Generator{
		cfg:     cfg,
		catalog: c,
		fs:      fs,
		client:  opts.HTTPClient,
		retry:   opts.RetryInterval,
	}, nil
}

// Generate runs the whole batch. The returned report is never nil; it
// describes what was written even when an error aborted the run.
func (g *Generator) Generate(ctx context.Context) (*types.Report, error) {
	report := &types.Report{
		Profile:                string(g.cfg.Profile),
		RepoURL:                g.cfg.RepoURL,
		ObservabilityNamespace: g.cfg.ObservabilityNamespace,
		OutputDir:              g.cfg.OutputDir,
		Timestamp:              time.Now().Unix(),
	}

	files, err := g.catalog.Render(catalog.ValuesFrom(g.cfg))
	if err != nil {
		return report, err
	}

	if g.cfg.ValidateTree {
		logger.Info().Int("files", len(files)).Msg("Validating rendered manifests")
		if err := g.validate(ctx, files); err != nil {
			return report, err
		}
	}

	logger.Info().Str("root", g.cfg.OutputDir).Msg("Creating directory layout")
	for _, dir := range g.catalog.Dirs() {
		target := g.target(dir)
		if err := g.fs.MkdirAll(target); err != nil {
			return report, &FilesystemError{Op: "mkdir", Path: target, Err: err}
		}
	}

	var section catalog.Section
	for _, f := range files {
		if f.Section != section {
			section = f.Section
			logger.Info().Str("section", string(section)).Msgf("Writing %s manifests", section)
		}
		if err := g.write(report, f.Path, string(f.Section), types.FileSourceTemplate, f.Content); err != nil {
			return report, err
		}
	}

	if err := g.fetch(ctx, report); err != nil {
		return report, err
	}

	report.Success = true
	logger.Info().Int("files", len(report.Files)).Str("root", g.cfg.OutputDir).Msg("Manifest tree generated")
	return report, nil
}

// fetch retrieves the sample application manifest. In lenient mode every
// outcome is written verbatim, an empty body included; strict mode refuses
// to write anything but a 2xx body.
func (g *Generator) fetch(ctx context.Context, report *types.Report) error {
	remote := g.catalog.Remote()
	url := g.cfg.Fetch.URL
	report.Fetch = types.FetchOutcome{URL: url}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fetch %s aborted: %w", url, err)
	}
	logger.Info().Str("section", string(remote.Section)).Str("url", url).Msg("Fetching sample application manifest")

	f, err := fetcher.NewRemoteFetcher(url, &fetcher.Options{
		Timeout:       g.cfg.Fetch.Timeout,
		Retries:       g.cfg.Fetch.Retries,
		RetryInterval: g.retry,
	}, g.client)

	var res *fetcher.Result
	if err == nil {
		res, err = f.Fetch(ctx)
		report.Fetch.StatusCode = res.StatusCode
		report.Fetch.Attempts = res.Attempts
	}

	if err == nil {
		return g.write(report, remote.Path, string(remote.Section), types.FileSourceRemote, res.Body)
	}

	report.Fetch.Error = err.Error()
	// an interrupted run is not a failed download; leave the file alone
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Error().Err(ctxErr).Str("path", remote.Path).Msg("Remote fetch interrupted, leaving the file untouched")
		return fmt.Errorf("fetch %s aborted: %w", url, ctxErr)
	}

	fetchErr := &FetchError{URL: url, Err: err}
	if res != nil {
		fetchErr.StatusCode = res.StatusCode
	}

	if g.cfg.Fetch.Strict {
		logger.Error().Err(err).Str("path", remote.Path).Msg("Remote fetch failed, leaving the file untouched")
		return fetchErr
	}

	report.Warnings = append(report.Warnings, fetchErr.Error())
	logger.Warn().Err(err).Str("path", remote.Path).Msg("Remote fetch failed, writing the response verbatim")

	var body []byte
	if res != nil {
		body = res.Body
	}
	return g.write(report, remote.Path, string(remote.Section), types.FileSourceRemote, body)
}

// write truncates and replaces the file at p, recording it in the report
func (g *Generator) write(report *types.Report, p, section string, source types.FileSource, content []byte) error {
	if content == nil {
		content = []byte{}
	}
	target := g.target(p)
	sum := sha256.Sum256(content)
	record := types.FileRecord{
		Path:    p,
		Section: section,
		Source:  source,
		Bytes:   len(content),
		SHA256:  hex.EncodeToString(sum[:]),
	}

	if err := g.fs.WriteFile(target, content); err != nil {
		report.Files = append(report.Files, record)
		return &FilesystemError{Op: "write", Path: target, Err: err}
	}

	record.Written = true
	report.Files = append(report.Files, record)
	logger.Debug().Str("path", p).Int("bytes", len(content)).Msg("Wrote file")
	return nil
}

// validate runs every structural check over the rendered tree
func (g *Generator) validate(ctx context.Context, files []catalog.File) error {
	yamlValidator := renderer.NewYAMLValidator()
	kustomizationValidator := renderer.NewKustomizationValidator()
	verifier := renderer.NewKustomizeVerifier()

	for _, f := range files {
		var v renderer.Validator = yamlValidator
		if f.Section == catalog.SectionKustomize {
			v = kustomizationValidator
		}
		if err := v.ValidateSchema(f.Content); err != nil {
			return &ValidationError{Path: f.Path, Err: err}
		}
		if err := verifier.AddFile(f.Path, f.Content); err != nil {
			return &ValidationError{Path: f.Path, Err: err}
		}
	}

	if err := renderer.CheckNamespaceOrder(files, catalog.ExternalNamespaces); err != nil {
		return &ValidationError{Err: err}
	}

	remoteDir := path.Dir(g.catalog.Remote().Path)
	for _, f := range files {
		if f.Section != catalog.SectionKustomize {
			continue
		}
		dir := path.Dir(f.Path)
		if dir == remoteDir {
			// its resources include the fetched manifest, which is opaque
			logger.Debug().Str("dir", dir).Msg("Skipping kustomize build of directory with fetched content")
			continue
		}
		manifests, err := verifier.Build(ctx, dir)
		if err != nil {
			return &ValidationError{Path: dir, Err: err}
		}
		logger.Debug().Str("dir", dir).Int("objects", len(manifests)).Msg("Kustomize build succeeded")
	}

	return nil
}

func (g *Generator) target(p string) string {
	return filepath.Join(g.cfg.OutputDir, filepath.FromSlash(p))
}
