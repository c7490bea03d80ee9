package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	yaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/kyaml/filesys"
)

// KustomizeVerifier builds kustomize directories of a rendered tree held in memory
type KustomizeVerifier struct {
	files map[string][]byte // Map to store files where key is the tree-relative path and value is the content
	mux   sync.RWMutex      // Mutex to protect concurrent access to files map
}

// NewKustomizeVerifier creates a new KustomizeVerifier
func NewKustomizeVerifier() *KustomizeVerifier {
	return &KustomizeVerifier{
		files: make(map[string][]byte),
	}
}

// AddFile adds a file to the verifier's tree in a thread-safe manner
func (k *KustomizeVerifier) AddFile(name string, content []byte) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if content == nil {
		return fmt.Errorf("file content cannot be nil")
	}
	k.mux.Lock()
	defer k.mux.Unlock()
	k.files[name] = content
	return nil
}

// Build runs kustomize over dir and returns the resulting objects
func (k *KustomizeVerifier) Build(ctx context.Context, dir string) ([]*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs := filesys.MakeFsInMemory()

	k.mux.RLock()
	for name, content := range k.files {
		full := path.Join("/", name)
		if err := fs.MkdirAll(path.Dir(full)); err != nil {
			k.mux.RUnlock()
			return nil, fmt.Errorf("failed to create directory %s: %w", path.Dir(full), err)
		}
		if err := fs.WriteFile(full, content); err != nil {
			k.mux.RUnlock()
			return nil, fmt.Errorf("failed to write file %s: %w", name, err)
		}
	}
	k.mux.RUnlock()

	kz := krusty.MakeKustomizer(
		krusty.MakeDefaultOptions(),
	)

	resources, err := kz.Run(fs, path.Join("/", dir))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build resources: %w", dir, err)
	}

	yamlData, err := resources.AsYaml()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to convert resources to yaml: %w", dir, err)
	}

	var manifests []*Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(yamlData))
	for {
		var obj map[string]interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse manifest: %w", dir, err)
		}
		manifests = append(manifests, manifestFromObject(obj))
	}

	return manifests, nil
}

func manifestFromObject(obj map[string]interface{}) *Manifest {
	m := &Manifest{Content: obj}
	m.Kind, _ = obj["kind"].(string)
	if metadata, ok := obj["metadata"].(map[string]interface{}); ok {
		m.Name, _ = metadata["name"].(string)
		m.Namespace, _ = metadata["namespace"].(string)
	}
	return m
}
