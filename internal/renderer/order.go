package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/alevsk/meshgen/internal/catalog"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
)

// ErrNamespaceOrder is returned when a namespaced object precedes the
// declaration of its namespace
var ErrNamespaceOrder = errors.New("namespace used before it is declared")

// CheckNamespaceOrder walks files in order and verifies that every namespace
// an object lives in is declared by a Namespace object that comes earlier,
// or is one of the external namespaces.
func CheckNamespaceOrder(files []catalog.File, external []string) error {
	declared := slices.Clone(external)

	for _, f := range files {
		objs, err := decodeObjects(f.Content)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
		for _, u := range objs {
			if u.GetKind() == "Namespace" {
				declared = append(declared, u.GetName())
				continue
			}
			ns := u.GetNamespace()
			if ns == "" || slices.Contains(declared, ns) {
				continue
			}
			return fmt.Errorf("%s: %s %q in namespace %q: %w",
				f.Path, u.GetKind(), u.GetName(), ns, ErrNamespaceOrder)
		}
	}

	return nil
}

// decodeObjects splits a multi-document manifest into unstructured objects
func decodeObjects(content []byte) ([]*unstructured.Unstructured, error) {
	decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(content), 4096)
	var objs []*unstructured.Unstructured

	for {
		var obj map[string]interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if len(obj) == 0 {
			continue
		}
		objs = append(objs, &unstructured.Unstructured{Object: obj})
	}

	return objs, nil
}
