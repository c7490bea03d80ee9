// Package renderer provides structural checks over rendered manifest trees
// before they are written: YAML shape, kustomize buildability and the
// declaration order of namespaces.
package renderer

import (
	"fmt"

	"github.com/alevsk/meshgen/internal/types"
)

// Manifest is an alias for types.Manifest
type Manifest = types.Manifest

// Error types for the renderer package
var (
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInvalidFormat    = fmt.Errorf("invalid format")
	ErrValidationFailed = fmt.Errorf("validation failed")
)

// Validator checks a single rendered file.
type Validator interface {
	// Validate checks that the input is well formed YAML made of maps.
	//
	// Returns:
	// - nil if the input is valid
	// - ErrInvalidInput if the input is empty
	// - ErrInvalidFormat if the input cannot be parsed
	Validate(input []byte) error

	// ValidateSchema checks that every document carries the fields a
	// Kubernetes object needs (apiVersion, kind, metadata.name).
	//
	// Returns:
	// - nil if the input matches the expected schema
	// - ErrValidationFailed with details if validation fails
	ValidateSchema(input []byte) error
}
