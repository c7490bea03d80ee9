package renderer

import (
	"bytes"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"
)

// YAMLValidator implements Validator for plain manifest files
type YAMLValidator struct{}

// NewYAMLValidator creates a new YAMLValidator
func NewYAMLValidator() *YAMLValidator {
	return &YAMLValidator{}
}

// Validate checks if the input is parseable YAML made of maps or arrays
func (v *YAMLValidator) Validate(input []byte) error {
	if len(input) == 0 {
		return ErrInvalidInput
	}

	var obj interface{}
	decoder := yaml.NewDecoder(bytes.NewReader(input))
	docCount := 0

	for {
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}

		// Ensure we have a valid YAML structure (map or array)
		switch o := obj.(type) {
		case map[string]interface{}, []interface{}:
			docCount++
		default:
			return fmt.Errorf("%w: document must be a YAML map or array, got %T", ErrInvalidFormat, o)
		}
	}

	if docCount == 0 {
		return fmt.Errorf("%w: no valid YAML documents found", ErrInvalidFormat)
	}

	return nil
}

// ValidateSchema performs detailed validation of every document
func (v *YAMLValidator) ValidateSchema(input []byte) error {
	if err := v.Validate(input); err != nil {
		return err
	}

	docs, err := decodeDocuments(input)
	if err != nil {
		return err
	}

	for i, obj := range docs {
		docNum := i + 1

		requiredFields := []string{"apiVersion", "kind", "metadata"}
		for _, field := range requiredFields {
			if _, ok := obj[field]; !ok {
				return fmt.Errorf("document %d: missing required field '%s': %w",
					docNum, field, ErrValidationFailed)
			}
		}

		metadata, ok := obj["metadata"].(map[string]interface{})
		if !ok {
			return fmt.Errorf("document %d: invalid metadata structure: %w",
				docNum, ErrValidationFailed)
		}

		if _, ok := metadata["name"].(string); !ok {
			return fmt.Errorf("document %d: missing or invalid metadata.name: %w",
				docNum, ErrValidationFailed)
		}
	}

	return nil
}

// KustomizationValidator implements Validator for kustomization.yaml files
type KustomizationValidator struct{}

// NewKustomizationValidator creates a new KustomizationValidator
func NewKustomizationValidator() *KustomizationValidator {
	return &KustomizationValidator{}
}

// Validate checks if the input is a single kustomization document
func (v *KustomizationValidator) Validate(input []byte) error {
	if len(input) == 0 {
		return ErrInvalidInput
	}
	var obj map[string]interface{}
	if err := yaml.Unmarshal(input, &obj); err != nil {
		return fmt.Errorf("%w: invalid yaml: %v", ErrInvalidFormat, err)
	}

	if kind, ok := obj["kind"].(string); !ok || kind != "Kustomization" {
		return fmt.Errorf("%w: not a kustomization file", ErrInvalidInput)
	}

	return nil
}

// ValidateSchema checks that the kustomization lists at least one resource
func (v *KustomizationValidator) ValidateSchema(input []byte) error {
	if err := v.Validate(input); err != nil {
		return err
	}
	var k struct {
		Resources []string `yaml:"resources"`
	}
	if err := yaml.Unmarshal(input, &k); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(k.Resources) == 0 {
		return fmt.Errorf("kustomization lists no resources: %w", ErrValidationFailed)
	}
	return nil
}

// decodeDocuments splits a multi-document stream, skipping empty documents
func decodeDocuments(input []byte) ([]map[string]interface{}, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(input))
	var docs []map[string]interface{}

	for {
		var obj map[string]interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs)+1, ErrValidationFailed)
		}
		if len(obj) == 0 {
			continue
		}
		docs = append(docs, obj)
	}

	return docs, nil
}
