package generator

import (
	"errors"
	"fmt"
)

// Error kinds of a generation run, matched with errors.Is
var (
	// ErrFilesystem is fatal: the run stops and files already written stay on disk
	ErrFilesystem = errors.New("filesystem error")
	// ErrFetch is only returned in strict fetch mode
	ErrFetch = errors.New("fetch error")
	// ErrValidation is returned before anything is written
	ErrValidation = errors.New("validation error")
)

// FilesystemError reports a failed directory creation or file write
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrFilesystem, e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Is matches ErrFilesystem
func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

// FetchError reports a failed retrieval of the remote manifest
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", ErrFetch, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrFetch, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrFetch
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// ValidationError reports a rendered file or directory that failed a structural check
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrValidation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrValidation, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
