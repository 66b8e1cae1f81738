package converter

import "errors"

var (
	ErrInputNotFound = errors.New("input model not found")
	ErrEmptyArtifact = errors.New("converter produced an empty artifact")
	ErrMissingPath   = errors.New("path is empty")
)
