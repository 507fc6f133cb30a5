package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath validates that a file path is safe and doesn't contain directory traversal attempts
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	return nil
}

// ValidateScratchPath ensures a path resolves inside the given scratch
// directory. Media cleanup only ever deletes paths that pass this check, so a
// stray absolute path recorded as "local media" can never be removed by the
// delivery pipeline.
func ValidateScratchPath(path, scratchDir string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if scratchDir == "" {
		return fmt.Errorf("scratch directory cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	cleanBase := filepath.Clean(scratchDir)

	rel, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil {
		return fmt.Errorf("path is not relative to scratch directory: %s", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes scratch directory: %s", path)
	}

	return nil
}
