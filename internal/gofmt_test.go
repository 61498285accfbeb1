package internal

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGofmtCompliance verifies that all Go source files in the project
// are properly formatted according to gofmt standards.
//
// If this test fails, run: gofmt -w .
func TestGofmtCompliance(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	// Navigate to project root from internal/
	projectRoot := wd
	if filepath.Base(wd) == "internal" {
		projectRoot = filepath.Dir(wd)
	}

	var unformattedFiles []string

	err = filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") || info.Name() == "vendor" || info.Name() == "_examples" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		formatted, err := format.Source(content)
		if err != nil {
			// Skip files that don't parse (might be generated or have build tags)
			return nil
		}

		if !bytes.Equal(content, formatted) {
			relPath, _ := filepath.Rel(projectRoot, path)
			unformattedFiles = append(unformattedFiles, relPath)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk project: %v", err)
	}

	if len(unformattedFiles) > 0 {
		for _, f := range unformattedFiles {
			t.Errorf("not gofmt-formatted: %s", f)
		}
	}
}
