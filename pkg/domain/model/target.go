package model

import (
	"path/filepath"
	"strings"
)

const (
	// SourceExt is the extension of eligible target files
	SourceExt = ".py"
	// TestSuffix is appended to the stem of a source file to name its test file
	TestSuffix = "_test"
)

// TargetFile is a source file under the sandbox root being processed.
// Original is the snapshot taken before any modification and is never
// mutated afterwards.
type TargetFile struct {
	Path       string
	ModuleName string
	TestPath   string
	Original   string
}

// NewTargetFile derives the module name and test path of a source file
func NewTargetFile(path string) *TargetFile {
	return &TargetFile{
		Path:       path,
		ModuleName: ModuleName(path),
		TestPath:   TestPathFor(path),
	}
}

// ModuleName returns the importable module identifier of a source path
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TestPathFor returns P_test.ext for a source path P.ext
func TestPathFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + TestSuffix + ext
}

// SourcePathFor inverts TestPathFor. ok is false when path is not a test file.
func SourcePathFor(testPath string) (string, bool) {
	if !IsTestFile(testPath) {
		return "", false
	}
	ext := filepath.Ext(testPath)
	stem := strings.TrimSuffix(testPath, ext)
	return strings.TrimSuffix(stem, TestSuffix) + ext, true
}

// IsTestFile reports whether path follows the generated test naming
func IsTestFile(path string) bool {
	ext := filepath.Ext(path)
	return strings.HasSuffix(strings.TrimSuffix(path, ext), TestSuffix)
}

// IsEligible reports whether a file name can be processed as a target
func IsEligible(path string) bool {
	return filepath.Ext(path) == SourceExt && !IsTestFile(path)
}
