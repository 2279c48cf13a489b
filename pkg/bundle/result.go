package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Result tracks the files written for one compiled request.
type Result struct {
	// Name is the request name the bundle was written for.
	Name string `json:"name" yaml:"name"`

	// OutputDir is the directory the bundle was written to.
	OutputDir string `json:"outputDir" yaml:"outputDir"`

	// Files lists the written file paths in write order.
	Files []string `json:"files" yaml:"files"`

	// Size is the total size of all written files in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Errors collects non-fatal problems encountered while writing.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Success is set once the bundle is complete.
	Success bool `json:"success" yaml:"success"`

	generatedAt time.Time
}

// NewResult creates an empty result for a request name.
func NewResult(name string) *Result {
	return &Result{
		Name:        name,
		Files:       []string{},
		Errors:      []string{},
		generatedAt: time.Now().UTC(),
	}
}

// AddFile records a written file and its size.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// AddError records a non-fatal error. Nil errors are ignored.
func (r *Result) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// MarkSuccess marks the bundle as complete.
func (r *Result) MarkSuccess() {
	r.Success = true
}

// HasErrors reports whether any non-fatal errors were recorded.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// GeneratedAt returns the bundle creation time in RFC 3339 form.
func (r *Result) GeneratedAt() string {
	return r.generatedAt.Format(time.RFC3339)
}

// Summary renders a one-line human summary of the bundle.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d files (%s) in %s", len(r.Files), formatBytes(r.Size), r.OutputDir)
}

// ComputeChecksum returns the hex SHA-256 of content.
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
