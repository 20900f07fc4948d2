// Package report renders and persists the outcome of a review run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spigell/resume-reviewer/internal/review"
)

const fileMode = 0o644

// Report is the persisted summary of a review.
type Report struct {
	FilePath string
	Grade    int
	Feedback string
}

// FromResult builds a report from a completed run.
func FromResult(r *review.Result) *Report {
	return &Report{FilePath: r.FilePath, Grade: r.Grade, Feedback: r.Feedback}
}

// Write renders the three-line text report.
func (r *Report) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Resume Review for %s\nResume Grade: %d/%d\nFeedback: %s\n",
		r.FilePath, r.Grade, review.MaxGrade, r.Feedback)
	return err
}

// Print renders the grade and feedback for the terminal.
func (r *Report) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Resume Grade: %d/%d\nFeedback: %s\n", r.Grade, review.MaxGrade, r.Feedback)
	return err
}

// WriteFile persists the text report to path. The file appears only once
// it is completely written.
func (r *Report) WriteFile(path string) error {
	return writeAtomically(path, r.Write)
}

// DumpResult writes the full result, including the extracted resume, as
// indented JSON to path.
func DumpResult(path string, result *review.Result) error {
	return writeAtomically(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func writeAtomically(path string, render func(io.Writer) error) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmp := file.Name()

	if err := render(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}

	// CreateTemp creates files with mode 0600.
	if err := file.Chmod(fileMode); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}
