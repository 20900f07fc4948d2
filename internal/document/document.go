// Package document detects supported resume formats and turns resume files
// into plain text.
package document

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Type is a supported document format.
type Type string

const (
	PDF  Type = "PDF"
	DOCX Type = "DOCX"
)

var (
	// ErrUnsupportedType is returned for any type outside PDF and DOCX.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrLoaderFailure matches every *LoadError.
	ErrLoaderFailure = errors.New("document loader failure")
)

// Types lists the supported document types.
func Types() []Type {
	return []Type{PDF, DOCX}
}

// Normalize upper-cases and trims a raw type value without validating it.
func Normalize(raw string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseType normalizes raw and checks it against the supported set.
func ParseType(raw string) (Type, error) {
	t := Normalize(raw)
	if !t.Valid() {
		return t, errors.Wrapf(ErrUnsupportedType, "%q", raw)
	}
	return t, nil
}

func (t Type) Valid() bool {
	return t == PDF || t == DOCX
}

func (t Type) String() string {
	return string(t)
}

// LoadError describes a failure to read or parse a document file.
type LoadError struct {
	Path string
	Type Type
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s document %q: %v", e.Type, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrLoaderFailure as matching any load error.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoaderFailure
}
