package document

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Loader turns a document file into plain text.
type Loader interface {
	Load(path string) (string, error)
}

// Loaders maps each supported type to its loader.
type Loaders map[Type]Loader

// DefaultLoaders returns the PDF and DOCX loaders.
func DefaultLoaders(logger *zap.Logger) Loaders {
	return Loaders{
		PDF:  NewPDFLoader(logger),
		DOCX: NewDOCXLoader(logger),
	}
}

// Lookup returns the loader registered for t.
func (l Loaders) Lookup(t Type) (Loader, error) {
	loader, ok := l[t]
	if !ok || loader == nil {
		return nil, errors.Wrapf(ErrUnsupportedType, "%q", string(t))
	}
	return loader, nil
}

// Load reads path with the loader registered for t.
func (l Loaders) Load(t Type, path string) (string, error) {
	loader, err := l.Lookup(t)
	if err != nil {
		return "", err
	}
	return loader.Load(path)
}
