package document

import (
	"os"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCXLoader returns the full text of a Word document.
type DOCXLoader struct {
	logger *zap.Logger
}

func NewDOCXLoader(logger *zap.Logger) *DOCXLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DOCXLoader{logger: logger.With(zap.String("loader", "docx"))}
}

func (l *DOCXLoader) Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &LoadError{Path: path, Type: DOCX, Err: errors.Wrap(err, "open docx")}
	}
	defer f.Close()

	result, err := docconv.Convert(f, docxMimeType, false)
	if err != nil {
		return "", &LoadError{Path: path, Type: DOCX, Err: errors.Wrap(err, "convert docx")}
	}

	if strings.TrimSpace(result.Body) == "" {
		return "", &LoadError{Path: path, Type: DOCX, Err: errors.New("no text content extracted")}
	}

	l.logger.Debug("extracted text from docx",
		zap.String("path", path),
		zap.Int("text_length", len(result.Body)),
	)

	return result.Body, nil
}
