package document

import (
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PageSeparator joins the text of consecutive PDF pages.
const PageSeparator = "\n"

// PDFLoader extracts text page by page.
type PDFLoader struct {
	logger *zap.Logger
}

func NewPDFLoader(logger *zap.Logger) *PDFLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFLoader{logger: logger.With(zap.String("loader", "pdf"))}
}

func (l *PDFLoader) Load(path string) (string, error) {
	if err := validatePDF(path); err != nil {
		return "", &LoadError{Path: path, Type: PDF, Err: errors.Wrap(err, "validate pdf")}
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", &LoadError{Path: path, Type: PDF, Err: errors.Wrap(err, "open pdf")}
	}
	defer f.Close()

	total := reader.NumPage()

	var builder strings.Builder
	for index := 1; index <= total; index++ {
		page := reader.Page(index)
		if page.V.IsNull() {
			l.logger.Warn("null page encountered", zap.Int("page_number", index))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &LoadError{Path: path, Type: PDF, Err: errors.Wrapf(err, "extract text from page %d", index)}
		}

		builder.WriteString(text)
		builder.WriteString(PageSeparator)
	}

	content := builder.String()
	if strings.TrimSpace(content) == "" {
		return "", &LoadError{Path: path, Type: PDF, Err: errors.New("no text content extracted")}
	}

	l.logger.Debug("extracted text from pdf",
		zap.String("path", path),
		zap.Int("total_pages", total),
		zap.Int("text_length", len(content)),
	)

	return content, nil
}

// validatePDF checks the file structure with pdfcpu in relaxed mode.
func validatePDF(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ValidateFile(path, conf)
}
