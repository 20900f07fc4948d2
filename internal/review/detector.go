package review

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/document"
)

// TypeDetector asks the oracle which document type a file path refers to.
type TypeDetector struct {
	oracle   ai.Oracle
	contract *ai.Contract
	logger   *zap.Logger
}

func NewTypeDetector(oracle ai.Oracle, logger *zap.Logger) *TypeDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeDetector{oracle: oracle, contract: documentTypeContract(), logger: logger}
}

func (d *TypeDetector) Name() string { return StageDetectType }

// Detect returns the normalized type reported by the oracle. Values outside
// the supported set are returned unchanged and rejected at extraction.
func (d *TypeDetector) Detect(ctx context.Context, filePath string) (document.Type, error) {
	names := make([]string, 0, len(document.Types()))
	for _, t := range document.Types() {
		names = append(names, t.String())
	}

	prompt := renderPrompt(detectTypeTemplate, map[string]string{
		"FILE_PATH": filePath,
		"TYPES":     strings.Join(names, " or "),
	})

	var out detectedType
	if err := ai.Ask(ctx, d.oracle, prompt, d.contract, &out); err != nil {
		return "", errors.Wrap(err, "detect document type")
	}

	t, err := document.ParseType(out.DocumentType)
	if err != nil {
		d.logger.Warn("oracle reported an unsupported document type",
			zap.String("file", filePath),
			zap.String("document_type", t.String()),
		)
	}

	return t, nil
}

func (d *TypeDetector) Run(ctx context.Context, state *State) error {
	t, err := d.Detect(ctx, state.FilePath())
	if err != nil {
		return err
	}
	return state.setDocumentType(t)
}
