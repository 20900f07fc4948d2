package review

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/document"
)

const dateLayout = "2006-01-02"

// ContentExtractor reads a resume with the loader for its type and asks the
// oracle to structure the text.
type ContentExtractor struct {
	oracle  ai.Oracle
	loaders document.Loaders
	now     func() time.Time
}

func NewContentExtractor(oracle ai.Oracle, loaders document.Loaders, now func() time.Time) *ContentExtractor {
	if now == nil {
		now = time.Now
	}
	return &ContentExtractor{oracle: oracle, loaders: loaders, now: now}
}

func (e *ContentExtractor) Name() string { return StageReadDocument }

// Extract fails with document.ErrUnsupportedType before reading anything
// when no loader handles docType.
func (e *ContentExtractor) Extract(ctx context.Context, filePath string, docType document.Type) (*Resume, error) {
	loader, err := e.loaders.Lookup(docType)
	if err != nil {
		return nil, err
	}

	text, err := loader.Load(filePath)
	if err != nil {
		return nil, err
	}

	today := e.now().Format(dateLayout)
	prompt := renderPrompt(extractResumeTemplate, map[string]string{
		"TODAY":       today,
		"RESUME_TEXT": text,
	})

	var out extractedResume
	if err := ai.Ask(ctx, e.oracle, prompt, resumeContract(today), &out); err != nil {
		return nil, errors.Wrap(err, "extract resume")
	}

	return out.toResume(), nil
}

func (e *ContentExtractor) Run(ctx context.Context, state *State) error {
	docType, err := state.DocumentType()
	if err != nil {
		return err
	}

	resume, err := e.Extract(ctx, state.FilePath(), docType)
	if err != nil {
		return err
	}

	return state.setDocumentContent(resume)
}
