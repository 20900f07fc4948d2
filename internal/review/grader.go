package review

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/spigell/resume-reviewer/internal/ai"
)

// ResumeGrader scores an extracted resume.
type ResumeGrader struct {
	oracle   ai.Oracle
	contract *ai.Contract
}

func NewResumeGrader(oracle ai.Oracle) *ResumeGrader {
	return &ResumeGrader{oracle: oracle, contract: gradingContract()}
}

func (g *ResumeGrader) Name() string { return StageGradeResume }

func (g *ResumeGrader) Grade(ctx context.Context, resume *Resume) (*Grading, error) {
	if resume == nil {
		return nil, errors.New("resume is required")
	}

	payload, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal resume")
	}

	prompt := renderPrompt(gradeResumeTemplate, map[string]string{
		"RESUME_JSON": string(payload),
	})

	var out Grading
	if err := ai.Ask(ctx, g.oracle, prompt, g.contract, &out); err != nil {
		return nil, errors.Wrap(err, "grade resume")
	}

	return &out, nil
}

func (g *ResumeGrader) Run(ctx context.Context, state *State) error {
	resume, err := state.DocumentContent()
	if err != nil {
		return err
	}

	grading, err := g.Grade(ctx, resume)
	if err != nil {
		return err
	}

	return state.setGrading(grading)
}
