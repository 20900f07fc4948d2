package review

import "context"

// Stage is one step of a review run. Stages read what earlier stages wrote
// to the state and write their own fields.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

const (
	StageStart        = "start"
	StageDetectType   = "determine_document_type"
	StageReadDocument = "read_document"
	StageGradeResume  = "grade_resume"
	StageEnd          = "end"
)

type startStage struct{}

func (startStage) Name() string { return StageStart }

func (startStage) Run(context.Context, *State) error { return nil }

type endStage struct{}

func (endStage) Name() string { return StageEnd }

func (endStage) Run(_ context.Context, state *State) error { return state.finish() }
